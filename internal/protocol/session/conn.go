package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/danmuck/courseselect/internal/auth"
)

// Subprotocol is the only websocket subprotocol the server speaks.
const Subprotocol = "cca1"

var (
	ErrSubprotocolRejected = errors.New("session: server did not accept subprotocol " + Subprotocol)
	ErrBinaryMessage       = errors.New("session: unexpected binary message")
	ErrNotConnected        = errors.New("session: not connected")
)

// Conn is one established websocket carrying protocol lines.
type Conn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
}

// Dial opens the websocket at target and negotiates cca1. The session
// cookie from creds is attached to the upgrade request.
func Dial(ctx context.Context, cfg Config, target string, creds auth.Source) (*Conn, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.ValidateClientTransport(target); err != nil {
		return nil, err
	}

	header := http.Header{}
	if err := auth.ApplyHeader(header, creds); err != nil {
		return nil, fmt.Errorf("session: credentials: %w", err)
	}
	opts := &websocket.DialOptions{
		HTTPHeader:   header,
		Subprotocols: []string{Subprotocol},
	}
	if strings.HasPrefix(target, "wss://") {
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
		}
		tlsCfg, err := cfg.clientTLSConfig(u.Hostname())
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.TLSClientConfig = tlsCfg
			opts.HTTPClient = &http.Client{Transport: transport}
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	ws, resp, err := websocket.Dial(dialCtx, target, opts)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("session: dial %s: status %d: %w", target, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("session: dial %s: %w", target, err)
	}
	if ws.Subprotocol() != Subprotocol {
		_ = ws.CloseNow()
		return nil, ErrSubprotocolRejected
	}
	ws.SetReadLimit(cfg.ReadLimit)
	return &Conn{ws: ws, writeTimeout: cfg.WriteTimeout}, nil
}

// ReadLine blocks for the next text message.
func (c *Conn) ReadLine(ctx context.Context) (string, error) {
	typ, data, err := c.ws.Read(ctx)
	if err != nil {
		return "", err
	}
	if typ != websocket.MessageText {
		return "", ErrBinaryMessage
	}
	return string(data), nil
}

// WriteLine sends one protocol line as a text message.
func (c *Conn) WriteLine(ctx context.Context, line string) error {
	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, []byte(line))
}

// CloseNow drops the connection without a handshake.
func (c *Conn) CloseNow() error {
	return c.ws.CloseNow()
}

// CloseReason describes why the server closed the connection, if it did.
func CloseReason(err error) (websocket.StatusCode, string, bool) {
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Reason, true
	}
	return 0, "", false
}
