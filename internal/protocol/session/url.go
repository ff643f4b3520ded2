package session

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// EndpointPath is where the enrollment server accepts websocket upgrades.
const EndpointPath = "/ws"

var ErrInvalidOrigin = errors.New("session: invalid origin")

// DeriveURL maps the page origin onto the websocket endpoint: http becomes
// ws, https becomes wss, host and port are kept and the path is /ws.
// ws:// and wss:// origins are accepted as-is apart from the path.
func DeriveURL(origin string) (string, error) {
	raw := strings.TrimSpace(origin)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidOrigin)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidOrigin, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidOrigin, origin)
	}
	u.Path = EndpointPath
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String(), nil
}
