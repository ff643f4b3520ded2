// Package auth supplies the credentials presented on the websocket
// handshake.
//
// It intentionally avoids policy decisions; the server decides whether a
// session is valid and answers U when it is not.
package auth

import (
	"errors"
	"net/http"
	"strings"
)

// SessionCookieName is the cookie the enrollment server reads.
const SessionCookieName = "session"

var ErrNoSession = errors.New("auth: no session")

// Source yields the session token for the next handshake.
type Source interface {
	Session() (string, error)
}

// StaticSession is a fixed token, typically read from the environment.
type StaticSession struct {
	Token string
}

func (s StaticSession) Session() (string, error) {
	token := strings.TrimSpace(s.Token)
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// FuncSource adapts a function into a Source.
type FuncSource func() (string, error)

func (f FuncSource) Session() (string, error) {
	return f()
}

// ApplyHeader adds the session cookie to h. A missing session is not an
// error here: the server answers U and the user is told.
func ApplyHeader(h http.Header, src Source) error {
	if src == nil {
		return nil
	}
	token, err := src.Session()
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	cookie := &http.Cookie{Name: SessionCookieName, Value: token}
	h.Add("Cookie", cookie.String())
	return nil
}
