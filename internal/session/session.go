// Package session carries the shopper's auth token explicitly through the request path.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

const CookieName = "auth_token"

var ErrMissingToken = errors.New("missing auth token")

type Session struct {
	Token string
}

// FromRequest reads the bearer token, falling back to the auth cookie.
func FromRequest(r *http.Request) (*Session, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			return &Session{Token: strings.TrimSpace(token)}, nil
		}
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return &Session{Token: c.Value}, nil
	}
	return nil, ErrMissingToken
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Apply sets the Authorization header on an outgoing request.
func (s *Session) Apply(req *http.Request) {
	if s.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
}

// Fingerprint identifies the session owner without storing the token itself.
func (s *Session) Fingerprint() string {
	if !s.Authenticated() {
		return ""
	}
	sum := sha256.Sum256([]byte(s.Token))
	return hex.EncodeToString(sum[:])
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
