// Package sessiontoken issues and verifies the signed, stateless credential
// that identifies an authenticated user in a URL query parameter. The token
// carries its own expiry and is authenticated with HMAC-SHA256 under a
// server-held secret; there is no server-side state and no per-token
// revocation. Rotating the secret invalidates every outstanding token.
package sessiontoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultTTL is how long an issued token remains valid.
const DefaultTTL = 30 * 24 * time.Hour

// separator joins the encoded payload and the hex tag. Verify splits on its
// last occurrence so a (hypothetical) separator inside the payload encoding
// could never confuse parsing.
const separator = "."

// ErrInvalidToken is returned by Verify for any token that does not check
// out: malformed, forged, or expired. Callers treat it as "not logged in",
// never as a fault.
var ErrInvalidToken = errors.New("sessiontoken: invalid token")

// payload is the signed content. Field order is fixed by the struct so the
// serialized bytes, and therefore the tag, are reproducible.
type payload struct {
	UID int64  `json:"uid"`
	Exp string `json:"exp"`
}

// Service issues and verifies tokens under a single secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

// WithTTL overrides the default 30 day token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock substitutes the time source, used by tests to issue tokens in
// the past or future.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Service signing with the given secret. An empty secret is a
// configuration error: there is deliberately no insecure fallback value, so
// construction fails and startup should abort.
func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("sessiontoken: signing secret is required")
	}

	s := &Service{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a token identifying userID, valid for the service TTL.
// The result is base64url(payload) + "." + hex(tag), safe to place in a URL
// query value without further escaping.
func (s *Service) Issue(userID int64) (string, error) {
	if userID <= 0 {
		return "", errors.New("sessiontoken: user id must be positive")
	}

	raw, err := json.Marshal(payload{
		UID: userID,
		Exp: s.now().UTC().Add(s.ttl).Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw) + separator + s.tag(raw), nil
}

// Verify checks token and returns the embedded user id. Every failure mode
// returns ErrInvalidToken; Verify never panics on arbitrary input.
func (s *Service) Verify(token string) (int64, error) {
	idx := strings.LastIndex(token, separator)
	if idx < 0 {
		return 0, ErrInvalidToken
	}
	encoded, sig := token[:idx], token[idx+1:]

	// Tolerate padded and unpadded base64url alike.
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return 0, ErrInvalidToken
	}

	// Constant-time comparison of the hex tags.
	if !hmac.Equal([]byte(sig), []byte(s.tag(raw))) {
		return 0, ErrInvalidToken
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return 0, ErrInvalidToken
	}

	exp, err := time.Parse(time.RFC3339, p.Exp)
	if err != nil || !s.now().Before(exp) {
		return 0, ErrInvalidToken
	}

	if p.UID <= 0 {
		return 0, ErrInvalidToken
	}

	return p.UID, nil
}

func (s *Service) tag(raw []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}
