package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Flash is a one-shot message rendered on the next page view.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session holds the per-visitor state: the authenticated user (0 when
// anonymous), the CSRF secret, the basket and pending flash messages.
// Sessions exist for anonymous visitors too, so the basket and CSRF token
// are available before login.
type Session struct {
	ID        string         `json:"id"`
	UserID    int            `json:"user_id"`
	CSRFToken string         `json:"csrf_token"`
	Basket    map[string]int `json:"basket"`
	Flashes   []Flash        `json:"flashes"`
}

// NewSession creates a fresh anonymous session with a CSRF secret.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CSRFToken: newToken(),
		Basket:    make(map[string]int),
	}
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(level, message string) {
	s.Flashes = append(s.Flashes, Flash{Level: level, Message: message})
}

// PopFlashes returns queued messages and clears the queue.
func (s *Session) PopFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// ValidCSRF reports whether the submitted form token matches the session
// secret. Comparison is constant-time.
func (s *Session) ValidCSRF(formToken string) bool {
	if formToken == "" || s.CSRFToken == "" {
		return false
	}
	return hmac.Equal([]byte(formToken), []byte(s.CSRFToken))
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// SignID returns the cookie value for a session ID: the ID joined with an
// HMAC-SHA256 signature under the configured secret.
func SignID(secret, id string) string {
	return id + "." + signature(secret, id)
}

// VerifyID parses a cookie value and checks its signature. A tampered or
// malformed value yields ok == false.
func VerifyID(secret, value string) (string, bool) {
	id, sig, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(signature(secret, id))) {
		return "", false
	}
	return id, true
}

func signature(secret, id string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
