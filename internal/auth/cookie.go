package auth

import (
	"net/http"
	"time"
)

// DefaultCookieName is the session slot used when no name is configured.
const DefaultCookieName = "payadmin.session"

// CookieStore is the single transport boundary for session tokens.
// It reads and writes the opaque token string via the request's cookie slot
// and performs no verification of its own; that is the Codec's job.
type CookieStore struct {
	// Name is the cookie name.
	Name string
	// Secure marks the cookie as HTTPS-only. Enabled in production, off for
	// local development over plain HTTP.
	Secure bool
}

// NewCookieStore creates a cookie store. An empty name falls back to
// DefaultCookieName.
func NewCookieStore(name string, secure bool) *CookieStore {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieStore{Name: name, Secure: secure}
}

// Read returns the raw session token from the request, if present.
func (s *CookieStore) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Write stores the token with an explicit expiration matching the token's
// own expiry. The cookie is never readable by client-side scripts and is
// scoped to same-site navigation across the whole application.
func (s *CookieStore) Write(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the session slot immediately. Used on sign-out.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
