package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/owaspnotes/notesapp/internal/config"
)

// Transport moves credential tokens between the server and its callers
// over two independent channels: an HTTP-only cookie for browsers that
// accept it, and the response body / Authorization header for callers in
// environments that block cross-site cookies. Both channels always carry
// the identical token value.
type Transport struct {
	cookieName string
	secure     bool
	maxAge     int
}

// NewTransport creates a transport. maxAge should equal the token lifetime.
func NewTransport(cfg config.Auth, maxAgeSeconds int) *Transport {
	name := cfg.CookieName
	if name == "" {
		name = config.DefaultCookieName
	}
	return &Transport{
		cookieName: name,
		secure:     cfg.SecureCookies,
		maxAge:     maxAgeSeconds,
	}
}

// Attach writes the token as an HTTP-only, SameSite=None cookie and
// returns it for inclusion in the response payload. SameSite=None requires
// the Secure flag; disabling secure cookies is for local dev only.
func (t *Transport) Attach(c *gin.Context, token string) string {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(t.cookieName, token, t.maxAge, "/", "", t.secure, true)
	return token
}

// Extract reads a token from the request. The bearer header, when present
// and well-formed, is used exclusively; the cookie is only consulted when
// no bearer header exists. The two channels are never merged or compared.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
		// A malformed Authorization header still means the caller chose
		// the header channel; do not fall through to the cookie.
		return "", false
	}

	cookie, err := r.Cookie(t.cookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Clear overwrites the cookie with an empty value and a past expiry.
// The attributes must exactly match those used by Attach: conforming
// clients silently ignore a deletion whose flags differ.
func (t *Transport) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(t.cookieName, "", -1, "/", "", t.secure, true)
}

// CookieName returns the configured cookie name.
func (t *Transport) CookieName() string {
	return t.cookieName
}
