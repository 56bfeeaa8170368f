package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owaspnotes/notesapp/internal/database/users"
	"github.com/owaspnotes/notesapp/internal/entities"
)

// Context keys for the resolved identity
const (
	ContextKeyUser   = "auth_user"
	ContextKeyUserID = "auth_user_id"
)

// rejectReason is the internal taxonomy of authentication failures.
// Every reason funnels into the one public unauthorizedMessage; the
// distinction exists only for server-side logs.
type rejectReason string

const (
	reasonNoCredential      rejectReason = "no credential"
	reasonCredentialInvalid rejectReason = "credential invalid"
	reasonIdentityNotFound  rejectReason = "identity not found"
	reasonLookupFailed      rejectReason = "directory lookup failed"
)

// unauthorizedMessage is the single message returned for every
// authentication failure, preventing account enumeration.
const unauthorizedMessage = "not authorized"

// UserDirectory is the identity lookup the session guard depends on.
// Implementations must exclude the password hash from the projection.
type UserDirectory interface {
	GetUserByID(id uint) (*entities.User, error)
}

// Middleware is the session guard: it turns an inbound credential into a
// resolved identity on the request context, or rejects the request.
type Middleware struct {
	tokens    *TokenService
	transport *Transport
	users     UserDirectory
}

// NewMiddleware creates the session guard middleware.
func NewMiddleware(tokens *TokenService, transport *Transport, users UserDirectory) *Middleware {
	return &Middleware{
		tokens:    tokens,
		transport: transport,
		users:     users,
	}
}

// RequireAuth returns a Gin handler that gates protected routes.
// Request flow: extract token, verify it, load the identity, bind it to
// the context. Every failure, including unexpected directory faults, is
// the same uniform 401.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := m.transport.Extract(c.Request)
		if !ok {
			m.reject(c, reasonNoCredential)
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			m.reject(c, reasonCredentialInvalid)
			return
		}

		user, err := m.users.GetUserByID(userID)
		if err != nil {
			// A deleted account and a directory fault look identical to
			// the caller; only the log tells them apart.
			m.reject(c, classifyLookupFailure(err))
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
		c.Next()
	}
}

func (m *Middleware) reject(c *gin.Context, reason rejectReason) {
	log.Printf("auth: rejected %s %s: %s", c.Request.Method, c.Request.URL.Path, reason)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
}

func classifyLookupFailure(err error) rejectReason {
	if errors.Is(err, users.ErrUserNotFound) {
		return reasonIdentityNotFound
	}
	return reasonLookupFailed
}

// Helper functions to extract the resolved identity from Gin context

// GetUser retrieves the authenticated user from the context.
// Returns nil if the request did not pass the session guard.
func GetUser(c *gin.Context) *entities.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		if user, ok := u.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}
