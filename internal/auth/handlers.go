package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/owaspnotes/notesapp/internal/config"
	"github.com/owaspnotes/notesapp/internal/database/users"
	"github.com/owaspnotes/notesapp/internal/entities"
)

// UserStore defines the user directory operations the auth endpoints need.
type UserStore interface {
	CreateUser(name, email, passwordHash string) (*entities.User, error)
	GetUserByEmail(email string) (*entities.User, error)
	GetCredentials(id uint) (*entities.User, error)
}

// AuditLogger records authentication events. May be nil to disable auditing.
type AuditLogger interface {
	LogEvent(event *entities.AuditEvent) error
}

// Controller handles authentication HTTP endpoints.
type Controller struct {
	store       UserStore
	tokens      *TokenService
	transport   *Transport
	stepUp      *StepUpTickets
	rateLimiter *RateLimiter
	audit       AuditLogger
	config      config.Auth
}

// NewController creates the authentication controller.
func NewController(store UserStore, tokens *TokenService, transport *Transport, stepUp *StepUpTickets, rateLimiter *RateLimiter, audit AuditLogger, cfg config.Auth) *Controller {
	return &Controller{
		store:       store,
		tokens:      tokens,
		transport:   transport,
		stepUp:      stepUp,
		rateLimiter: rateLimiter,
		audit:       audit,
		config:      cfg,
	}
}

// RegisterRoutes registers auth routes. Protected endpoints sit behind the
// session guard; register/login are public.
func (ac *Controller) RegisterRoutes(api *gin.RouterGroup, guard gin.HandlerFunc) {
	authGroup := api.Group("/auth")
	authGroup.POST("/register", ac.Register)
	authGroup.POST("/login", ac.Login)
	authGroup.POST("/logout", guard, ac.Logout)
	authGroup.GET("/profile", guard, ac.Profile)
	authGroup.POST("/verify-password", guard, ac.VerifyPassword)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

// identityResponse is the payload returned by register and login. The
// token travels both here and in the cookie so callers in cookie-blocking
// environments can store and resend it themselves.
type identityResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// Register handles POST /api/auth/register.
func (ac *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide username, email and password"})
		return
	}

	hash, err := HashPassword(req.Password, ac.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("auth: failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := ac.store.CreateUser(req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			ac.logEvent(c, 0, entities.AuditEventRegister, entities.AuditStatusFailed)
			c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
			return
		}
		log.Printf("auth: failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := ac.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("auth: failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	ac.transport.Attach(c, token)
	ac.logEvent(c, user.ID, entities.AuditEventRegister, entities.AuditStatusSuccess)

	c.JSON(http.StatusCreated, identityResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	})
}

// Login handles POST /api/auth/login.
// All credential failures return the same message so callers cannot tell
// an unknown email from a wrong password.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	clientIP := c.ClientIP()

	if ac.rateLimiter != nil {
		allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email)
		if !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
			return
		}
	}

	user, err := ac.store.GetUserByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			log.Printf("auth: login lookup failed: %v", err)
		}
		ac.loginFailed(c, clientIP, req.Email, 0)
		return
	}

	if err := CheckPassword(req.Password, user.PasswordHash); err != nil {
		ac.loginFailed(c, clientIP, req.Email, user.ID)
		return
	}

	token, err := ac.tokens.Issue(user.ID)
	if err != nil {
		log.Printf("auth: failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	}
	ac.transport.Attach(c, token)
	ac.logEvent(c, user.ID, entities.AuditEventLogin, entities.AuditStatusSuccess)

	c.JSON(http.StatusOK, identityResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: token,
	})
}

func (ac *Controller) loginFailed(c *gin.Context, ip, email string, userID uint) {
	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordFailure(ip, email)
	}
	ac.logEvent(c, userID, entities.AuditEventLogin, entities.AuditStatusFailed)
	c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
}

// Logout handles POST /api/auth/logout. It clears the cookie channel; the
// bearer channel has nothing to clear server-side, the token simply ages
// out or is discarded by the client.
func (ac *Controller) Logout(c *gin.Context) {
	ac.transport.Clear(c)
	ac.logEvent(c, GetUserID(c), entities.AuditEventLogout, entities.AuditStatusSuccess)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Profile handles GET /api/auth/profile. The session guard already
// resolved the identity with the password hash excluded.
func (ac *Controller) Profile(c *gin.Context) {
	user := GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
		return
	}
	c.JSON(http.StatusOK, user)
}

// VerifyPassword handles POST /api/auth/verify-password: the step-up
// check for private notes. The identity is re-loaded from the directory,
// ignoring whatever the session guard cached, and the supplied password is
// compared against the stored hash. Success issues a single-use ticket and
// mutates nothing else; the session token is untouched.
func (ac *Controller) VerifyPassword(c *gin.Context) {
	var req verifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	userID := GetUserID(c)
	user, err := ac.store.GetCredentials(userID)
	if err != nil {
		log.Printf("auth: step-up credential lookup failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	if err := CheckPassword(req.Password, user.PasswordHash); err != nil {
		ac.logEvent(c, userID, entities.AuditEventStepUp, entities.AuditStatusFailed)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	ticket := ""
	if ac.stepUp != nil {
		ticket = ac.stepUp.Issue(userID)
	}
	ac.logEvent(c, userID, entities.AuditEventStepUp, entities.AuditStatusSuccess)

	c.JSON(http.StatusOK, gin.H{
		"message": "password verified successfully",
		"ticket":  ticket,
	})
}

func (ac *Controller) logEvent(c *gin.Context, userID uint, eventType entities.AuditEventType, status entities.AuditStatus) {
	if ac.audit == nil {
		return
	}
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Status:    status,
	}
	if err := ac.audit.LogEvent(event); err != nil {
		log.Printf("auth: failed to record audit event: %v", err)
	}
}
