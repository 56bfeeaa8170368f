package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/owaspnotes/notesapp/internal/auth"
	"github.com/owaspnotes/notesapp/internal/config"
)

// RouterDeps bundles the collaborators the router wires together.
type RouterDeps struct {
	AuthController  *auth.Controller
	NotesController *NotesController
	SessionGuard    *auth.Middleware
}

// NewRouter builds the gin engine: CORS for the cross-origin SPA,
// security headers, and the API route groups.
func NewRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// The SPA runs on a different origin and sends credentials, so the
	// allowed origins must be explicit; a wildcard cannot be combined
	// with AllowCredentials.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", auth.HeaderStepUpTicket},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware(31536000))

	router.GET("/health", HealthCheck)

	api := router.Group("/api")
	guard := deps.SessionGuard.RequireAuth()
	deps.AuthController.RegisterRoutes(api, guard)
	deps.NotesController.RegisterRoutes(api, guard)

	return router
}
