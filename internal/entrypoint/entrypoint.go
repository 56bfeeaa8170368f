package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/owaspnotes/notesapp/internal/auth"
	"github.com/owaspnotes/notesapp/internal/config"
	"github.com/owaspnotes/notesapp/internal/database"
	auditdb "github.com/owaspnotes/notesapp/internal/database/audit"
	notesdb "github.com/owaspnotes/notesapp/internal/database/notes"
	usersdb "github.com/owaspnotes/notesapp/internal/database/users"
	http_controllers "github.com/owaspnotes/notesapp/internal/http"
	"github.com/owaspnotes/notesapp/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting notes server v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set; refusing to serve authenticated endpoints without a signing key")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := usersdb.NewRepository(db.DB)
	noteRepo := notesdb.NewRepository(db.DB)
	auditRepo := auditdb.NewRepository(db.DB)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	transport := auth.NewTransport(cfg.Auth, int(tokens.Lifetime().Seconds()))
	stepUp := auth.NewStepUpTickets(cfg.Auth.StepUpTicketTTL)
	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})

	sessionGuard := auth.NewMiddleware(tokens, transport, userRepo)
	authController := auth.NewController(userRepo, tokens, transport, stepUp, rateLimiter, auditRepo, cfg.Auth)
	notesController := http_controllers.NewNotesController(noteRepo, stepUp)

	auditCleanup := scheduler.NewAuditCleanupScheduler(auditRepo, cfg.Audit.RetentionDays, cfg.Audit.CleanupSchedule)
	if err := auditCleanup.Start(); err != nil {
		log.Printf("WARNING: audit cleanup scheduler not started: %v", err)
	}

	router := http_controllers.NewRouter(cfg, http_controllers.RouterDeps{
		AuthController:  authController,
		NotesController: notesController,
		SessionGuard:    sessionGuard,
	})

	Serve(router, cfg, func(ctx context.Context) {
		auditCleanup.Stop()
		rateLimiter.Stop()
		stepUp.Stop()
	})
}
