package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mailsage/internal/ai"
	"mailsage/internal/config"
	"mailsage/internal/gmail"
	"mailsage/internal/handler"
	"mailsage/internal/logger"
	"mailsage/internal/model"
	"mailsage/internal/repository"
	"mailsage/internal/repository/memory"
	"mailsage/internal/repository/postgres"
	"mailsage/internal/repository/sqlite"
	"mailsage/internal/router"
	"mailsage/internal/service"
	"mailsage/internal/session"
	"mailsage/internal/sse"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatal("Config validation failed:", err)
	}

	appLogger := logger.New()

	repos, err := openRepositories(cfg, appLogger)
	if err != nil {
		log.Fatal("Failed to open storage:", err)
	}
	defer repos.Close()

	sessions := session.NewManager(repos.Pins.ListPins)
	sseManager := sse.NewSSEManager(appLogger)

	aiClient := ai.NewAIClient(cfg, appLogger)
	gmailClient := gmail.NewGmailClient(cfg, persistToken(repos.Users, appLogger), appLogger)

	// Initialize services
	authService := service.NewAuthService(repos.Users, sessions, appLogger)
	inboxService := service.NewInboxService(
		sessions,
		repos.Users,
		repos.Pins,
		gmailClient,
		sseManager,
		cfg.MailTimeout,
		cfg.MailboxWriteback,
		appLogger,
	)
	summaryService := service.NewSummaryService(
		sessions,
		repos.Summaries,
		aiClient,
		sseManager,
		cfg.SummaryCharLimit,
		cfg.OracleTimeout,
		appLogger,
	)
	assistantService := service.NewAssistantService(sessions, inboxService, aiClient, cfg.OracleTimeout, appLogger)
	stateService := service.NewStateService(sessions)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	router.SetupRoutes(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg, e.Logger),
		Inbox:     handler.NewInboxHandler(inboxService, e.Logger),
		Summary:   handler.NewSummaryHandler(summaryService, e.Logger),
		Assistant: handler.NewAssistantHandler(assistantService, e.Logger),
		State:     handler.NewStateHandler(stateService, e.Logger),
		Events:    handler.NewEventsHandler(sseManager, e.Logger),
	})

	var refreshJob *sse.InboxRefreshJob
	if cfg.RefreshInterval > 0 {
		refreshJob = sse.NewInboxRefreshJob(inboxService, sseManager, cfg.RefreshInterval, appLogger)
		refreshJob.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Starting server on port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server:", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	if refreshJob != nil {
		refreshJob.Stop()
	}
	// open event streams return once the manager closes
	sseManager.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed:", err)
	}
}

// openRepositories picks postgres, then sqlite, then memory.
func openRepositories(cfg *config.Config, appLogger *logger.Logger) (*repository.Repositories, error) {
	switch {
	case cfg.DatabaseURL != "":
		appLogger.Info("Using PostgreSQL repositories")
		return postgres.Open(cfg.DatabaseURL)
	case cfg.SQLitePath != "":
		store, err := sqlite.Open(context.Background(), cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		appLogger.Info("Using SQLite repositories at", cfg.SQLitePath)
		return store.Repositories(), nil
	default:
		appLogger.Info("Using in-memory repositories")
		return memory.New(), nil
	}
}

// persistToken stores tokens the oauth2 library refreshed during Gmail calls.
func persistToken(users repository.UserRepository, appLogger *logger.Logger) gmail.TokenUpdateFunc {
	return func(user *model.User, token *oauth2.Token) {
		updated := *user
		updated.AccessToken = token.AccessToken
		updated.TokenExpiry = token.Expiry
		if token.RefreshToken != "" {
			updated.RefreshToken = token.RefreshToken
		}
		if err := users.Update(context.Background(), &updated); err != nil {
			appLogger.Warn("Failed to persist refreshed token for user", user.ID, ":", err)
		}
	}
}
