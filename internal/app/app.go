package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unihub-auth/internal/config"
	"unihub-auth/internal/database"
	"unihub-auth/internal/handler"
	"unihub-auth/internal/middleware"
	"unihub-auth/internal/password"
	"unihub-auth/internal/repository"
	"unihub-auth/internal/router"
	"unihub-auth/internal/service"
	"unihub-auth/internal/token"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.UsingDefaultSecret() {
		slog.Warn("TOKEN_SECRET is the insecure default; override it in any non-development deployment")
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	tokenRepo := repository.NewTokenRepository(db.Pool)
	slog.Info("database ready")

	hasher := password.NewHasher(cfg.PBKDF2Iterations)
	codec := token.NewCodec(cfg.TokenSecret)
	issuer := token.NewIssuer(codec, cfg.AccessTTL, cfg.RefreshTTL)

	authService := service.NewAuthService(hasher, codec, issuer, userRepo, tokenRepo)
	if cfg.SeedDemoUsers {
		if err := authService.SeedDefaultUsers(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed demo users: %w", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService)

	appRouter := router.New(cfg, authMiddleware, authHandler)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.db.Close()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
