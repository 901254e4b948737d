package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/splax/quill/internal/app/migrate"
	httpx "github.com/splax/quill/internal/http"
	"github.com/splax/quill/internal/repository/postgres"
	"github.com/splax/quill/internal/service/auth"
	"github.com/splax/quill/internal/service/comment"
	"github.com/splax/quill/internal/service/post"
	"github.com/splax/quill/pkg/config"
	jwtpkg "github.com/splax/quill/pkg/jwt"
	"github.com/splax/quill/pkg/logger"
	"github.com/splax/quill/pkg/sanitize"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	runner, err := migrate.New(pool, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	tokens, err := jwtpkg.NewManager(cfg.JWTSecret)
	if err != nil {
		log.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	clean := sanitize.New()
	authSvc := auth.New(repo, tokens, log, cfg)
	postSvc := post.New(repo, clean, log)
	commentSvc := comment.New(repo, repo, clean, log)

	router := httpx.NewRouter(log, authSvc, postSvc, commentSvc, cfg.CookieSecure, pool.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
