package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/UserDirectory/internal/config"
	"github.com/GoArmGo/UserDirectory/internal/handler"
	"github.com/GoArmGo/UserDirectory/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 30 * time.Second

// newRouter собирает роутер со всеми middleware
func newRouter(cfg *config.Config, logger *slog.Logger, userUseCase usecase.UserUseCase) http.Handler {
	userHandler := handler.NewUserHandler(userUseCase, logger)

	r := chi.NewRouter()
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	userHandler.Register(r)
	return r
}

// runServer запускает HTTP сервер и останавливает его, когда ctx отменён
func runServer(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	userUseCase usecase.UserUseCase,
) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           newRouter(cfg, logger, userUseCase),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, stopping HTTP server")

	ctxServer, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxServer); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("HTTP server stopped")
	return nil
}
