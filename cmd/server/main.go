package main

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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"finrag-orchestrator/internal/adapter/httpapi"
	"finrag-orchestrator/internal/di"
	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/infra"
	"finrag-orchestrator/internal/infra/config"
	"finrag-orchestrator/internal/infra/logger"
	"finrag-orchestrator/internal/lexical"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	// 3. Initialize DB
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
	dbPool, err := infra.NewPostgresDB(context.Background(), dsn, infra.PoolConfig{MaxConns: cfg.DB.MaxConns})
	if err != nil {
		log.Error("failed to connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Load persisted keyword index, if any. A missing or empty index is
	// not fatal; hybrid queries degrade to vector-only until a rebuild.
	keywordIndex, err := lexical.Load(cfg.Keyword.IndexPath)
	switch {
	case err == nil:
		log.Info("keyword_index_loaded",
			slog.String("path", cfg.Keyword.IndexPath),
			slog.Int("chunks", keywordIndex.Len()))
	case errors.Is(err, os.ErrNotExist) || errors.Is(err, domain.ErrEmptyCorpus):
		log.Warn("keyword_index_missing", slog.String("path", cfg.Keyword.IndexPath))
		keywordIndex = nil
	case errors.Is(err, domain.ErrIndexCorrupt):
		log.Error("keyword_index_corrupt, serving without it",
			slog.String("path", cfg.Keyword.IndexPath),
			slog.String("error", err.Error()))
		keywordIndex = nil
	default:
		log.Error("failed to load keyword index", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Wire components
	components, err := di.NewApplicationComponents(cfg, dbPool, keywordIndex, log)
	if err != nil {
		log.Error("failed to wire components", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Start rebuild worker
	components.RebuildWorker.Start()
	defer components.RebuildWorker.Stop()
	if keywordIndex == nil {
		// Bring the keyword path up as soon as the corpus allows.
		components.RebuildWorker.Trigger()
	}

	// 7. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("http_request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency))
			return nil
		},
	}))

	// 8. Register Handlers
	handler := httpapi.NewHandler(components.QueryUsecase, components.RebuildWorker)
	handler.Register(e)

	// 9. Health Checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	// 10. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("server_starting", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
