package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/tempo/internal/config"
	"github.com/agenthands/tempo/internal/core"
	"github.com/agenthands/tempo/internal/driver"
	"github.com/agenthands/tempo/internal/llm"
	"github.com/agenthands/tempo/internal/logging"
	"github.com/agenthands/tempo/internal/metrics"
	"github.com/agenthands/tempo/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a TOML or YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	settings, err := core.SettingsFromConfig(cfg)
	if err != nil {
		return err
	}

	drv, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
	if err != nil {
		return err
	}
	defer func() { _ = drv.Close(context.Background()) }()

	gen, embedder, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	if gen == nil {
		logger.Info("no llm provider configured; narration and goal alignment disabled")
	}

	reg := metrics.NewRegistry()
	ledger, err := core.NewLedger(drv, settings, core.Deps{
		LLM:      gen,
		Embedder: embedder,
		Prompts:  cfg.Prompts,
		Logger:   logger,
		Metrics:  reg,
	})
	if err != nil {
		return err
	}
	if err := ledger.BuildIndices(ctx); err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	srv := server.NewServer(ledger, settings, reg, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
