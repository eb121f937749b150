package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/analysis"
	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/config"
	"github.com/dgnsrekt/gexlens/internal/gex"
	"github.com/dgnsrekt/gexlens/internal/marketdata"
	"github.com/dgnsrekt/gexlens/internal/server"
	"github.com/dgnsrekt/gexlens/internal/ws"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Setup logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	// Load config
	cfg, err := config.Load(os.Getenv("GEXLENS_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}

	logger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.Int("workers", cfg.Server.Workers),
		zap.Int("maxExpirations", cfg.Server.MaxExpirations),
		zap.Strings("tickers", cfg.Tickers),
		zap.Bool("wsEnabled", cfg.Server.WSEnabled),
		zap.Duration("wsStreamInterval", cfg.Server.WSStreamInterval),
	)

	// Market-data provider
	provider := marketdata.NewHTTPProvider(
		cfg.Provider.BaseURL,
		cfg.Provider.APIKey,
		cfg.Provider.RatePerSecond,
		time.Duration(cfg.Provider.TimeoutSec)*time.Second,
		time.Duration(cfg.Provider.RetryDelaySec)*time.Second,
		cfg.Provider.RetryCount,
		logger,
	)

	// Analytics pipeline
	params := gex.Params{
		RiskFreeRate:  cfg.Model.RiskFreeRate,
		DividendYield: cfg.Model.DividendYield,
		MinVol:        cfg.Model.MinVol,
		MaxVol:        cfg.Model.MaxVol,
		ScanWidth:     cfg.Model.ScanWidth,
	}
	engine := analysis.NewEngine(params, cfg.Server.Workers, logger)
	service := analysis.NewService(provider, engine, chain.NewMarketCalendar(), cfg.Server.MaxExpirations, logger)
	store := analysis.NewLatestStore()

	// Create server
	srv := server.NewServer(service, store, cfg, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket components (optional)
	var analysisHub *ws.Hub
	if cfg.Server.WSEnabled {
		analysisHub, err = ws.NewHub("analysis", logger, ws.IsValidAnalysisGroup)
		if err != nil {
			logger.Error("failed to create hub", zap.Error(err))
			return 1
		}
		go analysisHub.Run(ctx)

		streamer := ws.NewAnalysisStreamer(analysisHub, service, store, cfg.Server.WSStreamInterval, logger)
		go streamer.Run(ctx)

		logger.Info("WebSocket enabled",
			zap.Duration("streamInterval", cfg.Server.WSStreamInterval),
		)
	}

	// Create router
	router, err := server.NewRouter(srv, analysisHub, logger)
	if err != nil {
		logger.Error("failed to create router", zap.Error(err))
		return 1
	}

	// Setup HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Cancel context to stop WebSocket components
	cancel()

	// Graceful HTTP server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}
