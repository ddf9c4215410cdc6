package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchd/internal/catalog"
	"github.com/kailas-cloud/searchd/internal/command"
	"github.com/kailas-cloud/searchd/internal/config"
	"github.com/kailas-cloud/searchd/internal/errorstats"
	logpkg "github.com/kailas-cloud/searchd/internal/logger"
	"github.com/kailas-cloud/searchd/internal/metrics"
	chiTransport "github.com/kailas-cloud/searchd/internal/transport/chi"
	"github.com/kailas-cloud/searchd/internal/transport/resp"
	"github.com/kailas-cloud/searchd/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchd",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("resp_addr", cfg.RESP.Addr),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	errs := errorstats.New(errorstats.Options{
		MaxEntries: cfg.ErrorStats.MaxEntries,
		Logger:     logger,
	})
	cat := catalog.New(catalog.Options{
		MaxIndexes: cfg.Search.MaxIndexes,
		MaxFields:  cfg.Search.MaxFields,
	})

	// Register metrics explicitly (no init())
	metrics.RegisterCommandMetrics()
	prometheus.MustRegister(metrics.NewErrorStatsCollector(errs))

	dispatcher := command.New(cat, errs, command.Config{
		MaxSearchResults:    cfg.Search.MaxSearchResults,
		MaxAggregateResults: cfg.Search.MaxAggregateResults,
		DefaultDialect:      cfg.Search.DefaultDialect,
		MaxPrefixTerms:      cfg.Search.MaxPrefixExpansions,
		HideUserData:        cfg.Logging.HideUserData,
		Version:             version.Version,
		Commit:              version.Commit,
		Port:                listenPort(cfg.RESP.Addr),
	}, logger).WithObserver(metrics.CommandObserver{})

	respSrv := resp.NewServer(cfg.RESP.Addr, dispatcher, logger)
	if err := respSrv.Start(); err != nil {
		logger.Fatal("Failed to start RESP server", zap.Error(err))
	}

	var httpSrv *http.Server
	if cfg.HTTP.Port > 0 {
		admin := chiTransport.NewServer(errs, cat, version.Version, logger)
		httpSrv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      admin.Router(cfg.Auth.APIKeys, nil),
			ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		}
		go func() {
			logger.Info("Starting admin HTTP server", zap.String("addr", httpSrv.Addr))
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("HTTP server error", zap.Error(err))
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("Received shutdown signal")

	if err := respSrv.Shutdown(); err != nil {
		logger.Error("Error stopping RESP server", zap.Error(err))
	}

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during HTTP shutdown", zap.Error(err))
		}
	}

	snap := errs.Snapshot()
	logger.Info("Server stopped gracefully",
		zap.Uint64("total_error_replies", snap.TotalErrorReplies),
		zap.Int("error_codes", len(snap.Entries)),
	)
}

// listenPort extracts the port from a host:port listen address for INFO.
func listenPort(addr string) int {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(port)
	return n
}
