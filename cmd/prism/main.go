// Prism — caching aggregation proxy between a client and a federated
// network of broker-reachable back-ends.
//
// Go's net/http honors the standard HTTP_PROXY/HTTPS_PROXY/NO_PROXY
// environment variables automatically (http.ProxyFromEnvironment) when
// talking to the broker; no explicit proxy configuration is read here.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samply/prism/internal/broker"
	"github.com/samply/prism/internal/cache"
	"github.com/samply/prism/internal/clock"
	"github.com/samply/prism/internal/config"
	"github.com/samply/prism/internal/httpapi"
	"github.com/samply/prism/internal/pending"
	"github.com/samply/prism/internal/scheduler"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	envFile := flag.String("env-file", getEnv("ENV_FILE", ".env"), "Path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slog.With("project", cfg.Project, "sites", len(cfg.Sites))
	logger.Info("starting prism", "bind_addr", cfg.BindAddr, "cache_ttl", cfg.CacheTTL)

	brokerClient := broker.NewHTTPClient(cfg.BeamProxyURL, cfg.BeamAPIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := httpapi.WaitForBrokerLive(ctx, brokerClient); err != nil {
		cancel()
		logger.Error("broker liveness check failed", "error", err)
		os.Exit(2)
	}
	cancel()
	logger.Info("broker is healthy")

	criteriaCache := cache.New(cfg.CacheTTL, clock.Real{})
	pendingSet := pending.New()

	taskCfg := broker.TaskConfig{
		FromAddress: cfg.BeamAppID,
		TargetApp:   cfg.TargetApp,
		Project:     cfg.Project,
		QueryBody:   cfg.QueryBody,
	}
	refreshEngine := broker.NewRefreshEngine(brokerClient, criteriaCache, taskCfg, cfg.WaitCount)

	sched := scheduler.New(refreshEngine, pendingSet, cfg.Sites, cfg.RefreshEvery)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	sched.Start(schedCtx)

	server := httpapi.NewServer(criteriaCache, pendingSet, cfg.Sites, cfg.CORSOrigin)

	serveErrCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.BindAddr)
		if err := server.Start(cfg.BindAddr); err != nil && err != http.ErrServerClosed {
			serveErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-serveErrCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err)
	}

	schedCancel()
	sched.Stop()

	logger.Info("prism stopped")
}
