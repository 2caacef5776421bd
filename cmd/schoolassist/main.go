package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/comigor/schoolassist-go/internal/config"
	"github.com/comigor/schoolassist-go/internal/format"
	"github.com/comigor/schoolassist-go/internal/history"
	"github.com/comigor/schoolassist-go/internal/llm"
	"github.com/comigor/schoolassist-go/internal/logger"
	"github.com/comigor/schoolassist-go/internal/metrics"
	"github.com/comigor/schoolassist-go/internal/server"
	"github.com/comigor/schoolassist-go/internal/session"
)

func main() {
	configPath := pflag.String("config", "", "path to config file (overrides CONFIG_PATH)")
	logLevel := pflag.String("log-level", "", "log level (debug, info, warn, error)")
	pflag.Parse()

	// A missing .env is fine.
	_ = godotenv.Load()
	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		logger.L.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.L.Warn("no API key configured; replies will fall back to an apology", "provider", cfg.LLM.Provider)
	}

	store := history.Open(ctx, cfg.History)
	defer store.Close()

	sessions := session.NewManager(session.Deps{
		Store:     store,
		Generator: gen,
		Formatter: format.New(format.EscapeHTML(cfg.Format.EscapeHTML), format.Highlight(cfg.Format.HighlightStyle)),
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
	})

	srv := server.New(sessions, prometheus.DefaultGatherer)
	if err := srv.Run(ctx, net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)); err != nil {
		logger.L.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
