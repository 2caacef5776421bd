package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"

	"github.com/comigor/schoolassist-go/internal/config"
	"github.com/comigor/schoolassist-go/internal/format"
	"github.com/comigor/schoolassist-go/internal/history"
	"github.com/comigor/schoolassist-go/internal/llm"
	"github.com/comigor/schoolassist-go/internal/logger"
	"github.com/comigor/schoolassist-go/internal/mcptools"
	"github.com/comigor/schoolassist-go/internal/session"
)

var version = "dev"

func main() {
	configPath := pflag.String("config", "", "path to config file (overrides CONFIG_PATH)")
	pflag.Parse()

	_ = godotenv.Load()
	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol.
	logger.Configure(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		logger.L.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}

	store := history.Open(context.Background(), cfg.History)
	defer store.Close()

	f := format.New(format.EscapeHTML(cfg.Format.EscapeHTML), format.Highlight(cfg.Format.HighlightStyle))
	sessions := session.NewManager(session.Deps{
		Store:     store,
		Generator: gen,
		Formatter: f,
	})

	s := mcptools.Default(sessions, f).Server("schoolassist", version)
	if err := server.ServeStdio(s); err != nil {
		logger.L.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
