package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/liftline/internal/config"
	"github.com/claude/liftline/internal/mcp"
	"github.com/claude/liftline/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode, connects to Postgres)")
	baseURL := flag.String("url", "", "Liftline server base URL (remote mode, queries the REST API)")
	userID := flag.Int("user", 1, "user ID to scope queries to")
	flag.Parse()

	// stderr: stdout carries the MCP stdio transport
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	switch {
	case *baseURL != "":
		ds = mcp.NewHTTPClient(*baseURL)
		log.Info("MCP server starting", "mode", "remote", "url", *baseURL)
	case *configPath != "":
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("MCP server starting", "mode", "local")
	default:
		fmt.Fprintf(os.Stderr, "Usage: liftline-mcp (-config config.yaml | -url http://host) [-user 1]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := mcp.New(ds, Version, log)

	err := mcpserver.ServeStdio(s,
		mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return mcp.WithUserID(ctx, *userID)
		}),
	)
	if err != nil {
		log.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
