package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"callout/anim"
	"callout/config"
	"callout/storage"
	"callout/systray"
	"callout/web"
)

func main() {
	// Setup logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	configPath, _ := config.ConfigPath()
	slog.Info("Configuration loaded", "path", configPath)

	dir, err := config.Dir()
	if err != nil {
		slog.Error("Failed to resolve data directory", "error", err)
		os.Exit(1)
	}

	// Animation table and timing config
	store := anim.Open(dir)

	// Dispatch history
	db, err := storage.Open(dir)
	if err != nil {
		slog.Error("Failed to open history database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Create agent
	agent, err := NewAgent(cfg, store, db)
	if err != nil {
		slog.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	// Web dashboard
	if cfg.Web.Enabled {
		server := web.NewServer(db, cfg, store, cfg.Web.Port)
		server.StatusFunc = func() any { return agent.Snapshot() }
		agent.SetNotifier(server)
		go func() {
			if err := server.Start(); err != nil {
				slog.Error("Web server stopped", "error", err)
			}
		}()
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tray := systray.NewManager(cfg.Web.Port, nil)

	// Run agent alongside the tray loop
	go func() {
		if err := agent.Run(ctx); err != nil {
			slog.Error("Agent error", "error", err)
		}
		tray.Stop()
	}()

	go func() {
		select {
		case <-tray.WaitForQuit():
			cancel()
		case <-ctx.Done():
		}
	}()

	// Blocks until quit; must run on the main goroutine.
	tray.Run()

	slog.Info("Callout stopped")
}
