package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/gymchat/internal/coach"
	"github.com/claude/gymchat/internal/config"
	"github.com/claude/gymchat/internal/events"
	"github.com/claude/gymchat/internal/interpret"
	gymmcp "github.com/claude/gymchat/internal/mcp"
	"github.com/claude/gymchat/internal/resolver"
	"github.com/claude/gymchat/internal/server"
	"github.com/claude/gymchat/internal/session"
	"github.com/claude/gymchat/internal/speech"
	"github.com/claude/gymchat/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// store is everything the server needs from persistence. Both
// *storage.DB and *storage.Memory satisfy it.
type store interface {
	interpret.Repository
	coach.Store
	server.UserStore
}

// openStore opens the configured record store, applying migrations first for
// PostgreSQL. With migrateOnly it returns a nil store once the schema is up to
// date; the memory backend has no schema.
func openStore(ctx context.Context, cfg *config.Config, migrateOnly bool, log *slog.Logger) (store, func(), error) {
	if cfg.Database.Backend == "memory" {
		if migrateOnly {
			log.Info("memory backend has no schema to migrate")
			return nil, func() {}, nil
		}
		log.Warn("using in-memory storage: records are lost on restart")
		return storage.NewMemory(nil), func() {}, nil
	}

	dsn := cfg.Database.DSN()
	version, err := storage.RunMigrations(dsn, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}
	log.Info("migrations applied", "version", version)
	if migrateOnly {
		return nil, func() {}, nil
	}

	db, err := storage.New(ctx, dsn, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting database: %w", err)
	}
	log.Info("database connected")
	return db, db.Close, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("GymChat starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Storage
	st, closeStore, err := openStore(ctx, cfg, *migrateOnly, log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	if st == nil {
		log.Info("migrate-only: exiting")
		return
	}
	defer closeStore()

	// Session context
	var sessions session.Store
	switch cfg.Session.Backend {
	case "sqlite":
		sq, err := session.OpenSQLite(cfg.Session.Path)
		if err != nil {
			log.Error("failed to open session cache", "error", err)
			os.Exit(1)
		}
		defer sq.Close()
		sessions = sq
	default:
		sessions = session.NewMemory()
	}

	// Semantic resolver
	var res interpret.Resolver
	if cfg.LLM.Endpoint != "" {
		res = resolver.New(resolver.Config{
			Endpoint:    cfg.LLM.Endpoint,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: *cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, log)
	} else {
		log.Warn("llm.endpoint not set: only shorthand input will be understood")
	}

	opts := interpret.Options{
		Location:       loc,
		ResolveTimeout: cfg.Interpret.ResolveTimeout,
		StoreTimeout:   cfg.Interpret.StoreTimeout,
	}
	if len(cfg.Events.Brokers) > 0 {
		pub := events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.Timeout)
		defer pub.Close()
		opts.Events = pub
		log.Info("publishing record events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}
	interp := interpret.New(st, sessions, res, log, opts)

	// Create server
	srv := server.New(interp, coach.New(st, log), st, cfg.Auth.APIKey, log)
	if cfg.Speech.Endpoint != "" {
		srv.SetSpeech(speech.New(speech.Config{
			Endpoint: cfg.Speech.Endpoint,
			APIKey:   cfg.Speech.APIKey,
			Timeout:  cfg.Speech.Timeout,
		}, log))
	}
	mcpSrv := gymmcp.New(gymmcp.NewLocal(interp), Version, log)
	srv.SetMCP(gymmcp.HTTPHandler(mcpSrv, server.UserID))

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
