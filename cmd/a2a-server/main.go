// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// a2a-server serves an agent over the A2A protocol.
//
// The server is configured from an optional YAML or TOML file (--config);
// flags override the file. Tasks and conversation history live in memory by
// default, or in a SQLite database with the sqlite drivers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/glebarez/sqlite"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	a2a "github.com/go-a2a/a2a-server"
	"github.com/go-a2a/a2a-server/internal/config"
	"github.com/go-a2a/a2a-server/server"
	"github.com/go-a2a/a2a-server/server/agent"
	"github.com/go-a2a/a2a-server/server/agent/anthropic"
	"github.com/go-a2a/a2a-server/server/history"
	"github.com/go-a2a/a2a-server/server/notification"
	"github.com/go-a2a/a2a-server/server/task"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		addr       string
		agentKind  string
		logLevel   string
	)

	flagSet := pflag.NewFlagSet("a2a-server", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to a YAML or TOML configuration file")
	flagSet.StringVar(&addr, "addr", "", "listen address (overrides the configuration file)")
	flagSet.StringVar(&agentKind, "agent", "", "agent kind: echo or anthropic (overrides the configuration file)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides the configuration file)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if agentKind != "" {
		cfg.Agent.Kind = agentKind
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, log)
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, db, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
	}

	tasks := task.NewManager(store, task.WithLogger(log))

	hist, err := openHistory(ctx, cfg.History, tasks, db, log)
	if err != nil {
		return err
	}

	ag, err := newAgent(cfg.Agent)
	if err != nil {
		return err
	}

	var (
		keys     *notification.KeyManager
		notifier notification.Handler = notification.NewLogging(store, log)
	)
	if cfg.Push.Enabled {
		keys, err = notification.NewKeyManager(cfg.Push.KeyID)
		if err != nil {
			return err
		}
		notifier = notification.NewHTTP(store,
			notification.WithKeyManager(keys),
			notification.WithIssuer(cfg.PublicURL()),
			notification.WithLogger(log),
			notification.WithHTTPClient(&http.Client{Timeout: cfg.Push.Timeout}),
		)
	}

	tm, err := server.NewTaskManager(server.TaskManagerConfig{
		Tasks:             tasks,
		Agent:             ag,
		History:           hist,
		Notifier:          notifier,
		PushNotifications: cfg.Push.Enabled,
		Interruptible:     cfg.Cancel.Interruptible,
		Logger:            log,
	})
	if err != nil {
		return err
	}

	card := &a2a.AgentCard{
		Name:               cfg.Agent.Name,
		Description:        cfg.Agent.Description,
		URL:                cfg.PublicURL(),
		Version:            "1.0.0",
		DefaultInputModes:  agent.DefaultContentTypes,
		DefaultOutputModes: ag.SupportedContentTypes(),
		Skills: []a2a.AgentSkill{{
			ID:          cfg.Agent.Kind,
			Name:        cfg.Agent.Name,
			Description: cfg.Agent.Description,
		}},
	}
	srv, err := server.NewServer(server.Config{AgentCard: card, TaskManager: tm, Keys: keys},
		server.WithEndpoint(cfg.Addr),
		server.WithLogger(log),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (task.Store, *gorm.DB, error) {
	if cfg.Driver == "memory" {
		return task.NewInMemoryStore(), nil, nil
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DSN, err)
	}
	store, err := task.NewDatabaseStore(db)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		return nil, nil, err
	}
	return store, db, nil
}

func openHistory(ctx context.Context, cfg config.HistoryConfig, tasks *task.Manager, db *gorm.DB, log *slog.Logger) (history.Provider, error) {
	switch cfg.Driver {
	case "task":
		return history.NewTaskBased(tasks.Store(), log), nil
	case "sqlite":
		hist, err := history.NewDatabase(db)
		if err != nil {
			return nil, err
		}
		if err := hist.Migrate(ctx); err != nil {
			return nil, err
		}
		return hist, nil
	default:
		return history.NewInMemory(), nil
	}
}

func newAgent(cfg config.AgentConfig) (agent.Agent, error) {
	if cfg.Kind != "anthropic" {
		return agent.Echo{}, nil
	}

	key := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("agent: %s is not set", cfg.APIKeyEnv)
	}
	return anthropic.New(anthropic.Config{
		APIKey:    key,
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		System:    cfg.System,
	}, option.WithMaxRetries(2))
}
