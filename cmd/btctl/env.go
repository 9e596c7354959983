package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/redis/go-redis/v9"

	"github.com/btc-tracker/backend/config"
	"github.com/btc-tracker/backend/internal/infra/cache"
	"github.com/btc-tracker/backend/internal/infra/db"
	"github.com/btc-tracker/backend/internal/infra/dependency"
	"github.com/btc-tracker/backend/internal/infra/logging"
	"github.com/btc-tracker/backend/internal/integration/persistence/model"
)

var commands = []subcommands.Command{
	&reportsCmd{},
	&selectCmd{},
	&importCmd{},
	&metricsCmd{},
}

// env is the wired application a command runs against.
type env struct {
	injector *dependency.Injector
	out      io.Writer
	close    func()
}

// openEnv connects to the database (and Redis when enabled so locks and
// events are shared with a running API) and loads the report store.
func openEnv(ctx context.Context) (*env, error) {
	cfg := config.Load()
	logging.Setup(os.Stderr, cfg.Server.LogLevel)

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(model.AllModels()...); err != nil {
		_ = database.Close()
		return nil, err
	}

	closers := []func(){func() { _ = database.Close() }}
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		if c, err := cache.NewRedisClient(&cfg.Redis); err == nil {
			redisClient = c
			closers = append(closers, func() { _ = c.Close() })
		} else {
			fmt.Fprintf(os.Stderr, "Warning: redis unavailable, using in-process locks: %v\n", err)
		}
	}

	injector := dependency.NewInjector(cfg, database.DB(), redisClient, nil)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if err := injector.Store.Load(ctx); err != nil {
		closeAll()
		return nil, err
	}

	return &env{injector: injector, out: os.Stdout, close: closeAll}, nil
}

// runWithEnv opens the environment, runs fn and maps errors to exit codes.
func runWithEnv(ctx context.Context, fn func(context.Context, *env) error) subcommands.ExitStatus {
	e, err := openEnv(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer e.close()

	if err := fn(ctx, e); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMarkdown renders md for the terminal. Output that is not a terminal
// gets the plain style.
func (e *env) printMarkdown(md string) error {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.out, out)
	return err
}
