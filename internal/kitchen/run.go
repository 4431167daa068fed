// Package kitchen is the kitchen-display service: it subscribes to the
// order change feed and refetches the active list on every event, so
// the terminal view mirrors the store within seconds without anyone
// pressing refresh.
package kitchen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"

	"tablepay/internal/apperr"
	"tablepay/internal/config"
	"tablepay/internal/domain"
	"tablepay/internal/feed"
	"tablepay/internal/lifecycle"
	"tablepay/internal/logger"
	"tablepay/internal/store"
)

type params struct {
	configPath string
	refreshSec int
}

// Execute runs the kitchen display until a shutdown signal arrives.
func Execute(ctx context.Context, log logger.Logger, args []string) error {
	notifyCtx, stop := signal.NotifyContext(ctx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := parseParams(args)
	if err != nil {
		if errors.Is(err, apperr.ErrHelp) {
			return nil
		}
		log.Action("command_parse_failed").Error("Invalid command received", err)
		return err
	}

	cfg, err := config.Load(p.configPath)
	if err != nil {
		log.Action("command_validation_failed").Error("Cannot load config", err)
		return err
	}

	db, err := store.Connect(notifyCtx, cfg.DB, log)
	if err != nil {
		log.Action("db_connection_failed").Error("Failed to connect to database", err)
		return err
	}
	log.Action("db_connected").Info("Successful database connection")

	fd, err := feed.ConnectRabbitMQ(cfg.RMQ, log)
	if err != nil {
		db.Close()
		log.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}
	log.Action("mb_connected").Info("Successful message broker connection")

	app := &App{
		engine:  lifecycle.NewEngine(db, fd, log),
		feed:    fd,
		display: NewDisplay(os.Stdout),
		log:     log,
		refresh: time.Duration(p.refreshSec) * time.Second,
	}

	runErr := app.Run(notifyCtx)

	var result *multierror.Error
	result = multierror.Append(result, runErr)
	if err := fd.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := db.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	log.Action("graceful_shutdown_completed").Info("Kitchen display stopped")
	return result.ErrorOrNil()
}

// App ties the subscription to the refetch-and-render loop.
type App struct {
	engine  *lifecycle.Engine
	feed    feed.Feed
	display *Display
	log     logger.Logger
	refresh time.Duration
}

// Run subscribes, renders once, then re-renders on every feed event.
// A ticker catches anything the broker dropped: the list query, not the
// event payload, is the ground truth.
func (a *App) Run(ctx context.Context) error {
	// Buffer of one: bursts of events coalesce into a single refetch.
	kick := make(chan struct{}, 1)

	sub, err := a.feed.Subscribe(ctx, feed.Filter{}, func(domain.OrderEvent) {
		select {
		case kick <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Close()

	if err := a.Refresh(ctx); err != nil {
		a.log.Action("refresh_failed").Error("Initial fetch failed", err)
	}

	ticker := time.NewTicker(a.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-kick:
		case <-ticker.C:
		}
		if err := a.Refresh(ctx); err != nil {
			a.log.Action("refresh_failed").Error("Failed to refresh active orders", err)
		}
	}
}

// Refresh re-runs the active list query and redraws the table.
func (a *App) Refresh(ctx context.Context) error {
	orders, err := a.engine.ListActive(ctx)
	if err != nil {
		return err
	}
	return a.display.Render(orders, time.Now())
}

func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet("kitchen-display", flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	refresh := fs.Int("refresh", 30, "fallback refresh interval in seconds")

	if err := fs.Parse(args); err != nil {
		return nil, apperr.ErrParseCmd
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}
	if *refresh <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive: %d", *refresh)
	}

	return &params{configPath: *configPath, refreshSec: *refresh}, nil
}
