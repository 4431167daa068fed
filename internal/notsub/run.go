// Package notsub is the notification-subscriber service: it watches the
// change feed for orders entering ready and raises the cashier/admin
// alert through the notifier.
package notsub

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"

	"tablepay/internal/apperr"
	"tablepay/internal/config"
	"tablepay/internal/feed"
	"tablepay/internal/logger"
	"tablepay/internal/notifier"
)

type params struct {
	configPath string
}

// Execute runs the subscriber until a shutdown signal arrives.
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

	fd, err := feed.ConnectRabbitMQ(cfg.RMQ, log)
	if err != nil {
		log.Action("mb_connection_failed").Error("Failed to connect to message broker", err)
		return err
	}
	log.Action("mb_connected").Info("Successful message broker connection")

	n := notifier.New(log, notifier.WithOutput(os.Stdout))
	sub, err := n.Attach(notifyCtx, fd)
	if err != nil {
		fd.Close()
		log.Action("subscribe_failed").Error("Failed to subscribe to order events", err)
		return err
	}
	log.Action("subscriber_started").Info("Notification subscriber started successfully")

	<-notifyCtx.Done()
	log.Action("shutdown_signal_received").Info("Shutdown signal received")

	var result *multierror.Error
	if err := sub.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := fd.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	log.Action("graceful_shutdown_completed").Info("Notification subscriber stopped")
	return result.ErrorOrNil()
}

func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet("notification-subscriber", flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")

	if err := fs.Parse(args); err != nil {
		return nil, apperr.ErrParseCmd
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}

	return &params{configPath: *configPath}, nil
}
