// Package pos is the point-of-sale HTTP service: the API every role
// dashboard talks to for creating orders, moving them through the
// lifecycle and reading its views.
package pos

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"tablepay/internal/apperr"
	"tablepay/internal/config"
	"tablepay/internal/logger"
)

type params struct {
	port       int
	configPath string
	cfg        *config.Config
}

// Execute starts the pos service and blocks until shutdown.
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
	if err := validateParams(p); err != nil {
		log.Action("command_validation_failed").Error("Invalid command received", err)
		return err
	}
	log.Action("command_validation_completed").Info("Successfully validated params")

	server := NewServer(notifyCtx, p.cfg, p.port, log)

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- server.Run()
	}()

	select {
	case <-notifyCtx.Done():
		log.Action("shutdown_signal_received").Info("Shutdown signal received")
		return server.Stop(context.Background())
	case err := <-runErrCh:
		if err != nil {
			log.Action("pos_service_failed").Error("Server failed unexpectedly", err)
			return err
		}
		log.Action("server_stopped").Info("Server exited normally")
		return nil
	}
}

func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet("pos-service", flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	port := fs.Int("port", 3000, "Port to run the pos service")

	if err := fs.Parse(args); err != nil {
		return nil, apperr.ErrParseCmd
	}

	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}

	return &params{
		port:       *port,
		configPath: *configPath,
	}, nil
}

func validateParams(p *params) error {
	cfg, err := config.Load(p.configPath)
	if err != nil {
		return err
	}
	p.cfg = cfg

	if p.port <= 0 || p.port >= 65536 {
		return fmt.Errorf("port must be in [1: 65,535]: %d", p.port)
	}
	return nil
}
