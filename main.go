package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"tablepay/internal/apperr"
	"tablepay/internal/kitchen"
	"tablepay/internal/logger"
	"tablepay/internal/migrations"
	"tablepay/internal/notsub"
	"tablepay/internal/pos"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("main", flag.ExitOnError)
	mode := fs.String("mode", "", "service to run: pos-service | kitchen-display | notification-subscriber | migrate")
	logLevel := fs.String("log-level", getEnv("LOG_LEVEL", "INFO"), "log level: DEBUG | INFO | WARN | ERROR")

	// Only parse up to and including `--mode`; everything after belongs
	// to the selected service.
	args := os.Args[1:]
	modeArgs := args
	serviceArgs := []string{}
	for i, arg := range args {
		if strings.HasPrefix(arg, "--mode") || strings.HasPrefix(arg, "-mode") {
			end := i + 1
			if !strings.Contains(arg, "=") {
				end = i + 2
			}
			if end > len(args) {
				end = len(args)
			}
			modeArgs = args[:end]
			serviceArgs = args[end:]
			break
		}
	}

	if err := fs.Parse(modeArgs); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	if *mode == "" {
		fmt.Fprintln(os.Stderr, apperr.ErrModeFlag)
		help(fs)
		os.Exit(1)
	}

	mylog, err := logger.New(*mode, *logLevel)
	if err != nil {
		log.Fatalf("log error: %v", err)
	}
	mylog.Action("service_starting").Info("Starting TablePay service")

	ctx := context.Background()
	switch *mode {
	case "pos-service":
		err = pos.Execute(ctx, mylog, serviceArgs)
	case "kitchen-display":
		err = kitchen.Execute(ctx, mylog, serviceArgs)
	case "notification-subscriber":
		err = notsub.Execute(ctx, mylog, serviceArgs)
	case "migrate":
		err = migrations.Execute(ctx, mylog, serviceArgs)
	default:
		mylog.Action("service_failed").Error("Unknown service mode", apperr.ErrUnknownService, "mode", *mode)
		help(fs)
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, apperr.ErrHelp) {
		mylog.Action("service_failed").Error("Service exited with error", err)
		os.Exit(1)
	}
}

func help(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "Usage: tablepay --mode=<service> [service flags]")
	fmt.Fprintln(os.Stderr, "Services: pos-service, kitchen-display, notification-subscriber, migrate")
	fs.PrintDefaults()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
