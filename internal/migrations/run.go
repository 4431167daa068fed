// Package migrations applies the SQL schema with golang-migrate.
package migrations

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"tablepay/internal/apperr"
	"tablepay/internal/config"
	"tablepay/internal/logger"
)

type params struct {
	configPath string
	dir        string
	down       bool
}

// Execute applies (or rolls back) the migrations and returns.
func Execute(_ context.Context, log logger.Logger, args []string) error {
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

	m, err := migrate.New("file://"+p.dir, cfg.DB.MigrateURL())
	if err != nil {
		log.Action("migrate_init_failed").Error("Failed to initialize migrations", err)
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if p.down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Action("migrate_no_change").Info("Schema already up to date")
		return nil
	}
	if err != nil {
		log.Action("migrate_failed").Error("Migration failed", err)
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Action("migrate_completed").Info("Migration is successful", "dir", p.dir, "down", p.down)
	return nil
}

func parseParams(args []string) (*params, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config-path", "config.yaml", "path for config yaml")
	dir := fs.String("dir", "migrations", "directory with migration files")
	down := fs.Bool("down", false, "roll back instead of applying")

	if err := fs.Parse(args); err != nil {
		return nil, apperr.ErrParseCmd
	}
	if *showHelp {
		fs.Usage()
		return nil, apperr.ErrHelp
	}

	return &params{configPath: *configPath, dir: *dir, down: *down}, nil
}
