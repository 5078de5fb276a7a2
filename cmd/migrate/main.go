// Command migrate applies the embedded schema migrations to PostgreSQL or
// SQLite.
//
//	migrate [-dsn url] up | down | steps N | version | force V
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"

	"github.com/JaimeStill/stark/internal/config"
	"github.com/JaimeStill/stark/internal/schema"
)

const envDSN = "STARK_DB_DSN"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	dsn := flag.String("dsn", "", "database URL (postgres://... or sqlite3://path); defaults to STARK_DB_DSN, then the service config")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-dsn url] up | down | steps N | version | force V")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	url, err := resolveDSN(*dsn)
	if err != nil {
		logger.Error("resolve database url", "error", err)
		os.Exit(1)
	}

	if err := run(url, flag.Args(), logger); err != nil {
		logger.Error("migrate failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.Database.MigrateURL(), nil
}

func run(url string, args []string, logger *slog.Logger) error {
	source, err := iofs.New(schema.Migrations, schema.Dir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	arg := func() (int, error) {
		if len(args) < 2 {
			return 0, fmt.Errorf("%s requires a number", args[0])
		}
		return strconv.Atoi(args[1])
	}

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, aerr := arg()
		if aerr != nil {
			return aerr
		}
		err = m.Steps(n)
	case "force":
		v, aerr := arg()
		if aerr != nil {
			return aerr
		}
		err = m.Force(v)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if verr != nil {
			return verr
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current")
		return nil
	}
	if err != nil {
		return err
	}

	v, _, _ := m.Version()
	logger.Info("migration complete", "command", args[0], "version", v)
	return nil
}
