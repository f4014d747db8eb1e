// Command migrate applies or rolls back database migrations.
//
// Usage:
//
//	migrate [-path dir] up|down|version|steps N|force V
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/premiumcars/listingsheet/internal/config"
	"github.com/premiumcars/listingsheet/internal/logging"
	"github.com/premiumcars/listingsheet/internal/migration"
)

func main() {
	path := flag.String("path", "", "migrations directory (default $MIGRATIONS_PATH)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadMigrate()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, "text")

	dir := cfg.MigrationsPath
	if *path != "" {
		dir = *path
	}

	m, err := migration.Open(cfg.DatabaseURL, dir, logger)
	if err != nil {
		logger.Error("failed to open migrations",
			slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", logging.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}

	if err := run(m, args); err != nil {
		logger.Error("migration failed", slog.String("error", logging.SanitizeError(err, cfg.DatabaseURL)))
		m.Close()
		os.Exit(1)
	}
	if err := m.Close(); err != nil {
		logger.Warn("close migrator", slog.String("error", err.Error()))
	}
}

func run(m *migration.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
		return nil
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s needs a number", args[0])
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", args[1], err)
		}
		if args[0] == "steps" {
			return m.Steps(n)
		}
		return m.Force(n)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: migrate [-path dir] up|down|version|steps N|force V\n")
	flag.PrintDefaults()
}
