package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Schema migration CLI for postgres deployments. The sqlite deployment
// auto-migrates on server start and never needs this tool.
func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", "migrations", "Path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: "info", Format: "console", Output: "stdout"})
	defer func() { _ = log.Sync() }()

	if cfg.Database.Driver != "postgres" {
		log.Fatal("migrations require database.driver = postgres",
			zap.String("driver", cfg.Database.Driver))
	}

	m, err := migrate.New("file://"+migrationsPath, cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "force":
		if len(args) < 2 {
			log.Fatal("force requires a version argument")
		}
		var v int
		v, err = strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid version", zap.String("arg", args[1]))
		}
		err = m.Force(v)
	case "version":
		version, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatal("failed to read version", zap.Error(verr))
		}
		log.Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("migration complete", zap.String("command", command))
}

func printUsage() {
	fmt.Println(`Usage: migrate [-path dir] <command>

Commands:
  up             Apply all pending migrations
  down           Roll back the most recent migration
  force <v>      Set the schema version without running migrations
  version        Print the current schema version`)
}
