// Command migrate applies and authors the schema migrations of the
// procurement database.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/procurement/backend/internal/infrastructure/logger"
	"github.com/procurement/backend/internal/infrastructure/migration"
	"github.com/procurement/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("bad usage")

// fileCommands only touch the migrations directory
var fileCommands = map[string]func(log *zap.Logger, dir string, args []string) error{
	"create": createMigration,
	"list":   listMigrations,
}

// dbCommands run against the configured database
var dbCommands = map[string]func(log *zap.Logger, m *migration.Migrator, args []string) error{
	"up":   func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Up() },
	"down": func(_ *zap.Logger, m *migration.Migrator, _ []string) error { return m.Down() },
	"step": func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(_ *zap.Logger, m *migration.Migrator, args []string) error {
		n, err := intArg(args)
		if err != nil || n < 0 {
			return errUsage
		}
		return m.GoTo(uint(n))
	},
	"force": func(log *zap.Logger, m *migration.Migrator, args []string) error {
		n, err := intArg(args)
		if err != nil {
			return err
		}
		log.Warn("Forcing schema version without running migrations", zap.Int("version", n))
		return m.Force(n)
	},
	"version": func(log *zap.Logger, m *migration.Migrator, _ []string) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	path := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	name, rest := args[0], args[1:]

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, name, *path, rest); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
			os.Exit(2)
		}
		log.Fatal("migrate "+name+" failed", zap.Error(err))
	}
}

func run(log *zap.Logger, name, path string, args []string) error {
	if cmd, ok := fileCommands[name]; ok {
		dir := path
		if dir == "" {
			dir = defaultMigrationsPath
		}
		return cmd(log, dir, args)
	}
	cmd, ok := dbCommands[name]
	if !ok {
		log.Error("Unknown command", zap.String("command", name))
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := openMigrator(log, db, path)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(log, m, args)
}

func openMigrator(log *zap.Logger, db *sql.DB, path string) (*migration.Migrator, error) {
	if path == "" {
		return migration.NewEmbedded(db, migrations.FS, log)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	log.Info("Using migrations from directory", zap.String("path", abs))
	return migration.NewFromDir(db, abs, log)
}

func createMigration(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	mf, err := migration.CreateMigration(dir, args[0])
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint64("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func listMigrations(log *zap.Logger, dir string, _ []string) error {
	files, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("No migrations found")
	}
	for _, f := range files {
		fmt.Printf("  %06d  %s\n", f.Version, f.Name)
	}
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errUsage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Procurement database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate up or down to a version
  version               Show the current version
  force <version>       Set the version without running migrations
  create <name>         Create a new up/down migration pair
  list                  List migration files

Flags:
  -path string          Migrations directory (default: embedded set; create/list use ./migrations)
  -log-level string     Log level (default: info)`)
}
