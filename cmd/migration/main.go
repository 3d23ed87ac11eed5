package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/swiss-league/internal/domain/league"
	"github.com/riskibarqy/swiss-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/swiss-league/internal/platform/logging"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := logging.NewConsole(logging.LevelInfo)
	defer func() { _ = logger.Sync() }()

	if err := newApp(logger).Run(os.Args); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newApp(logger *logging.Logger) *cli.App {
	dbFlags := []cli.Flag{
		&cli.StringFlag{Name: "db-url", EnvVars: []string{"DB_URL"}, Required: true, Usage: "PostgreSQL connection URL"},
		&cli.BoolFlag{Name: "disable-prepared-binary", EnvVars: []string{"DB_DISABLE_PREPARED_BINARY_RESULT"}, Usage: "append disable_prepared_binary_result=yes"},
	}
	migrateFlags := append([]cli.Flag{
		&cli.StringFlag{Name: "dir", EnvVars: []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"}, Usage: "migrations directory"},
	}, dbFlags...)

	return &cli.App{
		Name:  "migration",
		Usage: "manage the league database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Flags: migrateFlags,
				Action: func(c *cli.Context) error {
					return withMigrator(c, logger, func(m *migrate.Migrate) error {
						if err := ignoreNoChange(logger, m.Up()); err != nil {
							return err
						}
						logger.Info("migrations applied")
						return nil
					})
				},
			},
			{
				Name:      "down",
				Usage:     "roll back migrations",
				ArgsUsage: "[steps]",
				Flags:     migrateFlags,
				Action: func(c *cli.Context) error {
					steps, err := parseSteps(c.Args().First())
					if err != nil {
						return err
					}
					return withMigrator(c, logger, func(m *migrate.Migrate) error {
						if err := ignoreNoChange(logger, m.Steps(-steps)); err != nil {
							return err
						}
						logger.Info("migrations rolled back", "steps", steps)
						return nil
					})
				},
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Flags: migrateFlags,
				Action: func(c *cli.Context) error {
					return withMigrator(c, logger, func(m *migrate.Migrate) error {
						version, dirty, err := m.Version()
						if errors.Is(err, migrate.ErrNilVersion) {
							fmt.Fprintln(c.App.Writer, "version: none")
							fmt.Fprintln(c.App.Writer, "dirty: false")
							return nil
						}
						if err != nil {
							return fmt.Errorf("read version: %w", err)
						}
						fmt.Fprintf(c.App.Writer, "version: %d\n", version)
						fmt.Fprintf(c.App.Writer, "dirty: %t\n", dirty)
						return nil
					})
				},
			},
			{
				Name:      "force",
				Usage:     "set the schema version without running migrations",
				ArgsUsage: "<version>",
				Flags:     migrateFlags,
				Action: func(c *cli.Context) error {
					version, err := parseVersion(c.Args().First())
					if err != nil {
						return err
					}
					return withMigrator(c, logger, func(m *migrate.Migrate) error {
						if err := m.Force(version); err != nil {
							return fmt.Errorf("force version %d: %w", version, err)
						}
						logger.Info("schema version forced", "version", version)
						return nil
					})
				},
			},
			{
				Name:      "goto",
				Aliases:   []string{"migrate"},
				Usage:     "migrate up or down to a version",
				ArgsUsage: "<version>",
				Flags:     migrateFlags,
				Action: func(c *cli.Context) error {
					target, err := parseTarget(c.Args().First())
					if err != nil {
						return err
					}
					return withMigrator(c, logger, func(m *migrate.Migrate) error {
						if err := ignoreNoChange(logger, m.Migrate(target)); err != nil {
							return err
						}
						logger.Info("migrated", "version", target)
						return nil
					})
				},
			},
			{
				Name:      "import",
				Usage:     "load a league JSON file into league_documents",
				ArgsUsage: "<league.json>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "key", EnvVars: []string{"DB_DOCUMENT_KEY"}, Value: "default", Usage: "document key"},
				}, dbFlags...),
				Action: func(c *cli.Context) error {
					return importDocument(c.Context, c, logger)
				},
			},
		},
	}
}

func withMigrator(c *cli.Context, logger *logging.Logger, run func(m *migrate.Migrate) error) error {
	migrationsDir, err := resolveMigrationsDir(c.String("dir"))
	if err != nil {
		return err
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, postgres.NormalizeURL(c.String("db-url"), c.Bool("disable-prepared-binary")))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("close migration db", "error", dbErr)
		}
	}()

	logger.Debug("migrator ready", "source", sourceURL, "db", postgres.DatabaseName(c.String("db-url")))
	return run(m)
}

func importDocument(ctx context.Context, c *cli.Context, logger *logging.Logger) error {
	path := strings.TrimSpace(c.Args().First())
	if path == "" {
		return fmt.Errorf("import requires a league JSON file")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := league.Decode(raw)
	if err != nil {
		return err
	}

	db, err := postgres.Open(c.String("db-url"), c.Bool("disable-prepared-binary"))
	if err != nil {
		return err
	}
	defer db.Close()

	store := postgres.NewDocumentStore(db, c.String("key"))
	current, err := store.Fetch(ctx)
	if err != nil {
		return err
	}
	version, err := store.Commit(ctx, doc, current.Version, "import "+filepath.Base(path))
	if err != nil {
		return err
	}
	logger.Info("league document imported", "key", c.String("key"), "leagues", len(doc.Leagues), "version", version)
	return nil
}

func parseSteps(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}

	steps, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", raw, err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func ignoreNoChange(logger *logging.Logger, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func resolveMigrationsDir(explicit string) (string, error) {
	candidates := []string{
		strings.TrimSpace(explicit),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked --dir, ./db/migrations, /app/db/migrations)")
}
