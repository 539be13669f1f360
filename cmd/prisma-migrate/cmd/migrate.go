package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/prisma-migrate/engine/cli"
	"github.com/prisma-migrate/engine/internal/driver"
	"github.com/prisma-migrate/engine/internal/logger"
	"github.com/prisma-migrate/engine/internal/migrations"
)

// DatabaseInfo is the subset of a datasource URL worth echoing back to the
// operator before a migration run, the way a Prisma-style CLI reports its
// connection target.
type DatabaseInfo struct {
	Provider string
	Database string
	Host     string
}

func parseDatabaseURL(dbURL string) *DatabaseInfo {
	info := &DatabaseInfo{}
	u, err := url.Parse(dbURL)
	if err != nil {
		return info
	}

	switch u.Scheme {
	case "postgresql", "postgres":
		info.Provider = "PostgreSQL"
	case "mysql":
		info.Provider = "MySQL"
	case "sqlite", "file":
		info.Provider = "SQLite"
	default:
		info.Provider = u.Scheme
	}

	info.Host = u.Host
	if u.Path != "" {
		info.Database = strings.TrimPrefix(u.Path, "/")
	}
	return info
}

var migrateStepsFlag string

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Short: "Apply and roll back database migrations",
	Long: `Commands to run the ledgered up/down migration runner:
  - deploy: apply pending migrations (CI/CD, non-interactive)
  - up: apply pending migrations, optionally limited by --steps
  - down: roll back applied migrations, optionally limited by --steps
  - status: list applied and pending migrations
  - reset: roll back every applied migration
  - refresh: reset then reapply every migration`,
	Subcommands: []*cli.Command{
		migrateDeployCmd,
		migrateUpCmd,
		migrateDownCmd,
		migrateStatusCmd,
		migrateResetCmd,
		migrateRefreshCmd,
	},
}

var migrateDeployCmd = &cli.Command{
	Name:  "deploy",
	Short: "Apply pending migrations in production",
	Long:  `Applies all pending migrations to the database. Non-interactive mode for CI/CD.`,
	Run:   runMigrateDeploy,
}

var migrateUpCmd = &cli.Command{
	Name:  "up",
	Short: "Apply pending migrations",
	Usage: "migrate up [--steps N]",
	Flags: []*cli.Flag{
		{Name: "steps", Usage: "Limit the number of migrations applied", Value: &migrateStepsFlag},
	},
	Run: runMigrateUp,
}

var migrateDownCmd = &cli.Command{
	Name:  "down",
	Short: "Roll back applied migrations",
	Usage: "migrate down [--steps N]",
	Flags: []*cli.Flag{
		{Name: "steps", Usage: "Number of migrations to roll back (default 1)", Value: &migrateStepsFlag},
	},
	Run: runMigrateDown,
}

var migrateStatusCmd = &cli.Command{
	Name:  "status",
	Short: "List applied and pending migrations",
	Run:   runMigrateStatus,
}

var migrateResetCmd = &cli.Command{
	Name:  "reset",
	Short: "Roll back every applied migration",
	Run:   runMigrateReset,
}

var migrateRefreshCmd = &cli.Command{
	Name:  "refresh",
	Short: "Reset the database then reapply every migration",
	Run:   runMigrateRefresh,
}

// newRunner loads configuration, connects to the configured datasource and
// builds a Runner bound to it. Callers are responsible for closing the
// returned *sql.DB via db.SQLDB().Close().
func newRunner() (*migrations.Runner, driver.DB, *DatabaseInfo, error) {
	if err := checkProjectRoot(); err != nil {
		return nil, nil, nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	dbURL := cfg.GetDatabaseURL()
	if dbURL == "" {
		return nil, nil, nil, fmt.Errorf("DATABASE_URL not configured")
	}
	dbInfo := parseDatabaseURL(dbURL)

	sqlDB, err := migrations.ConnectDatabase(dbURL)
	if err != nil {
		return nil, nil, dbInfo, fmt.Errorf("P1001: can't reach database server at `%s`: %w", dbInfo.Host, err)
	}
	db := driver.NewSQLDB(sqlDB)

	provider := migrations.DetectProvider(dbURL)
	runner := migrations.NewRunner(db, provider, migrations.Settings{
		MigrationsDir: cfg.GetMigrationsPath(),
		TableName:     cfg.GetTableName(),
		LockTimeoutMs: cfg.GetLockTimeout(),
		DatabaseURL:   dbURL,
	})
	if verbose {
		runner.SetLogger(logger.NewLogger([]string{"info", "query"}, os.Stdout))
	}

	return runner, db, dbInfo, nil
}

func parseSteps(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --steps value %q: %w", raw, err)
	}
	return &n, nil
}

func runMigrateDeploy(args []string) error {
	runner, db, dbInfo, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = db.SQLDB().Close() }()

	fmt.Println()
	fmt.Printf("%s\n", Info(fmt.Sprintf("Datasource \"db\": %s database \"%s\" at \"%s\"",
		dbInfo.Provider, dbInfo.Database, dbInfo.Host)))

	ctx := context.Background()
	pending, err := runner.Pending(ctx)
	if err != nil {
		return fmt.Errorf("error getting pending migrations: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println()
		fmt.Println("No pending migrations to apply.")
		return nil
	}

	fmt.Printf("\n%d migration(s) found\n\n", len(pending))
	for _, m := range pending {
		fmt.Printf("Applying migration `%s`\n", MigrationName(m.Name))
	}

	count, err := runner.Up(ctx, nil)
	if err != nil {
		fmt.Println()
		fmt.Printf("%s\n", Warning(fmt.Sprintf("Migration failed after %d applied: %v", count, err)))
		return err
	}

	fmt.Println()
	fmt.Println(Success(fmt.Sprintf("%d migration(s) applied.", count)))
	return nil
}

func runMigrateUp(args []string) error {
	runner, db, _, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = db.SQLDB().Close() }()

	steps, err := parseSteps(migrateStepsFlag)
	if err != nil {
		return err
	}

	count, err := runner.Up(context.Background(), steps)
	if err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}
	fmt.Println(Success(fmt.Sprintf("%d migration(s) applied.", count)))
	return nil
}

func runMigrateDown(args []string) error {
	runner, db, _, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = db.SQLDB().Close() }()

	steps, err := parseSteps(migrateStepsFlag)
	if err != nil {
		return err
	}

	count, err := runner.Down(context.Background(), steps)
	if err != nil {
		return fmt.Errorf("error rolling back migrations: %w", err)
	}
	fmt.Println(Success(fmt.Sprintf("%d migration(s) rolled back.", count)))
	return nil
}

func runMigrateStatus(args []string) error {
	runner, db, _, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = db.SQLDB().Close() }()

	rows, err := runner.Status(context.Background())
	if err != nil {
		return fmt.Errorf("error getting migration status: %w", err)
	}

	fmt.Println(Info("Migration Status"))
	fmt.Println()
	for _, row := range rows {
		switch row.State {
		case migrations.StateApplied:
			fmt.Printf("  %s  %s\n", Success("[applied]"), MigrationName(row.Name))
		default:
			fmt.Printf("  %s  %s\n", Warning("[pending]"), MigrationName(row.Name))
		}
	}
	return nil
}

func runMigrateReset(args []string) error {
	runner, db, _, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = db.SQLDB().Close() }()

	count, err := runner.Reset(context.Background())
	if err != nil {
		return fmt.Errorf("error resetting database: %w", err)
	}
	fmt.Println(Success(fmt.Sprintf("%d migration(s) rolled back.", count)))
	return nil
}

func runMigrateRefresh(args []string) error {
	runner, db, _, err := newRunner()
	if err != nil {
		return err
	}
	defer func() { _ = db.SQLDB().Close() }()

	result, err := runner.Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("error refreshing database: %w", err)
	}
	fmt.Println(Success(fmt.Sprintf("%d rolled back, %d applied.", result.Down, result.Up)))
	return nil
}
