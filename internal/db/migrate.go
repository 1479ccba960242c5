package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"

	"quizgen/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // Import pgx driver for database/sql
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// Migrate opens a short-lived database/sql connection for the driver and applies
// every pending migration.
func Migrate(ctx context.Context, driver, dsn string) error {
	sqlDriver := "pgx"
	if driver == config.DriverSQLite {
		sqlDriver = "sqlite3"
	}

	conn, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer conn.Close()

	return migrateDB(ctx, driver, conn)
}

func migrateDB(ctx context.Context, driver string, conn *sql.DB) error {
	dialect := goose.DialectPostgres
	if driver == config.DriverSQLite {
		dialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("no migrations for driver %q: %w", driver, err)
	}

	provider, err := goose.NewProvider(dialect, conn, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.Printf("INFO: applied migration %s (%s)", r.Source.Path, r.Duration)
	}
	return nil
}
