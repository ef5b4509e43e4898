package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate aplica todas las migraciones pendientes.
func Migrate(ctx context.Context, dsn string) error {
	return withMigrator(dsn, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, "migrations")
	})
}

// MigrationStatus imprime el estado de cada migracion.
func MigrationStatus(ctx context.Context, dsn string) error {
	return withMigrator(dsn, func(db *sql.DB) error {
		return goose.StatusContext(ctx, db, "migrations")
	})
}

func withMigrator(dsn string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}
