package data

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

func RunMigrations(db *sql.DB, fs embed.FS) error {
	return runMigrationsFrom(db, fs, "data/migrations")
}

func runMigrationsFrom(db *sql.DB, fs embed.FS, dir string) error {
	goose.SetBaseFS(fs)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.Up(db, dir)
}
