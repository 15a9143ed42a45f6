package economy

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens the wallet database and brings its schema up to date from the
// migration files under migrationsDir. Migrations run on their own
// short-lived connection; the returned handle is the ledger's. sqlite allows
// one writer, so the pool is pinned to a single connection.
func OpenDB(path, migrationsDir string) (*sql.DB, error) {
	if err := migrateUp(path, migrationsDir); err != nil {
		return nil, fmt.Errorf("migrate wallet db: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open wallet db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func migrateUp(path, dir string) error {
	m, err := migrate.New("file://"+dir, fmt.Sprintf("sqlite3://file:%s?_foreign_keys=on", path))
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
