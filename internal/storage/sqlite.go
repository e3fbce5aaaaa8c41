package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is the default storage provider, backed by the pure-Go
// modernc.org/sqlite driver.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

// Open opens (creating if needed) the database file with WAL mode and
// foreign keys enabled.
func (SQLite) Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	return db, nil
}
