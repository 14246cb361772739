package migrations

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ssotica-backend/pkg/configutil"

	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a local sqlite database, creating its parent directory if needed.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	return db, nil
}

func wrapOpenAndMigrate(err error) error {
	return fmt.Errorf("open and migrate db: %w", err)
}

// OpenAndMigrateDB opens the database described by config and applies schema,
// the schema must be idempotent (CREATE ... IF NOT EXISTS).
func OpenAndMigrateDB(schema string, config configutil.Libsql) (*sql.DB, error) {
	_, _, err := config.Driver()
	if err != nil {
		return nil, wrapOpenAndMigrate(err)
	}

	var db *sql.DB
	if config.Url == "" {
		db, err = OpenDB(config.File)
	} else {
		db, err = config.OpenDB()
	}
	if err != nil {
		return nil, wrapOpenAndMigrate(err)
	}

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenAndMigrate(err)
	}

	return db, nil
}
