package sqliteutil

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	devenv "flighttracker-backend/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Config struct {
	// File is a local sqlite path, or `:memory:`.
	File string `json:"file"`
	// Url points at a remote libsql server, when set File is ignored.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func isRemote(path string) bool {
	for _, prefix := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func openRemote(config Config) (*sql.DB, error) {
	dsn := config.Url
	if config.AuthToken != "" {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return nil, err
		}
		query := parsed.Query()
		query.Set("authToken", config.AuthToken)
		parsed.RawQuery = query.Encode()
		dsn = parsed.String()
	}
	return sql.Open("libsql", dsn)
}

func openLocal(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only allows one writer, more than one connection just turns
	// into SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// OpenDB opens the database described by config and applies schema to it.
// A File starting with `<dev_state>` is resolved into the dev state dir.
// The schema must be idempotent (`create table if not exists ...`).
func OpenDB(config Config, schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	if config.Url != "" || isRemote(config.File) {
		if config.Url == "" {
			config.Url = config.File
		}
		db, err = openRemote(config)
	} else {
		path, resolveErr := devenv.ResolvePath(config.File)
		if resolveErr != nil {
			return nil, resolveErr
		}
		db, err = openLocal(path)
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
