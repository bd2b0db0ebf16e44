package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"collegeevents/internal/domain"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options configures Open.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

// Open returns the KVStore selected by opts.Driver, with its schema in place.
func Open(ctx context.Context, opts Options) (domain.KVStore, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		db, err := openSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return initSQL(ctx, db, DialectSQLite)
	case DriverPostgres:
		db, err := sql.Open("postgres", opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return initSQL(ctx, db, DialectPostgres)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps transactions on one SQLite handle.
	db.SetMaxOpenConns(1)
	return db, nil
}

func initSQL(ctx context.Context, db *sql.DB, dialect Dialect) (domain.KVStore, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLStore(db, dialect), nil
}
