package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"collegeevents/internal/domain"
)

// Dialect selects the SQL flavour of the backing database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)
`

type sqlStore struct {
	DB      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLStore returns a KVStore over the kv_entries table of db. Call EnsureSchema first.
func NewSQLStore(db *sql.DB, dialect Dialect) domain.KVStore {
	return &sqlStore{DB: db, dialect: dialect, now: time.Now}
}

// EnsureSchema creates the kv_entries table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create kv_entries: %w", err)
	}
	return nil
}

// bind rewrites ? placeholders to $n for postgres.
func (s *sqlStore) bind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	query := s.bind(`SELECT value FROM kv_entries WHERE name = ?`)
	var raw string
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	if err := decode(key, []byte(raw), dst); err != nil {
		return true, err
	}
	return true, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if _, err := s.DB.ExecContext(ctx, s.upsertQuery(), key, string(raw), s.now().UTC()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *sqlStore) SetMany(ctx context.Context, values map[string]any) (err error) {
	if len(values) == 0 {
		return nil
	}
	encoded := make(map[string]string, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		encoded[key] = string(raw)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now().UTC()
	query := s.upsertQuery()
	for _, key := range sortedKeys(encoded) {
		if _, err = tx.ExecContext(ctx, query, key, encoded[key], now); err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := s.bind(`DELETE FROM kv_entries WHERE name = ?`)
	for _, key := range keys {
		if _, err = tx.ExecContext(ctx, query, key); err != nil {
			return fmt.Errorf("delete %q: %w", key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.DB.Close()
}

func (s *sqlStore) upsertQuery() string {
	return s.bind(`
		INSERT INTO kv_entries (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
}

func decode(key string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: key %q: %v", domain.ErrCorruptState, key, err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
