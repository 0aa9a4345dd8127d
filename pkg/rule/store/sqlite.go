package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registers as "sqlite3"
	_ "modernc.org/sqlite"          // pure-Go fallback, registers as "sqlite"
)

// openSQLite opens dbPath with the cgo mattn/go-sqlite3 driver when it is
// usable in this build (cgo enabled, libsqlite3 linkable), falling back to
// the pure-Go modernc.org/sqlite driver otherwise. The probe is a runtime
// Ping rather than a build tag, so a single binary adapts to whichever
// toolchain it was compiled with.
func openSQLite(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", dbPath)

	if db, err := sql.Open("sqlite3", dsn); err == nil {
		if err := db.Ping(); err == nil {
			db.SetMaxOpenConns(1)
			return db, nil
		}
		_ = db.Close()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite (pure-go fallback): %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite (pure-go fallback): %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteConstantStore is a ConstantStore backed by a SQLite table, for
// deployments that want durable constant values without standing up an
// external database.
type SQLiteConstantStore struct {
	db *sql.DB
	mu sync.RWMutex

	getStmt *sql.Stmt
	setStmt *sql.Stmt
}

// NewSQLiteConstantStore opens (creating if absent) the constants table in
// the SQLite database at dbPath.
func NewSQLiteConstantStore(dbPath string) (*SQLiteConstantStore, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteConstantStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteConstantStore) init() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS constants (
			code  TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create constants table: %w", err)
	}
	var err error
	if s.getStmt, err = s.db.Prepare(`SELECT value FROM constants WHERE code = ?`); err != nil {
		return fmt.Errorf("prepare constants get: %w", err)
	}
	if s.setStmt, err = s.db.Prepare(`
		INSERT INTO constants (code, value) VALUES (?, ?)
		ON CONFLICT (code) DO UPDATE SET value = excluded.value`); err != nil {
		return fmt.Errorf("prepare constants set: %w", err)
	}
	return nil
}

// GetMany implements ConstantStore.
func (s *SQLiteConstantStore) GetMany(ctx context.Context, codes []string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]interface{}, len(codes))
	for _, code := range codes {
		var raw string
		err := s.getStmt.QueryRowContext(ctx, code).Scan(&raw)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load constant %s: %w", code, err)
		}
		var value interface{}
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode constant %s: %w", code, err)
		}
		out[code] = value
	}
	return out, nil
}

// Set installs or replaces one constant's value.
func (s *SQLiteConstantStore) Set(ctx context.Context, code string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode constant %s: %w", code, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.setStmt.ExecContext(ctx, code, string(raw)); err != nil {
		return fmt.Errorf("save constant %s: %w", code, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteConstantStore) Close() error {
	if s.getStmt != nil {
		_ = s.getStmt.Close()
	}
	if s.setStmt != nil {
		_ = s.setStmt.Close()
	}
	return s.db.Close()
}

// SQLiteRuleStore is a RuleDefinitionStore backed by a SQLite table of rule
// code -> YAML source text.
type SQLiteRuleStore struct {
	db *sql.DB
	mu sync.RWMutex

	getStmt *sql.Stmt
	setStmt *sql.Stmt
}

// NewSQLiteRuleStore opens (creating if absent) the rules table in the
// SQLite database at dbPath.
func NewSQLiteRuleStore(dbPath string) (*SQLiteRuleStore, error) {
	db, err := openSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteRuleStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteRuleStore) init() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS rules (
			code   TEXT PRIMARY KEY,
			source TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create rules table: %w", err)
	}
	var err error
	if s.getStmt, err = s.db.Prepare(`SELECT source FROM rules WHERE code = ?`); err != nil {
		return fmt.Errorf("prepare rules get: %w", err)
	}
	if s.setStmt, err = s.db.Prepare(`
		INSERT INTO rules (code, source) VALUES (?, ?)
		ON CONFLICT (code) DO UPDATE SET source = excluded.source`); err != nil {
		return fmt.Errorf("prepare rules set: %w", err)
	}
	return nil
}

// GetByCode implements RuleDefinitionStore.
func (s *SQLiteRuleStore) GetByCode(ctx context.Context, code string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var source string
	err := s.getStmt.QueryRowContext(ctx, code).Scan(&source)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load rule %s: %w", code, err)
	}
	return source, true, nil
}

// Set installs or replaces one rule's source text.
func (s *SQLiteRuleStore) Set(ctx context.Context, code, ruleText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.setStmt.ExecContext(ctx, code, ruleText); err != nil {
		return fmt.Errorf("save rule %s: %w", code, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteRuleStore) Close() error {
	if s.getStmt != nil {
		_ = s.getStmt.Close()
	}
	if s.setStmt != nil {
		_ = s.setStmt.Close()
	}
	return s.db.Close()
}
