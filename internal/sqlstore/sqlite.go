// Package sqlstore implements a backend over a SQLite database file, one row
// per key with the value kept as text next to its type tag.
package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lixenwraith/configtree/internal/convert"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var errNoSession = errors.New("sqlite store has no open session")

// Store keeps settings in a SQLite table. A session is one transaction,
// committed on Close.
type Store struct {
	path string

	db *sql.DB
	tx *sql.Tx
}

// New creates a Store for the database file at path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path cannot be empty")
	}
	return &Store{path: path}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Open opens the database, applies pending migrations and begins the session
// transaction. With dontRead the settings table is emptied inside it.
func (s *Store) Open(dontRead bool) error {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if dontRead {
		if _, err := tx.Exec("DELETE FROM settings"); err != nil {
			tx.Rollback()
			db.Close()
			return fmt.Errorf("clearing settings: %w", err)
		}
	}

	s.db = db
	s.tx = tx
	return nil
}

// Close commits the session and closes the database, even when the commit
// fails.
func (s *Store) Close() error {
	if s.tx == nil {
		return errNoSession
	}

	var commitErr error
	if err := s.tx.Commit(); err != nil {
		commitErr = fmt.Errorf("committing transaction: %w", err)
	}
	closeErr := s.db.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("closing database: %w", closeErr)
	}

	s.tx = nil
	s.db = nil
	return errors.Join(commitErr, closeErr)
}

// Snapshot returns every key with its decoded value.
func (s *Store) Snapshot() (map[string]any, error) {
	if s.tx == nil {
		return nil, errNoSession
	}
	rows, err := s.tx.Query("SELECT key, kind, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]any)
	for rows.Next() {
		var key, text string
		var kind convert.Kind
		if err := rows.Scan(&key, &kind, &text); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		v, err := convert.Parse(kind, text)
		if err != nil {
			return nil, fmt.Errorf("decoding setting %q: %w", key, err)
		}
		result[key] = v
	}
	return result, rows.Err()
}

func (s *Store) HasKeyString(key string) (bool, error) { return s.has(key, convert.KindString) }

func (s *Store) HasKeyBool(key string) (bool, error) { return s.has(key, convert.KindBool) }

func (s *Store) HasKeyUint32(key string) (bool, error) { return s.has(key, convert.KindUint32) }

func (s *Store) HasKeyInt32(key string) (bool, error) { return s.has(key, convert.KindInt32) }

func (s *Store) HasKeyUint64(key string) (bool, error) { return s.has(key, convert.KindUint64) }

func (s *Store) HasKeyInt64(key string) (bool, error) { return s.has(key, convert.KindInt64) }

func (s *Store) ReadString(key string) (string, bool, error) {
	v, ok, err := s.get(key, convert.KindString)
	if !ok {
		return "", false, err
	}
	return v.(string), true, nil
}

func (s *Store) ReadBool(key string) (bool, bool, error) {
	v, ok, err := s.get(key, convert.KindBool)
	if !ok {
		return false, false, err
	}
	return v.(bool), true, nil
}

func (s *Store) ReadUint32(key string) (uint32, bool, error) {
	v, ok, err := s.get(key, convert.KindUint32)
	if !ok {
		return 0, false, err
	}
	return v.(uint32), true, nil
}

func (s *Store) ReadInt32(key string) (int32, bool, error) {
	v, ok, err := s.get(key, convert.KindInt32)
	if !ok {
		return 0, false, err
	}
	return v.(int32), true, nil
}

func (s *Store) ReadUint64(key string) (uint64, bool, error) {
	v, ok, err := s.get(key, convert.KindUint64)
	if !ok {
		return 0, false, err
	}
	return v.(uint64), true, nil
}

func (s *Store) ReadInt64(key string) (int64, bool, error) {
	v, ok, err := s.get(key, convert.KindInt64)
	if !ok {
		return 0, false, err
	}
	return v.(int64), true, nil
}

func (s *Store) WriteString(key, value string) error { return s.put(key, value) }

func (s *Store) WriteBool(key string, value bool) error { return s.put(key, value) }

func (s *Store) WriteUint32(key string, value uint32) error { return s.put(key, value) }

func (s *Store) WriteInt32(key string, value int32) error { return s.put(key, value) }

func (s *Store) WriteUint64(key string, value uint64) error { return s.put(key, value) }

func (s *Store) WriteInt64(key string, value int64) error { return s.put(key, value) }

// Delete removes key; a missing key affects no rows and is not an error.
func (s *Store) Delete(key string) error {
	if s.tx == nil {
		return errNoSession
	}
	if _, err := s.tx.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting setting %q: %w", key, err)
	}
	return nil
}

func (s *Store) has(key string, want convert.Kind) (bool, error) {
	_, ok, err := s.get(key, want)
	return ok, err
}

func (s *Store) get(key string, want convert.Kind) (any, bool, error) {
	if s.tx == nil {
		return nil, false, errNoSession
	}

	var kind convert.Kind
	var text string
	err := s.tx.QueryRow("SELECT kind, value FROM settings WHERE key = ?", key).Scan(&kind, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading setting %q: %w", key, err)
	}
	if kind != want {
		return nil, false, nil
	}

	v, err := convert.Parse(kind, text)
	if err != nil {
		return nil, false, fmt.Errorf("decoding setting %q: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) put(key string, value any) error {
	if s.tx == nil {
		return errNoSession
	}
	kind, ok := convert.KindOf(value)
	if !ok {
		return fmt.Errorf("unsupported value type %T", value)
	}
	_, err := s.tx.Exec(`INSERT INTO settings (key, kind, value) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, value = excluded.value`,
		key, kind, convert.Format(value))
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}
