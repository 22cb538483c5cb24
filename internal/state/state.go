package state

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	dbutil "github.com/llehouerou/ripple/internal/db"
)

const (
	appName      = "ripple"
	dbFileName   = "ripple.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager is a key-value store of JSON documents backed by SQLite.
//
// Saves are fire-and-forget: the value is marshaled immediately and the
// write is scheduled after a short debounce. Loads see pending values, so
// a Load following a Save always observes the saved value even before it
// reaches disk.
type Manager struct {
	db *sql.DB

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string][]byte
	debounce  time.Duration
	closed    bool

	beforeCommit func() // test hook, runs inside the flush transaction
}

// Open opens (or creates) the store at path.
func Open(path string) (*Manager, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes the flush goroutine with foreground reads.
	db.SetMaxOpenConns(1)

	if err := configure(db, path); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init state schema: %w", err)
	}

	return &Manager{
		db:       db,
		pending:  make(map[string][]byte),
		debounce: saveDebounce,
	}, nil
}

// OpenDefault opens the store in the XDG data directory.
func OpenDefault() (*Manager, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// DefaultPath returns the XDG location of the state database.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

func configure(db *sql.DB, path string) error {
	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	return dbutil.ApplyPragmas(db, pragmas...)
}

// Load decodes the value stored under key into v.
// Returns false if nothing is stored under key.
func (m *Manager) Load(key string, v any) (bool, error) {
	m.saveMu.Lock()
	data, ok := m.pending[key]
	m.saveMu.Unlock()

	if !ok {
		var err error
		data, err = getValue(m.db, key)
		if err != nil {
			return false, fmt.Errorf("load %s: %w", key, err)
		}
		if data == nil {
			return false, nil
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save schedules v to be written under key. Failures are logged, not
// returned: the caller's in-memory state stays authoritative.
func (m *Manager) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("component", "state").Str("key", key).Msg("encode failed, value not saved")
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	if m.closed {
		return
	}
	m.pending[key] = data

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(m.debounce, func() {
		if err := m.Flush(); err != nil {
			log.Warn().Err(err).Str("component", "state").Msg("background save failed")
		}
	})
}

// Delete removes key, including any pending write for it.
func (m *Manager) Delete(key string) error {
	m.saveMu.Lock()
	delete(m.pending, key)
	m.saveMu.Unlock()

	_, err := m.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Flush writes all pending values now, in a single transaction. Values
// stay pending until the commit succeeds, so concurrent Loads never fall
// back to the previous row.
func (m *Manager) Flush() error {
	m.saveMu.Lock()
	batch := maps.Clone(m.pending)
	m.saveMu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	err := dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		for key, data := range batch {
			if err := putValue(tx, key, data, now); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
		if m.beforeCommit != nil {
			m.beforeCommit()
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Keep values saved again while the transaction ran.
	m.saveMu.Lock()
	for key, data := range batch {
		if cur, ok := m.pending[key]; ok && bytes.Equal(cur, data) {
			delete(m.pending, key)
		}
	}
	m.saveMu.Unlock()
	return nil
}

// Close flushes pending writes and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.closed = true
	m.saveMu.Unlock()

	flushErr := m.Flush()
	return errors.Join(flushErr, m.db.Close())
}

// DB exposes the underlying database.
func (m *Manager) DB() *sql.DB {
	return m.db
}

func getValue(db *sql.DB, key string) ([]byte, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func putValue(tx *sql.Tx, key string, data []byte, now int64) error {
	_, err := tx.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(data), now)
	return err
}
