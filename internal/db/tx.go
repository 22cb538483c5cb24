// Package db holds small helpers shared by the SQLite-backed stores.
package db

import (
	"database/sql"
	"fmt"
)

// WithTx executes fn within a transaction.
// It rolls back when fn fails and commits otherwise.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// ApplyPragmas runs each pragma statement in order.
func ApplyPragmas(db *sql.DB, pragmas ...string) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}
	return nil
}
