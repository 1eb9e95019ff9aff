// package repositories provides persistence layer implementations for the catalog tables.
//
// Each repository handles CRUD operations, soft deletes, and sequence generation
// for one entity type.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/badmusic/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows]
type scanner interface {
	Scan(dest ...any) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide a stable insertion order independent of UUIDs and timestamps.
// They are NOT exposed in CLI output but used internally for sorting and debugging.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// expectOne turns a zero-row update into [shared.ErrTrackNotFound]
func expectOne(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrTrackNotFound, id)
	}
	return nil
}

// listContains returns a condition matching rows whose comma separated column
// holds value as a whole entry, ignoring case and spaces around commas.
func listContains(column, value string) (string, any) {
	normalized := fmt.Sprintf("(',' || REPLACE(REPLACE(LOWER(TRIM(%s)), ', ', ','), ' ,', ',') || ',')", column)
	return normalized + " LIKE ?", "%," + strings.ToLower(strings.TrimSpace(value)) + ",%"
}
