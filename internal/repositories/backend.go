package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/badmusic/internal/services"
	"github.com/desertthunder/badmusic/internal/shared"
)

// procedures lists the SQL functions registered on [shared.DriverName] connections,
// with their argument names in call order.
var procedures = map[string][]string{
	"increment": {"x"},
}

// SQLiteBackend implements [services.Backend] against the local catalog database.
type SQLiteBackend struct {
	db *sql.DB
}

var _ services.Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend wraps an open database created with [shared.NewDatabase].
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// Name identifies the backend in logs
func (b *SQLiteBackend) Name() string { return "sqlite" }

// ReadField returns a single column of a non-deleted row.
func (b *SQLiteBackend) ReadField(ctx context.Context, table, id, field string) (any, error) {
	if err := services.CheckIdentifiers(table, field); err != nil {
		return nil, err
	}

	var value any
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND deleted_at IS NULL`, field, table)
	err := b.db.QueryRowContext(ctx, query, id).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrTrackNotFound, table, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", table, field, err)
	}

	return value, nil
}

// InvokeProcedure evaluates a registered SQL function with the named arguments.
func (b *SQLiteBackend) InvokeProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	params, ok := procedures[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownProcedure, name)
	}

	values := make([]any, len(params))
	for i, p := range params {
		n, err := services.AsInt(args[p])
		if err != nil {
			return nil, fmt.Errorf("%w: argument %s: %v", shared.ErrInvalidArgument, p, err)
		}
		values[i] = n
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")

	var result int64
	if err := b.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s(%s)", name, placeholders), values...).Scan(&result); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", name, err)
	}

	return result, nil
}

// UpdateField sets one column of a non-deleted row.
func (b *SQLiteBackend) UpdateField(ctx context.Context, table, id, field string, value any) error {
	if err := services.CheckIdentifiers(table, field); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = ? WHERE id = ? AND deleted_at IS NULL`, table, field)
	result, err := b.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update %s.%s: %w", table, field, err)
	}

	return expectOne(result, id)
}
