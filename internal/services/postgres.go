package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/badmusic/internal/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend implements [Backend] against Postgres through a pgx pool.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

var _ Backend = (*PostgresBackend)(nil)

// NewPostgresBackend opens and pings a connection pool for databaseURL.
func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

// Name identifies the backend in logs
func (b *PostgresBackend) Name() string { return "postgres" }

// Close closes the connection pool.
func (b *PostgresBackend) Close() {
	b.pool.Close()
}

// Pool returns the underlying connection pool.
func (b *PostgresBackend) Pool() *pgxpool.Pool {
	return b.pool
}

// ReadField selects a single column by id.
func (b *PostgresBackend) ReadField(ctx context.Context, table, id, field string) (any, error) {
	if err := CheckIdentifiers(table, field); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		pgx.Identifier{field}.Sanitize(), pgx.Identifier{table}.Sanitize())

	var value any
	err := b.pool.QueryRow(ctx, query, id).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrTrackNotFound, table, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s.%s: %w", table, field, err)
	}
	return value, nil
}

// InvokeProcedure calls a SQL function using named notation, e.g. SELECT "increment"(x => $1).
func (b *PostgresBackend) InvokeProcedure(ctx context.Context, name string, args map[string]any) (any, error) {
	if err := CheckIdentifiers(name); err != nil {
		return nil, err
	}

	query, values, err := buildCall(name, args)
	if err != nil {
		return nil, err
	}

	var result any
	if err := b.pool.QueryRow(ctx, query, values...).Scan(&result); err != nil {
		return nil, fmt.Errorf("calling %s: %w", name, err)
	}
	return result, nil
}

// UpdateField sets one column by id.
func (b *PostgresBackend) UpdateField(ctx context.Context, table, id, field string, value any) error {
	if err := CheckIdentifiers(table, field); err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE id = $2",
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{field}.Sanitize())

	tag, err := b.pool.Exec(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("updating %s.%s: %w", table, field, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrTrackNotFound, table, id)
	}
	return nil
}

// buildCall renders a named-notation function call with arguments in key order.
func buildCall(name string, args map[string]any) (string, []any, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	params := make([]string, len(keys))
	values := make([]any, len(keys))
	for i, k := range keys {
		if err := CheckIdentifiers(k); err != nil {
			return "", nil, err
		}
		params[i] = fmt.Sprintf("%s => $%d", k, i+1)
		values[i] = args[k]
	}

	return fmt.Sprintf("SELECT %s(%s)", pgx.Identifier{name}.Sanitize(), strings.Join(params, ", ")), values, nil
}
