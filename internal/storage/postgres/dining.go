package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/dinetab/internal/domain/dining"
)

var _ dining.Registry = (*TableRegistry)(nil)

// TableRegistry implements dining.Registry backed by PostgreSQL.
type TableRegistry struct {
	pool *pgxpool.Pool
}

// NewTableRegistry returns a TableRegistry that uses the given pool.
func NewTableRegistry(pool *pgxpool.Pool) *TableRegistry {
	return &TableRegistry{pool: pool}
}

// List returns all tables ordered by their display number.
func (r *TableRegistry) List(ctx context.Context) ([]dining.Table, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, table_number, capacity, status
		FROM dining_tables
		ORDER BY table_number`)
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer rows.Close()

	var tables []dining.Table
	for rows.Next() {
		var t dining.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Status); err != nil {
			return nil, errors.Wrap(err, "scan table")
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate tables")
	}
	return tables, nil
}

// Get returns the table for the given id, or dining.ErrNotFound.
func (r *TableRegistry) Get(ctx context.Context, id string) (*dining.Table, error) {
	var t dining.Table
	err := r.pool.QueryRow(ctx, `
		SELECT id, table_number, capacity, status
		FROM dining_tables
		WHERE id = $1`, id,
	).Scan(&t.ID, &t.Number, &t.Capacity, &t.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dining.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get table %q", id)
	}
	return &t, nil
}
