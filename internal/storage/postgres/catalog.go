package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/dinetab/internal/domain/catalog"
)

var _ catalog.Catalog = (*Catalog)(nil)

// Catalog implements catalog.Catalog backed by PostgreSQL.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog returns a Catalog that uses the given pool.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

const selectMenuItems = `
SELECT id, name, price, category, available
FROM menu_items`

// List returns the full menu ordered by id.
func (c *Catalog) List(ctx context.Context) ([]catalog.MenuItem, error) {
	rows, err := c.pool.Query(ctx, selectMenuItems+` ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list menu items")
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

// GetByIDs returns the menu items for the given ids in one query.
func (c *Catalog) GetByIDs(ctx context.Context, ids []string) ([]catalog.MenuItem, error) {
	rows, err := c.pool.Query(ctx, selectMenuItems+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get menu items")
	}
	defer rows.Close()
	return scanMenuItems(rows)
}

func scanMenuItems(rows pgx.Rows) ([]catalog.MenuItem, error) {
	var items []catalog.MenuItem
	for rows.Next() {
		var m catalog.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Category, &m.Available); err != nil {
			return nil, errors.Wrap(err, "scan menu item")
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate menu items")
	}
	return items, nil
}
