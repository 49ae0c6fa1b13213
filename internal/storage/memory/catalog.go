package memory

import (
	"context"
	"sort"

	"github.com/xenking/dinetab/internal/domain/catalog"
	"github.com/xenking/dinetab/internal/domain/dining"
)

var _ catalog.Catalog = (*Catalog)(nil)

// Catalog is a fixed in-memory menu catalog.
type Catalog struct {
	byID map[string]catalog.MenuItem
}

// NewCatalog builds a Catalog from the given items.
func NewCatalog(items ...catalog.MenuItem) *Catalog {
	byID := make(map[string]catalog.MenuItem, len(items))
	for _, m := range items {
		byID[m.ID] = m
	}
	return &Catalog{byID: byID}
}

func (c *Catalog) List(_ context.Context) ([]catalog.MenuItem, error) {
	items := make([]catalog.MenuItem, 0, len(c.byID))
	for _, m := range c.byID {
		items = append(items, m)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (c *Catalog) GetByIDs(_ context.Context, ids []string) ([]catalog.MenuItem, error) {
	items := make([]catalog.MenuItem, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if m, ok := c.byID[id]; ok {
			items = append(items, m)
		}
	}
	return items, nil
}

var _ dining.Registry = (*TableRegistry)(nil)

// TableRegistry is a fixed in-memory table registry.
type TableRegistry struct {
	byID map[string]dining.Table
}

// NewTableRegistry builds a TableRegistry from the given tables.
func NewTableRegistry(tables ...dining.Table) *TableRegistry {
	byID := make(map[string]dining.Table, len(tables))
	for _, t := range tables {
		byID[t.ID] = t
	}
	return &TableRegistry{byID: byID}
}

func (r *TableRegistry) List(_ context.Context) ([]dining.Table, error) {
	tables := make([]dining.Table, 0, len(r.byID))
	for _, t := range r.byID {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}

func (r *TableRegistry) Get(_ context.Context, id string) (*dining.Table, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, dining.ErrNotFound
	}
	return &t, nil
}
