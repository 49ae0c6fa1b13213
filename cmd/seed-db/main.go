// Command seed-db runs migrations and loads the dining tables and menu
// catalog fixtures. The order core treats both as collaborator-owned data;
// this tool stands in for the management UIs that own them in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/dinetab/internal/storage/postgres"
)

type menuItemJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Available bool            `json:"available"`
}

type tableJSON struct {
	ID       string `json:"id"`
	Number   int    `json:"table_number"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
}

func main() {
	var (
		databaseURL string
		menuFile    string
		tablesFile  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu items JSON file")
	flag.StringVar(&tablesFile, "tables-file", "db/seed/tables.json", "path to dining tables JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile, tablesFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile, tablesFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedTables(ctx, pool, tablesFile); err != nil {
		return errors.Wrap(err, "seed tables")
	}

	if err := seedMenu(ctx, pool, menuFile); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	return nil
}

func seedTables(ctx context.Context, pool *pgxpool.Pool, path string) error {
	slog.Info("reading tables file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read tables file")
	}

	var tables []tableJSON
	if err := json.Unmarshal(data, &tables); err != nil {
		return errors.Wrap(err, "parse tables JSON")
	}

	slog.Info("upserting tables", slog.Int("count", len(tables)))

	for _, t := range tables {
		_, err := pool.Exec(ctx, `
			INSERT INTO dining_tables (id, table_number, capacity, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE
			SET table_number = EXCLUDED.table_number,
			    capacity = EXCLUDED.capacity,
			    status = EXCLUDED.status`,
			t.ID, t.Number, t.Capacity, t.Status,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert table %s", t.ID)
		}

		slog.Info("upserted table", slog.String("id", t.ID), slog.Int("number", t.Number))
	}

	return nil
}

func seedMenu(ctx context.Context, pool *pgxpool.Pool, path string) error {
	slog.Info("reading menu file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	var items []menuItemJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse menu JSON")
	}

	slog.Info("upserting menu items", slog.Int("count", len(items)))

	for _, m := range items {
		_, err := pool.Exec(ctx, `
			INSERT INTO menu_items (id, name, price, category, available)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    price = EXCLUDED.price,
			    category = EXCLUDED.category,
			    available = EXCLUDED.available`,
			m.ID, m.Name, m.Price, m.Category, m.Available,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert menu item %s", m.ID)
		}

		slog.Info("upserted menu item", slog.String("id", m.ID), slog.String("name", m.Name))
	}

	return nil
}
