// Command menu-ingest bulk-imports a menu catalog from gzipped CSV exports
// (one file per supplier system, id;name;price;category;available per
// line). Files are parsed concurrently; rows from later files win on id
// collisions, matching the file order given on the command line.
package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/dinetab/internal/storage/postgres"
)

type menuRow struct {
	id        string
	name      string
	price     decimal.Decimal
	category  string
	available bool
}

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one menu export file (.csv.gz) is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("menu ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("menu ingest completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	// Parse all export files concurrently.
	parsed := make([][]menuRow, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			rows, err := parseFile(gctx, path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			parsed[i] = rows
			slog.Info("parsed export", slog.String("path", path), slog.Int("rows", len(rows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Merge in file order: later files win on id collisions.
	merged := make(map[string]menuRow)
	order := make([]string, 0)
	for _, rows := range parsed {
		for _, row := range rows {
			if _, seen := merged[row.id]; !seen {
				order = append(order, row.id)
			}
			merged[row.id] = row
		}
	}

	slog.Info("merged menu rows", slog.Int("count", len(merged)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	for _, id := range order {
		row := merged[id]
		_, err := pool.Exec(ctx, `
			INSERT INTO menu_items (id, name, price, category, available)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    price = EXCLUDED.price,
			    category = EXCLUDED.category,
			    available = EXCLUDED.available`,
			row.id, row.name, row.price, row.category, row.available,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert menu item %s", row.id)
		}
	}

	return nil
}

func parseFile(ctx context.Context, path string) ([]menuRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer gz.Close()

	r := csv.NewReader(gz)
	r.Comma = ';'
	r.FieldsPerRecord = 5

	var rows []menuRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, errors.Wrap(err, "read record")
		}

		price, err := decimal.NewFromString(record[2])
		if err != nil || price.IsNegative() {
			return nil, errors.Errorf("invalid price %q for item %s", record[2], record[0])
		}
		available, err := strconv.ParseBool(record[4])
		if err != nil {
			return nil, errors.Errorf("invalid availability %q for item %s", record[4], record[0])
		}

		rows = append(rows, menuRow{
			id:        record[0],
			name:      record[1],
			price:     price,
			category:  record[3],
			available: available,
		})
	}
}
