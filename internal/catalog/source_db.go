package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresSource serves the catalog document from the catalog_products
// table, one JSON product per row, ordered by id.
type PostgresSource struct {
	db *sql.DB
}

func isPostgresDSN(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

func OpenPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresSource{db: db}

	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}
	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS catalog_products (
				id  BIGINT PRIMARY KEY,
				doc JSONB NOT NULL
			)`)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return s, nil
}

func (s *PostgresSource) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresSource) Close() error { return s.db.Close() }

func (s *PostgresSource) Fetch(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT COALESCE(json_agg(doc ORDER BY id), '[]'::json)
			FROM catalog_products
		`).Scan(&doc)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch catalog rows: %w", err)
	}
	return doc, nil
}

// Replace swaps the whole table for products in one transaction.
func (s *PostgresSource) Replace(ctx context.Context, products []Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
			return err
		}
		for _, p := range products {
			doc, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO catalog_products (id, doc) VALUES ($1, $2)
				 ON CONFLICT (id) DO NOTHING`, p.ID, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// lazyPostgres connects on first Fetch so NewSource stays infallible.
type lazyPostgres struct {
	dsn string
}

func (l lazyPostgres) Fetch(ctx context.Context) ([]byte, error) {
	src, err := OpenPostgresSource(ctx, l.dsn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return src.Fetch(ctx)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
