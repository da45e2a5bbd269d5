package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// PostgresStore keeps values in kv_store and signals writes with
// pg_notify in the same transaction, so listeners only hear committed
// changes.
type PostgresStore struct {
	db     *sql.DB
	dsn    string
	prefix string
	tab    string
	log    *zap.Logger
}

func OpenPostgres(ctx context.Context, dsn, prefix, tab string, log *zap.Logger) (*PostgresStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	s := &PostgresStore{db: db, dsn: dsn, prefix: prefix, tab: tab, log: log}
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := db.ExecContext(ctx, schemaSQL)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv_store: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) key(k string) string { return s.prefix + k }

func (s *PostgresStore) channel() string { return s.prefix + "changes" }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT value
			FROM kv_store
			WHERE key = $1
		`, s.key(key)).Scan(&v)
	})
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	return s.write(ctx, key, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`, s.key(key), value)
		return err
	})
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	return s.write(ctx, key, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, s.key(key))
		return err
	})
}

func (s *PostgresStore) write(ctx context.Context, key string, op func(ctx context.Context, tx *sql.Tx) error) error {
	payload, err := json.Marshal(Event{Key: key, Tab: s.tab})
	if err != nil {
		return err
	}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if err := op(ctx, tx); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, s.channel(), string(payload)); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("postgres write %s: %w", key, err)
	}
	return nil
}

// Watch holds a dedicated connection in LISTEN mode for as long as ctx
// lives; pooled connections cannot receive notifications reliably.
func (s *PostgresStore) Watch(ctx context.Context) (<-chan Event, error) {
	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres listen connect: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel()}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("postgres listen: %w", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer func() { _ = conn.Close(context.Background()) }()

		for {
			n, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error("postgres notification wait failed", zap.Error(err))
				}
				return
			}

			var ev Event
			if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
				s.log.Warn("bad storage event", zap.Error(err), zap.String("payload", n.Payload))
				continue
			}
			if ev.Tab == s.tab {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
