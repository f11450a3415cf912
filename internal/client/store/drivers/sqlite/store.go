package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tandahq/tanda/internal/client/store"
	"github.com/tandahq/tanda/pkg/idx"

	_ "modernc.org/sqlite"
)

// installIDKey is where the device identifier lives in local_state.
const installIDKey = "tanda/install-id/v1"

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Local single-user database; one connection avoids writer contention.
	db.SetMaxOpenConns(1)

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM local_state WHERE key = ?`,
		key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO local_state (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM local_state WHERE key = ?`, key)
	return err
}

// InstallID returns the stable device identifier, minting one on first run.
func (s *Store) InstallID(ctx context.Context) (idx.ID, error) {
	raw, err := s.Get(ctx, installIDKey)
	if err == nil {
		id, perr := idx.Parse(string(raw))
		if perr == nil {
			return id, nil
		}
		// Unparsable record: fall through and mint a fresh one.
	} else if !errors.Is(err, store.ErrNotFound) {
		return idx.Zero, err
	}

	id := idx.New()
	if err := s.Put(ctx, installIDKey, []byte(id.String())); err != nil {
		return idx.Zero, err
	}
	return id, nil
}
