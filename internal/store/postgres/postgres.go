// Package postgres implements store.Store over a single PostgreSQL table.
// It targets deployments that already run Postgres and do not want an
// S3-compatible bucket; objects live in an `objects` table keyed by the same
// flat namespace the S3 backend uses.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/gistvault/gistvault/internal/common"
	"github.com/gistvault/gistvault/internal/dbx"
	"github.com/gistvault/gistvault/internal/store"
)

// Store implements object storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type Store struct {
	db dbx.DBTX
}

// NewStore constructs a store bound to the given DBTX.
func NewStore(db dbx.DBTX) *Store {
	return &Store{db: db}
}

// Open connects to the given pgx DSN and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, tags store.Tags) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("%w: marshalling tags for %s: %v", common.ErrStorageFault, key, err)
	}

	query := `
		INSERT INTO objects (key, data, content_type, tags, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (key)
		DO UPDATE SET
			data = EXCLUDED.data,
			content_type = EXCLUDED.content_type,
			tags = EXCLUDED.tags,
			updated_at = now();
	`
	if _, err := s.db.ExecContext(ctx, query, key, data, contentType, tagsJSON); err != nil {
		return fmt.Errorf("%w: put %s: %v", common.ErrStorageFault, key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM objects WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %v", common.ErrStorageFault, key, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", common.ErrStorageFault, key, err)
	}
	return nil
}

func (s *Store) Head(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM objects WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: head %s: %v", common.ErrStorageFault, key, err)
	}
	return exists, nil
}

// List pages keys in lexicographic order. One extra row beyond the limit is
// fetched to detect truncation without a second query.
func (s *Store) List(ctx context.Context, prefix string, limit int, cursor string) (store.ListResult, error) {
	query := `
		SELECT key FROM objects
		WHERE key LIKE $1 || '%' AND key > $2
		ORDER BY key
	`
	args := []any{prefix, cursor}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit+1)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return store.ListResult{}, fmt.Errorf("%w: list %s: %v", common.ErrStorageFault, prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return store.ListResult{}, fmt.Errorf("%w: scanning key: %v", common.ErrStorageFault, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return store.ListResult{}, fmt.Errorf("%w: list %s: %v", common.ErrStorageFault, prefix, err)
	}

	res := store.ListResult{Keys: keys}
	if limit > 0 && len(keys) > limit {
		res.Keys = keys[:limit]
		res.NextCursor = keys[limit-1]
		res.Truncated = true
	}
	return res, nil
}
