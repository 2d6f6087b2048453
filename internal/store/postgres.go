package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps every collection in one documents table with a JSONB
// payload. Subscriptions are emulated by polling; Postgres has no push
// equivalent of a change stream at this level.
type PostgresStore struct {
	pool         *pgxpool.Pool
	pollInterval time.Duration
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	doc JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// NewPostgresStore connects and ensures the documents table exists.
func NewPostgresStore(ctx context.Context, dsn string, pollInterval time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, pollInterval: pollInterval}, nil
}

func (s *PostgresStore) Create(ctx context.Context, col string, doc Doc) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		col, id, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, col string, id string, fields Doc) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET doc = doc || $3::jsonb WHERE collection = $1 AND id = $2`,
		col, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, col string, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, col, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListOnce(ctx context.Context, col string) ([]Doc, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, doc, created_at FROM documents WHERE collection = $1 ORDER BY created_at`, col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var (
			id        string
			payload   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &payload, &createdAt); err != nil {
			return nil, err
		}
		doc := Doc{}
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, err
		}
		doc["id"] = id
		doc["createdAt"] = createdAt
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Subscribe(ctx context.Context, col string, fn func([]Doc)) (CancelFunc, error) {
	return pollSubscribe(ctx, col, s.pollInterval, s.ListOnce, fn)
}

func (s *PostgresStore) DecrementStock(ctx context.Context, col string, id string, qty int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents
		 SET doc = jsonb_set(doc, '{stock}', to_jsonb((doc->>'stock')::bigint - $3))
		 WHERE collection = $1 AND id = $2 AND (doc->>'stock')::bigint >= $3`,
		col, id, int64(qty))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1 AND id = $2)`,
		col, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}
