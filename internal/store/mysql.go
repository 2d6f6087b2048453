package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLStore mirrors PostgresStore on MySQL's JSON column type. The DSN must
// include parseTime=true so created_at scans into time.Time.
type MySQLStore struct {
	db           *sql.DB
	pollInterval time.Duration
}

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection VARCHAR(255) NOT NULL,
	id VARCHAR(64) NOT NULL,
	doc JSON NOT NULL,
	created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (collection, id)
)`

// NewMySQLStore connects and ensures the documents table exists.
func NewMySQLStore(ctx context.Context, dsn string, pollInterval time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &MySQLStore{db: db, pollInterval: pollInterval}, nil
}

func (s *MySQLStore) Create(ctx context.Context, col string, doc Doc) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)`,
		col, id, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *MySQLStore) Update(ctx context.Context, col string, id string, fields Doc) error {
	if exists, err := s.exists(ctx, col, id); err != nil {
		return err
	} else if !exists {
		return ErrNotFound
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET doc = JSON_MERGE_PATCH(doc, ?) WHERE collection = ? AND id = ?`,
		payload, col, id)
	return err
}

func (s *MySQLStore) Delete(ctx context.Context, col string, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, col, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) ListOnce(ctx context.Context, col string) ([]Doc, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc, created_at FROM documents WHERE collection = ? ORDER BY created_at`, col)
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

func (s *MySQLStore) Subscribe(ctx context.Context, col string, fn func([]Doc)) (CancelFunc, error) {
	return pollSubscribe(ctx, col, s.pollInterval, s.ListOnce, fn)
}

func (s *MySQLStore) DecrementStock(ctx context.Context, col string, id string, qty int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents
		 SET doc = JSON_SET(doc, '$.stock', CAST(JSON_UNQUOTE(JSON_EXTRACT(doc, '$.stock')) AS SIGNED) - ?)
		 WHERE collection = ? AND id = ?
		   AND CAST(JSON_UNQUOTE(JSON_EXTRACT(doc, '$.stock')) AS SIGNED) >= ?`,
		qty, col, id, qty)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	exists, err := s.exists(ctx, col, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *MySQLStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *MySQLStore) exists(ctx context.Context, col, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE collection = ? AND id = ?`, col, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
