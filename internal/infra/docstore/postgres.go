// Package docstore implements the document-store port on Postgres: one
// JSONB row per document, keyed by its full path.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/domain/ports/store"
	"fitstudio-backend/internal/infra/metrics"
)

var _ store.Store = (*Postgres)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    path       TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    fields     JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);`

// NewPgxPool returns a live pool with the documents schema ensured.
func NewPgxPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return pool, nil
}

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Get(ctx context.Context, path store.DocPath) (*store.Document, error) {
	const q = `SELECT fields FROM documents WHERE path = $1;`
	var raw []byte
	err := s.pool.QueryRow(ctx, q, path.String()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.IncStoreOp("get", "not_found")
			return nil, domain.ErrNotFound
		}
		metrics.IncStoreOp("get", "error")
		return nil, mapPgError(err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, domain.ErrOperationFailed
	}
	metrics.IncStoreOp("get", "ok")
	return &store.Document{Path: path.String(), Fields: fields}, nil
}

const setSQL = `
INSERT INTO documents (path, collection, fields, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (path) DO UPDATE SET
  fields = CASE WHEN $4 THEN documents.fields || EXCLUDED.fields ELSE EXCLUDED.fields END,
  updated_at = now();`

func (s *Postgres) Set(ctx context.Context, path store.DocPath, fields map[string]any, merge bool) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	if _, err := s.pool.Exec(ctx, setSQL, path.String(), path.Parent().String(), raw, merge); err != nil {
		metrics.IncStoreOp("set", "error")
		return mapPgError(err)
	}
	metrics.IncStoreOp("set", "ok")
	return nil
}

func (s *Postgres) Update(ctx context.Context, path store.DocPath, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `UPDATE documents SET fields = fields || $2, updated_at = now() WHERE path = $1;`
	tag, err := s.pool.Exec(ctx, q, path.String(), raw)
	if err != nil {
		metrics.IncStoreOp("update", "error")
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		metrics.IncStoreOp("update", "not_found")
		return domain.ErrNotFound
	}
	metrics.IncStoreOp("update", "ok")
	return nil
}

func (s *Postgres) Delete(ctx context.Context, path store.DocPath) error {
	const q = `DELETE FROM documents WHERE path = $1;`
	if _, err := s.pool.Exec(ctx, q, path.String()); err != nil {
		metrics.IncStoreOp("delete", "error")
		return mapPgError(err)
	}
	metrics.IncStoreOp("delete", "ok")
	return nil
}

func (s *Postgres) Query(ctx context.Context, col store.CollectionPath, filters []store.Filter, orderBy string) ([]*store.Document, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT path, fields FROM documents WHERE collection = $1`)
	args := []any{col.String()}
	for _, f := range filters {
		args = append(args, f.Field, fmt.Sprint(f.Value))
		// JSON scalars compare as text through ->>.
		fmt.Fprintf(&sb, ` AND fields->>$%d = $%d`, len(args)-1, len(args))
	}
	if orderBy != "" {
		args = append(args, orderBy)
		fmt.Fprintf(&sb, ` ORDER BY fields->>$%d NULLS LAST`, len(args))
	}
	sb.WriteString(";")

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		metrics.IncStoreOp("query", "error")
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []*store.Document
	for rows.Next() {
		var path string
		var raw []byte
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, domain.ErrOperationFailed
		}
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, domain.ErrOperationFailed
		}
		out = append(out, &store.Document{Path: path, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		metrics.IncStoreOp("query", "error")
		return nil, mapPgError(err)
	}
	metrics.IncStoreOp("query", "ok")
	return out, nil
}

// Batch queues sets for a single transaction; Commit is all-or-nothing.
func (s *Postgres) Batch() store.Batch {
	return &pgBatch{store: s}
}

type batchOp struct {
	path   store.DocPath
	fields map[string]any
	merge  bool
}

type pgBatch struct {
	store *Postgres
	ops   []batchOp
}

func (b *pgBatch) Set(path store.DocPath, fields map[string]any, merge bool) {
	b.ops = append(b.ops, batchOp{path: path, fields: fields, merge: merge})
}

func (b *pgBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	tx, err := b.store.pool.Begin(ctx)
	if err != nil {
		metrics.IncStoreOp("batch", "error")
		return mapPgError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, op := range b.ops {
		raw, err := json.Marshal(op.fields)
		if err != nil {
			return domain.ErrInvalidArgument
		}
		if _, err := tx.Exec(ctx, setSQL, op.path.String(), op.path.Parent().String(), raw, op.merge); err != nil {
			metrics.IncStoreOp("batch", "error")
			return mapPgError(err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		metrics.IncStoreOp("batch", "error")
		return mapPgError(err)
	}
	metrics.IncStoreOp("batch", "ok")
	return nil
}

// mapPgError folds driver failures onto the domain backend errors:
// permission, unavailable, operation-failed fallback.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501": // insufficient_privilege
			return domain.ErrPermissionDenied
		case "57P03", "53300", "08006", "08001": // shutdown / too many conns / connection failures
			return domain.ErrUnavailable
		}
		return domain.ErrOperationFailed
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrUnavailable
	}
	return domain.ErrOperationFailed
}
