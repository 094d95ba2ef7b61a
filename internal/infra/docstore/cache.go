package docstore

import (
	"context"
	"encoding/json"
	"time"

	"fitstudio-backend/internal/domain/ports/store"
	"fitstudio-backend/internal/infra/metrics"
	red "fitstudio-backend/internal/infra/redis"
)

var _ store.Store = (*cacheDecorator)(nil)

// cacheDecorator adds a redis read-through cache for single-document reads.
// Writes invalidate the cached document; queries always hit the backend.
type cacheDecorator struct {
	inner store.Store
	cache red.Client
	ttl   time.Duration
}

func NewCacheDecorator(inner store.Store, cache red.Client, ttl time.Duration) store.Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &cacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func cacheKey(path store.DocPath) string { return "doc:" + path.String() }

func (d *cacheDecorator) Get(ctx context.Context, path store.DocPath) (*store.Document, error) {
	key := cacheKey(path)
	if val, err := d.cache.Get(ctx, key); err == nil {
		fields := map[string]any{}
		if json.Unmarshal([]byte(val), &fields) == nil {
			metrics.IncCacheRequest("doc", "hit")
			return &store.Document{Path: path.String(), Fields: fields}, nil
		}
	}

	metrics.IncCacheRequest("doc", "miss")
	doc, err := d.inner.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(doc.Fields); err == nil {
		_ = d.cache.Set(ctx, key, raw, d.ttl)
	}
	return doc, nil
}

func (d *cacheDecorator) Set(ctx context.Context, path store.DocPath, fields map[string]any, merge bool) error {
	_ = d.cache.Del(ctx, cacheKey(path))
	return d.inner.Set(ctx, path, fields, merge)
}

func (d *cacheDecorator) Update(ctx context.Context, path store.DocPath, fields map[string]any) error {
	_ = d.cache.Del(ctx, cacheKey(path))
	return d.inner.Update(ctx, path, fields)
}

func (d *cacheDecorator) Delete(ctx context.Context, path store.DocPath) error {
	_ = d.cache.Del(ctx, cacheKey(path))
	return d.inner.Delete(ctx, path)
}

func (d *cacheDecorator) Query(ctx context.Context, col store.CollectionPath, filters []store.Filter, orderBy string) ([]*store.Document, error) {
	return d.inner.Query(ctx, col, filters, orderBy)
}

// Batch wraps the inner batch so committed paths drop out of the cache.
func (d *cacheDecorator) Batch() store.Batch {
	return &cacheBatch{inner: d.inner.Batch(), dec: d}
}

type cacheBatch struct {
	inner store.Batch
	dec   *cacheDecorator
	paths []store.DocPath
}

func (b *cacheBatch) Set(path store.DocPath, fields map[string]any, merge bool) {
	b.paths = append(b.paths, path)
	b.inner.Set(path, fields, merge)
}

func (b *cacheBatch) Commit(ctx context.Context) error {
	if err := b.inner.Commit(ctx); err != nil {
		return err
	}
	keys := make([]string, 0, len(b.paths))
	for _, p := range b.paths {
		keys = append(keys, cacheKey(p))
	}
	if len(keys) > 0 {
		_ = b.dec.cache.Del(ctx, keys...)
	}
	return nil
}
