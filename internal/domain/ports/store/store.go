// Package store defines the document-store contract the usecases depend on.
// Implementations map their native failures onto the domain sentinel errors.
package store

import (
	"context"
	"encoding/json"

	"fitstudio-backend/internal/domain"
)

// Document is a stored record: its full path plus a flat field map.
type Document struct {
	Path   string
	Fields map[string]any
}

// Filter is a single field predicate. Only equality is supported; that is
// all the reconciliation and guard queries need.
type Filter struct {
	Field string
	Value any
}

// Store is the key-path document database consumed by the usecases.
type Store interface {
	// Get returns the document at path, or domain.ErrNotFound.
	Get(ctx context.Context, path DocPath) (*Document, error)
	// Set writes fields at path. With merge, existing fields absent from the
	// payload survive; without, the document is replaced.
	Set(ctx context.Context, path DocPath, fields map[string]any, merge bool) error
	// Update patches fields at path; fails with domain.ErrNotFound if absent.
	Update(ctx context.Context, path DocPath, fields map[string]any) error
	// Delete removes the document at path. Deleting a missing path is a no-op.
	Delete(ctx context.Context, path DocPath) error
	// Query returns the documents of a collection matching all filters,
	// ordered by the named field when orderBy is non-empty.
	Query(ctx context.Context, col CollectionPath, filters []Filter, orderBy string) ([]*Document, error)
	// Batch starts a write batch whose Commit is atomic across all queued
	// operations: either every set is applied or none is.
	Batch() Batch
}

// Batch queues merge/replace sets to be committed as one indivisible unit.
type Batch interface {
	Set(path DocPath, fields map[string]any, merge bool)
	Commit(ctx context.Context) error
}

// Fields flattens v into a document field map via its JSON form.
func Fields(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, domain.ErrInvalidArgument
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	return m, nil
}

// Decode unmarshals a document's fields into v.
func Decode(doc *Document, v any) error {
	if doc == nil {
		return domain.ErrNotFound
	}
	b, err := json.Marshal(doc.Fields)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if err := json.Unmarshal(b, v); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}
