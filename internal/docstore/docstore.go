// Package docstore defines the document-store contract the consistency core
// is written against, plus an in-memory implementation with optimistic
// transaction retry. The contract mirrors a hosted document database:
// get / merge-write / transactional read-modify-write with automatic retry
// on detected write conflicts, and server-assigned timestamps.
package docstore

import (
	"context"
	"time"
)

// Document is a flat key-value record. Values are JSON-ish scalars; the
// store does not interpret them beyond the timestamp fields it stamps.
type Document map[string]any

// Server-stamped timestamp fields. CreatedAt is set once, on first write;
// UpdatedAt is refreshed on every write.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Tx provides transactional access inside RunTransaction. Reads record the
// document versions observed; Set buffers a merge-write applied atomically
// at commit. A transaction is expected to touch a small, bounded number of
// documents (the waitlist assignment touches two).
type Tx interface {
	// Get returns a copy of the document, or sentinel.ErrNotFound (wrapped).
	// Absence is still recorded in the read set, so a document created
	// concurrently invalidates the transaction.
	Get(collection, id string) (Document, error)

	// Set buffers a merge-write: fields present in partial overwrite, absent
	// fields are untouched. Timestamps are stamped at commit.
	Set(collection, id string, partial Document)
}

// Store is the persistence contract consumed by the identity, pass, and
// print-queue services.
type Store interface {
	// Get returns a copy of the document, or an error wrapping
	// sentinel.ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)

	// MergeWrite upserts the document: fields present in partial overwrite,
	// absent fields are untouched. Stamps UpdatedAt, and CreatedAt when the
	// document is new.
	MergeWrite(ctx context.Context, collection, id string, partial Document) error

	// RunTransaction executes fn with transactional get/set. The whole block
	// is retried automatically when a document read inside it changed before
	// commit. After the retry budget is exhausted the call fails with a
	// domain error carrying CodeConflict.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// Clone returns a shallow copy of the document. Our records are flat, so a
// one-level copy is enough to prevent aliasing between callers.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// Time reads a timestamp field, tolerating absence.
func Time(doc Document, field string) (time.Time, bool) {
	v, ok := doc[field]
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}
