package docstore

import (
	"context"
	"fmt"
	"sync"

	"chefpass/internal/sentinel"
	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/requestcontext"
)

// DefaultTxAttempts is the optimistic retry budget for RunTransaction.
const DefaultTxAttempts = 5

type versionedDoc struct {
	doc     Document
	version uint64
}

// InMemory is a versioned in-memory document store. Every document carries a
// monotonically increasing version; transactions validate the versions they
// observed at commit time and retry the whole block on mismatch. It doubles
// as the test fixture for every service in this module.
type InMemory struct {
	mu          sync.RWMutex
	collections map[string]map[string]*versionedDoc
	attempts    int
}

// NewInMemory creates an empty in-memory store with the default retry budget.
func NewInMemory() *InMemory {
	return &InMemory{
		collections: make(map[string]map[string]*versionedDoc),
		attempts:    DefaultTxAttempts,
	}
}

// NewInMemoryWithAttempts creates a store with a custom transaction retry
// budget. Tests use a budget of 1 to exercise conflict exhaustion.
func NewInMemoryWithAttempts(attempts int) *InMemory {
	s := NewInMemory()
	if attempts > 0 {
		s.attempts = attempts
	}
	return s
}

// Get returns a copy of the document or sentinel.ErrNotFound.
func (s *InMemory) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vd, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, sentinel.ErrNotFound)
	}
	return Clone(vd.doc), nil
}

// MergeWrite upserts the document outside of any transaction. Last write wins.
func (s *InMemory) MergeWrite(ctx context.Context, collection, id string, partial Document) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "merge write aborted: context cancelled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyMerge(ctx, collection, id, partial)
	return nil
}

// RunTransaction executes fn with optimistic concurrency. The read set is
// validated under the write lock at commit; any version drift (including a
// document appearing where absence was observed) aborts and re-runs fn.
func (s *InMemory) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 0; attempt < s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}

		tx := &memTx{store: s, reads: make(map[docKey]uint64)}
		if err := fn(tx); err != nil {
			return err
		}
		if s.commit(ctx, tx) {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeConflict, "transaction retry budget exhausted")
}

func (s *InMemory) commit(ctx context.Context, tx *memTx) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, observed := range tx.reads {
		current := uint64(0)
		if vd, ok := s.collections[key.collection][key.id]; ok {
			current = vd.version
		}
		if current != observed {
			return false
		}
	}
	for _, w := range tx.writes {
		s.applyMerge(ctx, w.key.collection, w.key.id, w.partial)
	}
	return true
}

// applyMerge must be called with the write lock held.
func (s *InMemory) applyMerge(ctx context.Context, collection, id string, partial Document) {
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]*versionedDoc)
		s.collections[collection] = coll
	}

	now := requestcontext.Now(ctx)
	vd, exists := coll[id]
	if !exists {
		vd = &versionedDoc{doc: Document{FieldCreatedAt: now}}
		coll[id] = vd
	}
	for k, v := range partial {
		// CreatedAt is server-owned and immutable once set.
		if k == FieldCreatedAt {
			continue
		}
		vd.doc[k] = v
	}
	vd.doc[FieldUpdatedAt] = now
	vd.version++
}

type docKey struct {
	collection string
	id         string
}

type bufferedWrite struct {
	key     docKey
	partial Document
}

type memTx struct {
	store  *InMemory
	reads  map[docKey]uint64
	writes []bufferedWrite
}

func (t *memTx) Get(collection, id string) (Document, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()

	key := docKey{collection, id}
	vd, ok := t.store.collections[collection][id]
	if !ok {
		t.reads[key] = 0
		return nil, fmt.Errorf("%s/%s: %w", collection, id, sentinel.ErrNotFound)
	}
	t.reads[key] = vd.version
	return Clone(vd.doc), nil
}

func (t *memTx) Set(collection, id string, partial Document) {
	t.writes = append(t.writes, bufferedWrite{
		key:     docKey{collection, id},
		partial: Clone(partial),
	})
}
