package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefpass/internal/docstore"
	"chefpass/internal/identity/store"
	dErrors "chefpass/pkg/domain-errors"
)

func newAssignerFixture(t *testing.T, attempts int) (*Service, *docstore.InMemory) {
	t.Helper()
	docs := docstore.NewInMemoryWithAttempts(attempts)
	return New(store.New(docs), docs), docs
}

func registerIdentity(t *testing.T, svc *Service) uuid.UUID {
	t.Helper()
	ident, err := svc.Register(context.Background(), "Ana")
	require.NoError(t, err)
	return ident.ID
}

func TestAssignStartsAtOneHundred(t *testing.T) {
	svc, _ := newAssignerFixture(t, docstore.DefaultTxAttempts)
	id := registerIdentity(t, svc)

	n, err := svc.AssignWaitlistNumber(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestAssignIsIdempotent(t *testing.T) {
	svc, docs := newAssignerFixture(t, docstore.DefaultTxAttempts)
	ctx := context.Background()
	id := registerIdentity(t, svc)

	first, err := svc.AssignWaitlistNumber(ctx, id)
	require.NoError(t, err)
	second, err := svc.AssignWaitlistNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	counter, err := docs.Get(ctx, store.CollectionCounters, store.CounterWaitlist)
	require.NoError(t, err)
	assert.Equal(t, 100, counter[store.FieldCounterValue], "second call must not increment the counter")
}

func TestAssignToleratesTextCounterValue(t *testing.T) {
	svc, docs := newAssignerFixture(t, docstore.DefaultTxAttempts)
	ctx := context.Background()

	// Legacy counter documents stored the value as text.
	require.NoError(t, docs.MergeWrite(ctx, store.CollectionCounters, store.CounterWaitlist,
		docstore.Document{store.FieldCounterValue: "241"}))

	id := registerIdentity(t, svc)
	n, err := svc.AssignWaitlistNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 242, n)
}

func TestAssignFallsBackOnUnparseableCounter(t *testing.T) {
	svc, docs := newAssignerFixture(t, docstore.DefaultTxAttempts)
	ctx := context.Background()

	require.NoError(t, docs.MergeWrite(ctx, store.CollectionCounters, store.CounterWaitlist,
		docstore.Document{store.FieldCounterValue: "not-a-number"}))

	id := registerIdentity(t, svc)
	n, err := svc.AssignWaitlistNumber(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

// counterChurnStore invalidates the counter read between the transaction
// body and its commit, so every attempt loses the race.
type counterChurnStore struct {
	*docstore.InMemory
	churns int
}

func (s *counterChurnStore) RunTransaction(ctx context.Context, fn func(tx docstore.Tx) error) error {
	return s.InMemory.RunTransaction(ctx, func(tx docstore.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		// A concurrent writer wins the race before every commit.
		s.churns++
		return s.InMemory.MergeWrite(ctx, store.CollectionCounters, store.CounterWaitlist,
			docstore.Document{store.FieldCounterValue: 100 + s.churns})
	})
}

func TestAssignConflictAfterRetryBudget(t *testing.T) {
	docs := docstore.NewInMemoryWithAttempts(1)
	churn := &counterChurnStore{InMemory: docs}
	svc := New(store.New(docs), churn)
	ctx := context.Background()
	id := registerIdentity(t, svc)

	_, err := svc.AssignWaitlistNumber(ctx, id)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, 1, churn.churns, "a budget of 1 admits exactly one attempt")

	// The aborted transaction must not have leaked a number onto the identity.
	ident, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, ident.WaitlistNumber)
}

func TestConcurrentAssignmentsAreDenseAndDistinct(t *testing.T) {
	const n = 25
	// Generous budget: contention resolution is the store's job, liveness is ours.
	docs := docstore.NewInMemoryWithAttempts(n * 4)
	svc := New(store.New(docs), docs)
	ctx := context.Background()

	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = registerIdentity(t, svc)
	}

	var wg sync.WaitGroup
	numbers := make([]int, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			numbers[i], errs[i] = svc.AssignWaitlistNumber(ctx, ids[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "assignment %d", i)
	}

	sort.Ints(numbers)
	for i, got := range numbers {
		assert.Equal(t, 100+i, got, "numbers must be dense and distinct starting at 100")
	}

	counter, err := docs.Get(ctx, store.CollectionCounters, store.CounterWaitlist)
	require.NoError(t, err)
	assert.Equal(t, 100+n-1, counter[store.FieldCounterValue],
		"counter must equal the maximum assigned number")
}

func TestSaveEmailAssignsNumberOnce(t *testing.T) {
	svc, docs := newAssignerFixture(t, docstore.DefaultTxAttempts)
	ctx := context.Background()
	id := registerIdentity(t, svc)

	n, err := svc.SaveEmail(ctx, id, "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	ident, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", ident.Email)
	assert.True(t, ident.BetaAccess)
	require.NotNil(t, ident.WaitlistNumber)
	assert.Equal(t, 100, *ident.WaitlistNumber)

	// A second capture keeps the number and leaves the counter alone.
	n2, err := svc.SaveEmail(ctx, id, "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, 100, n2)

	counter, err := docs.Get(ctx, store.CollectionCounters, store.CounterWaitlist)
	require.NoError(t, err)
	assert.Equal(t, 100, counter[store.FieldCounterValue])
}

func TestSaveEmailRejectsInvalid(t *testing.T) {
	svc, _ := newAssignerFixture(t, docstore.DefaultTxAttempts)
	id := registerIdentity(t, svc)

	_, err := svc.SaveEmail(context.Background(), id, "not-an-email")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestAssignThenSaveEmailShareOneNumber(t *testing.T) {
	svc, _ := newAssignerFixture(t, docstore.DefaultTxAttempts)
	ctx := context.Background()
	id := registerIdentity(t, svc)

	assigned, err := svc.AssignWaitlistNumber(ctx, id)
	require.NoError(t, err)

	fromEmail, err := svc.SaveEmail(ctx, id, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, assigned, fromEmail)
}
