package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefpass/internal/sentinel"
	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/requestcontext"
)

func TestGetNotFound(t *testing.T) {
	s := NewInMemory()
	_, err := s.Get(context.Background(), "identities", "missing")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMergeWriteSemantics(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	require.NoError(t, s.MergeWrite(ctx, "identities", "a", Document{"displayName": "Ana", "email": "ana@example.com"}))
	require.NoError(t, s.MergeWrite(ctx, "identities", "a", Document{"displayName": "Ana B"}))

	doc, err := s.Get(ctx, "identities", "a")
	require.NoError(t, err)
	assert.Equal(t, "Ana B", doc["displayName"])
	assert.Equal(t, "ana@example.com", doc["email"], "absent fields must be untouched")
}

func TestMergeWriteStampsTimestamps(t *testing.T) {
	s := NewInMemory()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	ctx := requestcontext.WithNow(context.Background(), first)
	require.NoError(t, s.MergeWrite(ctx, "identities", "a", Document{"displayName": "Ana"}))

	ctx = requestcontext.WithNow(context.Background(), second)
	require.NoError(t, s.MergeWrite(ctx, "identities", "a", Document{"email": "ana@example.com"}))

	doc, err := s.Get(ctx, "identities", "a")
	require.NoError(t, err)

	created, ok := Time(doc, FieldCreatedAt)
	require.True(t, ok)
	assert.Equal(t, first, created, "createdAt is immutable once set")

	updated, ok := Time(doc, FieldUpdatedAt)
	require.True(t, ok)
	assert.Equal(t, second, updated)
}

func TestMergeWriteCannotOverwriteCreatedAt(t *testing.T) {
	s := NewInMemory()
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithNow(context.Background(), first)
	require.NoError(t, s.MergeWrite(ctx, "passes", "tok", Document{"displayName": "Ana"}))

	forged := first.Add(-24 * time.Hour)
	require.NoError(t, s.MergeWrite(ctx, "passes", "tok", Document{FieldCreatedAt: forged}))

	doc, err := s.Get(ctx, "passes", "tok")
	require.NoError(t, err)
	created, _ := Time(doc, FieldCreatedAt)
	assert.Equal(t, first, created)
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	require.NoError(t, s.MergeWrite(ctx, "identities", "a", Document{"displayName": "Ana"}))

	doc, err := s.Get(ctx, "identities", "a")
	require.NoError(t, err)
	doc["displayName"] = "mutated"

	again, err := s.Get(ctx, "identities", "a")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again["displayName"])
}

func TestTransactionCommits(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	err := s.RunTransaction(ctx, func(tx Tx) error {
		_, err := tx.Get("counters", "waitlist")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
		tx.Set("counters", "waitlist", Document{"value": 100})
		return nil
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, "counters", "waitlist")
	require.NoError(t, err)
	assert.Equal(t, 100, doc["value"])
}

func TestTransactionPropagatesFnError(t *testing.T) {
	s := NewInMemory()
	boom := errors.New("boom")

	err := s.RunTransaction(context.Background(), func(tx Tx) error {
		tx.Set("counters", "waitlist", Document{"value": 1})
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Get(context.Background(), "counters", "waitlist")
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "failed transaction must not apply writes")
}

func TestTransactionDetectsAbsenceRace(t *testing.T) {
	// A document created between a not-found read and commit must invalidate
	// the transaction; the retry then observes the new document.
	s := NewInMemory()
	ctx := context.Background()

	attempt := 0
	err := s.RunTransaction(ctx, func(tx Tx) error {
		attempt++
		_, getErr := tx.Get("counters", "waitlist")
		if attempt == 1 {
			require.ErrorIs(t, getErr, sentinel.ErrNotFound)
			// Simulate a concurrent writer winning the race.
			require.NoError(t, s.MergeWrite(ctx, "counters", "waitlist", Document{"value": 100}))
			tx.Set("counters", "waitlist", Document{"value": 100})
			return nil
		}
		require.NoError(t, getErr)
		tx.Set("counters", "waitlist", Document{"value": 101})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempt)

	doc, err := s.Get(ctx, "counters", "waitlist")
	require.NoError(t, err)
	assert.Equal(t, 101, doc["value"])
}

func TestTransactionRetryBudgetExhaustion(t *testing.T) {
	s := NewInMemoryWithAttempts(3)
	ctx := context.Background()
	require.NoError(t, s.MergeWrite(ctx, "counters", "waitlist", Document{"value": 100}))

	attempts := 0
	err := s.RunTransaction(ctx, func(tx Tx) error {
		attempts++
		_, err := tx.Get("counters", "waitlist")
		require.NoError(t, err)
		// Invalidate our own read every attempt.
		require.NoError(t, s.MergeWrite(ctx, "counters", "waitlist", Document{"value": attempts}))
		tx.Set("counters", "waitlist", Document{"value": -1})
		return nil
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, 3, attempts)
}

func TestTransactionCancelledContext(t *testing.T) {
	s := NewInMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.RunTransaction(ctx, func(tx Tx) error { return nil })
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestConcurrentIncrementsAreSerialized(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RunTransaction(ctx, func(tx Tx) error {
				doc, err := tx.Get("counters", "waitlist")
				next := 1
				if err == nil {
					next = doc["value"].(int) + 1
				}
				tx.Set("counters", "waitlist", Document{"value": next})
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)

	committed := 0
	for err := range errs {
		if err == nil {
			committed++
		} else {
			require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		}
	}

	doc, err := s.Get(ctx, "counters", "waitlist")
	require.NoError(t, err)
	assert.Equal(t, committed, doc["value"], "counter must equal the number of committed transactions")
}
