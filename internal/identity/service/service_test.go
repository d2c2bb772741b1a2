package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefpass/internal/docstore"
	"chefpass/internal/identity/models"
	"chefpass/internal/identity/store"
	dErrors "chefpass/pkg/domain-errors"
)

// recordingSyncer counts pass refreshes per identity.
type recordingSyncer struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (r *recordingSyncer) SyncAfterMutation(_ context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id)
}

func (r *recordingSyncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newServiceFixture(t *testing.T) (*Service, *recordingSyncer) {
	t.Helper()
	docs := docstore.NewInMemory()
	syncer := &recordingSyncer{}
	return New(store.New(docs), docs, WithPassSyncer(syncer)), syncer
}

func TestRegisterAndGet(t *testing.T) {
	svc, _ := newServiceFixture(t)
	ctx := context.Background()

	ident, err := svc.Register(ctx, "  Ana  ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", ident.DisplayName)
	assert.False(t, ident.CreatedAt.IsZero())

	got, err := svc.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)
	assert.Equal(t, "Ana", got.DisplayName)
}

func TestGetUnknown(t *testing.T) {
	svc, _ := newServiceFixture(t)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSaveDisplayName(t *testing.T) {
	svc, syncer := newServiceFixture(t)
	ctx := context.Background()
	ident, err := svc.Register(ctx, "")
	require.NoError(t, err)

	require.NoError(t, svc.SaveDisplayName(ctx, ident.ID, "Ana"))
	got, err := svc.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.DisplayName)
	assert.Equal(t, 1, syncer.count())

	err = svc.SaveDisplayName(ctx, ident.ID, "   ")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Equal(t, 1, syncer.count(), "rejected writes must not trigger a pass sync")
}

func TestSaveCategory(t *testing.T) {
	svc, syncer := newServiceFixture(t)
	ctx := context.Background()
	ident, err := svc.Register(ctx, "Ana")
	require.NoError(t, err)

	require.NoError(t, svc.SaveCategory(ctx, ident.ID, "artisan"))
	got, err := svc.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryArtisan, got.Category)
	assert.Equal(t, 1, syncer.count())

	err = svc.SaveCategory(ctx, ident.ID, "astronaut")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestSavePreferences(t *testing.T) {
	svc, syncer := newServiceFixture(t)
	ctx := context.Background()
	ident, err := svc.Register(ctx, "Ana")
	require.NoError(t, err)

	require.NoError(t, svc.SavePreferences(ctx, ident.ID, Preferences{
		WantsGigs:   true,
		FarmConnect: true,
	}))
	got, err := svc.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.True(t, got.WantsGigs)
	assert.False(t, got.WantsSell)
	assert.True(t, got.FarmConnect)
	assert.Equal(t, 1, syncer.count())
}

func TestMarkWelcomeDone(t *testing.T) {
	svc, syncer := newServiceFixture(t)
	ctx := context.Background()
	ident, err := svc.Register(ctx, "Ana")
	require.NoError(t, err)

	require.NoError(t, svc.MarkWelcomeDone(ctx, ident.ID))
	got, err := svc.Get(ctx, ident.ID)
	require.NoError(t, err)
	assert.True(t, got.WelcomeDone)
	assert.Equal(t, 1, syncer.count())
}

func TestMutationsWorkWithoutSyncer(t *testing.T) {
	docs := docstore.NewInMemory()
	svc := New(store.New(docs), docs)
	ctx := context.Background()

	ident, err := svc.Register(ctx, "Ana")
	require.NoError(t, err)
	require.NoError(t, svc.SaveDisplayName(ctx, ident.ID, "Ana B"))
	require.NoError(t, svc.MarkWelcomeDone(ctx, ident.ID))
}
