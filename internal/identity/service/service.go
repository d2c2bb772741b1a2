package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"chefpass/internal/docstore"
	identitymetrics "chefpass/internal/identity/metrics"
	"chefpass/internal/identity/models"
	"chefpass/internal/identity/store"
	"chefpass/internal/platform/tracer"
	dErrors "chefpass/pkg/domain-errors"
)

// PassSyncer refreshes the public pass after an identity mutation. The pass
// is a derived view: the syncer logs its own failures and never returns an
// error, so the primary write path cannot be blocked by it.
type PassSyncer interface {
	SyncAfterMutation(ctx context.Context, identityID uuid.UUID)
}

// Service orchestrates identity record mutations. Every mutation is a
// merge-write followed by a best-effort public-pass sync; the one exception
// is email capture, which also assigns the waitlist number transactionally.
type Service struct {
	ids     *store.Store
	docs    docstore.Store
	syncer  PassSyncer
	logger  *slog.Logger
	metrics *identitymetrics.Metrics
	tracer  tracer.Tracer
}

type serviceConfig struct {
	syncer  PassSyncer
	logger  *slog.Logger
	metrics *identitymetrics.Metrics
	tracer  tracer.Tracer
}

type Option func(*serviceConfig)

func WithPassSyncer(s PassSyncer) Option {
	return func(cfg *serviceConfig) { cfg.syncer = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(cfg *serviceConfig) { cfg.tracer = t }
}

func New(ids *store.Store, docs docstore.Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = tracer.NewNoop()
	}
	return &Service{
		ids:     ids,
		docs:    docs,
		syncer:  cfg.syncer,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		tracer:  cfg.tracer,
	}
}

// Register creates a new identity record. The display name may be empty; the
// onboarding flow captures it later.
func (s *Service) Register(ctx context.Context, displayName string) (*models.Identity, error) {
	id := uuid.New()
	patch := docstore.Document{}
	if name := strings.TrimSpace(displayName); name != "" {
		patch[store.FieldDisplayName] = name
	}
	if err := s.ids.Patch(ctx, id, patch); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
	}
	return s.ids.Find(ctx, id)
}

// Get retrieves an identity record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	ident, err := s.ids.Find(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "identity not found")
	}
	return ident, nil
}

// SaveDisplayName updates the display name and refreshes the public pass.
func (s *Service) SaveDisplayName(ctx context.Context, id uuid.UUID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return dErrors.New(dErrors.CodeValidation, "display name is required")
	}
	if err := s.ids.Patch(ctx, id, docstore.Document{store.FieldDisplayName: displayName}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save display name")
	}
	s.syncPass(ctx, id)
	return nil
}

// SaveCategory stores the quiz-assigned category and refreshes the public pass.
func (s *Service) SaveCategory(ctx context.Context, id uuid.UUID, raw string) error {
	category, err := models.ParseCategory(raw)
	if err != nil {
		return err
	}
	if err := s.ids.Patch(ctx, id, docstore.Document{store.FieldCategory: string(category)}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save category")
	}
	s.syncPass(ctx, id)
	return nil
}

// Preferences are the three opt-in flags captured by the quiz flow.
type Preferences struct {
	WantsGigs   bool
	WantsSell   bool
	FarmConnect bool
}

// SavePreferences stores the opt-in flags and refreshes the public pass.
func (s *Service) SavePreferences(ctx context.Context, id uuid.UUID, prefs Preferences) error {
	patch := docstore.Document{
		store.FieldWantsGigs:   prefs.WantsGigs,
		store.FieldWantsSell:   prefs.WantsSell,
		store.FieldFarmConnect: prefs.FarmConnect,
	}
	if err := s.ids.Patch(ctx, id, patch); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save preferences")
	}
	s.syncPass(ctx, id)
	return nil
}

// MarkWelcomeDone records completion of the welcome step.
func (s *Service) MarkWelcomeDone(ctx context.Context, id uuid.UUID) error {
	if err := s.ids.Patch(ctx, id, docstore.Document{store.FieldWelcomeDone: true}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark welcome complete")
	}
	s.syncPass(ctx, id)
	return nil
}

func (s *Service) syncPass(ctx context.Context, id uuid.UUID) {
	if s.syncer == nil {
		return
	}
	s.syncer.SyncAfterMutation(ctx, id)
}
