package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"chefpass/internal/docstore"
	identitymodels "chefpass/internal/identity/models"
	identitystore "chefpass/internal/identity/store"
	passmetrics "chefpass/internal/pass/metrics"
	"chefpass/internal/pass/models"
	"chefpass/internal/pass/store"
	"chefpass/internal/platform/tracer"
	dErrors "chefpass/pkg/domain-errors"
)

// Service mints pass tokens and keeps the public pass synchronized with the
// private identity record. Publishing is a write-through of the allow-listed
// projection; it is a pure function of the identity record at read time, and
// concurrent publishes for the same identity are coalesced.
type Service struct {
	ids     *identitystore.Store
	passes  *store.Store
	logger  *slog.Logger
	metrics *passmetrics.Metrics
	baseURL string
	tokenFn func(length int) (string, error)
	tracer  tracer.Tracer
	group   singleflight.Group
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *passmetrics.Metrics
	tokenFn func(length int) (string, error)
	tracer  tracer.Tracer
}

type Option func(*serviceConfig)

func WithLogger(l *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

func WithMetrics(m *passmetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// WithTokenSource overrides the random token generator. Tests use it to make
// collisions deterministic.
func WithTokenSource(fn func(length int) (string, error)) Option {
	return func(cfg *serviceConfig) { cfg.tokenFn = fn }
}

func WithTracer(t tracer.Tracer) Option {
	return func(cfg *serviceConfig) { cfg.tracer = t }
}

func New(ids *identitystore.Store, passes *store.Store, baseURL string, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tokenFn == nil {
		cfg.tokenFn = newToken
	}
	if cfg.tracer == nil {
		cfg.tracer = tracer.NewNoop()
	}
	return &Service{
		ids:     ids,
		passes:  passes,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokenFn: cfg.tokenFn,
		tracer:  cfg.tracer,
	}
}

// Ensure guarantees the identity has a token and a fresh public pass, and
// returns both. Idempotent: an identity that already owns a token gets the
// same token back, with the pass refreshed from the current record.
func (s *Service) Ensure(ctx context.Context, identityID uuid.UUID) (models.Ref, error) {
	v, err, _ := s.group.Do(identityID.String(), func() (any, error) {
		return s.ensure(ctx, identityID)
	})
	if err != nil {
		return models.Ref{}, err
	}
	return v.(models.Ref), nil
}

func (s *Service) ensure(ctx context.Context, identityID uuid.UUID) (_ models.Ref, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanPublishPass,
		tracer.String(tracer.AttrIdentityID, identityID.String()),
	)
	minted := false
	defer func() {
		span.SetAttributes(tracer.Bool(tracer.AttrTokenMinted, minted))
		span.End(err)
	}()

	ident, err := s.ids.Find(ctx, identityID)
	if err != nil {
		return models.Ref{}, dErrors.Wrap(err, dErrors.CodeNotFound, "identity not found")
	}

	token := ident.PassToken
	if token == "" {
		token, err = s.mint(ctx)
		if err != nil {
			return models.Ref{}, err
		}
		minted = true
		s.metrics.IncTokenMinted()
	}
	url := s.URLFor(token)

	if err := s.passes.Publish(ctx, token, Projection(ident)); err != nil {
		return models.Ref{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to publish pass")
	}
	if err := s.ids.Patch(ctx, identityID, docstore.Document{
		identitystore.FieldPassToken: token,
		identitystore.FieldPassURL:   url,
	}); err != nil {
		return models.Ref{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pass token")
	}

	s.metrics.IncPublished()
	return models.Ref{Token: token, URL: url}, nil
}

// mint generates a fresh token, retrying once at the longer length if the
// first draw collides with an existing pass. Best-effort, single retry: the
// second draw is accepted without another lookup.
func (s *Service) mint(ctx context.Context) (string, error) {
	token, err := s.tokenFn(TokenLength)
	if err != nil {
		return "", err
	}
	taken, err := s.passes.Exists(ctx, token)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token collision")
	}
	if taken {
		s.metrics.IncTokenCollision()
		return s.tokenFn(RetryTokenLength)
	}
	return token, nil
}

// SyncAfterMutation refreshes the public pass after an identity write.
// Failures are logged and counted, never surfaced: the pass is a derived
// view and bounded staleness is preferred over failing the primary write.
func (s *Service) SyncAfterMutation(ctx context.Context, identityID uuid.UUID) {
	if _, err := s.Ensure(ctx, identityID); err != nil {
		s.metrics.IncPublishFailure()
		s.logger.WarnContext(ctx, "public pass sync failed",
			"error", dErrors.Wrap(err, dErrors.CodePublishFailure, "pass write-through failed"),
			"identity_id", identityID.String(),
		)
	}
}

// GetPublic retrieves a public pass by token.
func (s *Service) GetPublic(ctx context.Context, token string) (*models.PublicPass, error) {
	pass, err := s.passes.Find(ctx, token)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "pass not found")
	}
	return pass, nil
}

// URLFor builds the canonical public URL for a token.
func (s *Service) URLFor(token string) string {
	return s.baseURL + "/v/" + token
}

// Projection builds the allow-listed public document from an identity.
// Absent or empty optional fields are omitted entirely rather than written
// blank, so the public record never reveals which private fields exist.
func Projection(ident *identitymodels.Identity) docstore.Document {
	displayName := strings.TrimSpace(ident.DisplayName)
	if displayName == "" {
		displayName = "Chef"
	}

	doc := docstore.Document{
		store.FieldDisplayName: displayName,
	}
	if ident.Category != "" {
		doc[store.FieldCategory] = string(ident.Category)
	}
	if email := strings.TrimSpace(ident.Email); email != "" {
		doc[store.FieldEmail] = email
	}
	if ident.WaitlistNumber != nil {
		doc[store.FieldWaitlistNumber] = *ident.WaitlistNumber
	}
	if ident.WantsGigs {
		doc[store.FieldWantsGigs] = true
	}
	if ident.WantsSell {
		doc[store.FieldWantsSell] = true
	}
	if ident.FarmConnect {
		doc[store.FieldFarmConnect] = true
	}
	return doc
}
