package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"chefpass/internal/audit"
	"chefpass/internal/docstore"
	identitymodels "chefpass/internal/identity/models"
	identitystore "chefpass/internal/identity/store"
	passmodels "chefpass/internal/pass/models"
	printqmetrics "chefpass/internal/printq/metrics"
	"chefpass/internal/printq/models"
	"chefpass/internal/printq/store"
	"chefpass/internal/sentinel"
	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/requestcontext"
)

// PassResolver supplies public pass refs and keeps the pass in sync with the
// identity record.
type PassResolver interface {
	Ensure(ctx context.Context, identityID uuid.UUID) (passmodels.Ref, error)
	SyncAfterMutation(ctx context.Context, identityID uuid.UUID)
}

// Service drives the print workflow state machine. All transitions go
// through the (state, action, role) table in models; anything the table
// does not list is rejected, terminal states included.
type Service struct {
	jobs    *store.Store
	ids     *identitystore.Store
	passes  PassResolver
	auditor *audit.Publisher
	logger  *slog.Logger
	metrics *printqmetrics.Metrics
}

type serviceConfig struct {
	auditor *audit.Publisher
	logger  *slog.Logger
	metrics *printqmetrics.Metrics
}

type Option func(*serviceConfig)

func WithAuditor(a *audit.Publisher) Option {
	return func(cfg *serviceConfig) { cfg.auditor = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

func WithMetrics(m *printqmetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func New(jobs *store.Store, ids *identitystore.Store, passes PassResolver, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		jobs:    jobs,
		ids:     ids,
		passes:  passes,
		auditor: cfg.auditor,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Get retrieves a print job.
func (s *Service) Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := s.jobs.Find(ctx, jobID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "print job not found")
	}
	return job, nil
}

// Request creates (or idempotently re-asserts) the owner's print job in
// queued. Re-requesting while queued or printing is a no-op upsert; a job in
// a terminal state rejects the request like any other invalid transition.
func (s *Service) Request(ctx context.Context, ownerID uuid.UUID) (*models.Job, error) {
	ident, err := s.ids.Find(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "identity not found")
	}

	if existing, err := s.jobs.Find(ctx, ownerID); err == nil {
		if _, terr := models.Next(existing.Status, models.ActionRequest, models.RoleOwner); terr != nil {
			s.metrics.IncRejected()
			return nil, terr
		}
		// Already queued or printing; nothing to change.
		return existing, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read print job")
	}

	passURL := s.resolvePassURL(ctx, ident)
	now := requestcontext.Now(ctx)

	if err := s.ids.Patch(ctx, ownerID, docstore.Document{
		identitystore.FieldPrintStatus:      string(identitymodels.PrintStatusPending),
		identitystore.FieldPrintRequestedAt: now,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark print requested")
	}

	jobDoc := docstore.Document{
		store.FieldOwnerID:     ownerID.String(),
		store.FieldDisplayName: ident.DisplayName,
		store.FieldEmail:       ident.Email,
		store.FieldCategory:    string(ident.Category),
		store.FieldPassURL:     passURL,
		store.FieldStatus:      string(models.StatusQueued),
		store.FieldRequestedAt: now,
	}
	if ident.WaitlistNumber != nil {
		jobDoc[store.FieldWaitlistNumber] = *ident.WaitlistNumber
	}
	if via := requestcontext.Device(ctx); via != "" {
		jobDoc[store.FieldRequestedVia] = via
	}
	if err := s.jobs.Patch(ctx, ownerID, jobDoc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue print job")
	}

	s.passes.SyncAfterMutation(ctx, ownerID)
	s.metrics.IncTransition(string(models.ActionRequest))
	s.emit(ctx, audit.Event{
		IdentityID: ownerID.String(),
		JobID:      ownerID.String(),
		Actor:      ownerID.String(),
		Action:     audit.ActionPrintRequested,
		Outcome:    audit.OutcomeApplied,
	})
	return s.Get(ctx, ownerID)
}

// Approve moves a queued job into printing, locking it into a print run.
func (s *Service) Approve(ctx context.Context, jobID uuid.UUID, approverID string) (*models.Job, error) {
	job, err := s.transition(ctx, jobID, models.ActionApprove, models.RoleApprover, approverID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := s.jobs.Patch(ctx, jobID, docstore.Document{
		store.FieldStatus:     string(models.StatusPrinting),
		store.FieldApprovedAt: now,
		store.FieldApprovedBy: approverID,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve print job")
	}
	if err := s.ids.Patch(ctx, job.OwnerID, docstore.Document{
		identitystore.FieldPrintStatus:     string(identitymodels.PrintStatusApproved),
		identitystore.FieldPrintApprovedAt: now,
		identitystore.FieldApprovedBy:      approverID,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark print approved")
	}

	s.passes.SyncAfterMutation(ctx, job.OwnerID)
	s.metrics.IncTransition(string(models.ActionApprove))
	s.emit(ctx, audit.Event{
		IdentityID: job.OwnerID.String(),
		JobID:      jobID.String(),
		Actor:      approverID,
		Action:     audit.ActionPrintApproved,
		Outcome:    audit.OutcomeApplied,
	})
	return s.Get(ctx, jobID)
}

// Deny rejects a queued job. Terminal: the job admits no further transitions.
func (s *Service) Deny(ctx context.Context, jobID uuid.UUID, approverID string) (*models.Job, error) {
	job, err := s.transition(ctx, jobID, models.ActionDeny, models.RoleApprover, approverID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := s.jobs.Patch(ctx, jobID, docstore.Document{
		store.FieldStatus:   string(models.StatusDenied),
		store.FieldDeniedAt: now,
		store.FieldDeniedBy: approverID,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deny print job")
	}
	if err := s.ids.Patch(ctx, job.OwnerID, docstore.Document{
		identitystore.FieldPrintStatus:   string(identitymodels.PrintStatusDenied),
		identitystore.FieldPrintDeniedAt: now,
		identitystore.FieldDeniedBy:      approverID,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark print denied")
	}

	s.metrics.IncTransition(string(models.ActionDeny))
	s.emit(ctx, audit.Event{
		IdentityID: job.OwnerID.String(),
		JobID:      jobID.String(),
		Actor:      approverID,
		Action:     audit.ActionPrintDenied,
		Outcome:    audit.OutcomeApplied,
	})
	return s.Get(ctx, jobID)
}

// MarkPrinted completes a printing job and stamps the terminal printed
// marker on the identity record. The role distinguishes the printing agent
// callback from a manual approver action; the table permits both.
func (s *Service) MarkPrinted(ctx context.Context, jobID uuid.UUID, role models.Role, actor string) (*models.Job, error) {
	job, err := s.transition(ctx, jobID, models.ActionMarkPrinted, role, actor)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := s.jobs.Patch(ctx, jobID, docstore.Document{
		store.FieldStatus:    string(models.StatusPrinted),
		store.FieldPrintedAt: now,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete print job")
	}
	if err := s.ids.Patch(ctx, job.OwnerID, docstore.Document{
		identitystore.FieldPrintStatus:  string(identitymodels.PrintStatusPrinted),
		identitystore.FieldPrintedBadge: true,
		identitystore.FieldPrintedAt:    now,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark badge printed")
	}

	s.passes.SyncAfterMutation(ctx, job.OwnerID)
	s.metrics.IncTransition(string(models.ActionMarkPrinted))
	s.emit(ctx, audit.Event{
		IdentityID: job.OwnerID.String(),
		JobID:      jobID.String(),
		Actor:      actor,
		Action:     audit.ActionPrintCompleted,
		Outcome:    audit.OutcomeApplied,
	})
	return s.Get(ctx, jobID)
}

// transition loads the job and validates the requested step against the
// transition table, recording rejections.
func (s *Service) transition(ctx context.Context, jobID uuid.UUID, action models.Action, role models.Role, actor string) (*models.Job, error) {
	job, err := s.jobs.Find(ctx, jobID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "print job not found")
	}
	if _, err := models.Next(job.Status, action, role); err != nil {
		s.metrics.IncRejected()
		s.emit(ctx, audit.Event{
			IdentityID: job.OwnerID.String(),
			JobID:      jobID.String(),
			Actor:      actor,
			Action:     string(action),
			Outcome:    audit.OutcomeRejected,
		})
		return nil, err
	}
	return job, nil
}

// resolvePassURL follows the request-time fallback chain: the URL already
// stored on the identity, else a freshly ensured pass. If both fail the job
// is created with an empty URL rather than blocking the request.
func (s *Service) resolvePassURL(ctx context.Context, ident *identitymodels.Identity) string {
	if ident.PassURL != "" {
		return ident.PassURL
	}
	ref, err := s.passes.Ensure(ctx, ident.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "could not resolve pass url for print job",
			"error", err,
			"identity_id", ident.ID.String(),
		)
		return ""
	}
	return ref.URL
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
