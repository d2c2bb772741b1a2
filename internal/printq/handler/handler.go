package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chefpass/internal/platform/device"
	"chefpass/internal/printq/models"
	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/platform/httputil"
	"chefpass/pkg/platform/middleware/approver"
	"chefpass/pkg/requestcontext"
)

// Service defines the print workflow operations the handler exposes.
type Service interface {
	Request(ctx context.Context, ownerID uuid.UUID) (*models.Job, error)
	Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	Approve(ctx context.Context, jobID uuid.UUID, approverID string) (*models.Job, error)
	Deny(ctx context.Context, jobID uuid.UUID, approverID string) (*models.Job, error)
	MarkPrinted(ctx context.Context, jobID uuid.UUID, role models.Role, actor string) (*models.Job, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterOwner mounts the unprivileged owner-side route.
func (h *Handler) RegisterOwner(r chi.Router) {
	r.Post("/identities/{id}/print-requests", h.HandleRequest)
}

// RegisterApprover mounts the privileged routes; the caller wraps them in
// approver auth middleware.
func (h *Handler) RegisterApprover(r chi.Router) {
	r.Get("/print-jobs/{id}", h.HandleGet)
	r.Post("/print-jobs/{id}/approve", h.HandleApprove)
	r.Post("/print-jobs/{id}/deny", h.HandleDeny)
	r.Post("/print-jobs/{id}/printed", h.HandleMarkPrinted)
}

// JobResponse is the print job view returned to the queue UI.
type JobResponse struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"ownerId"`
	DisplayName    string     `json:"displayName"`
	Email          string     `json:"email,omitempty"`
	Category       string     `json:"category,omitempty"`
	WaitlistNumber *int       `json:"waitlistNumber,omitempty"`
	PassURL        string     `json:"passUrl,omitempty"`
	RequestedVia   string     `json:"requestedVia,omitempty"`
	Status         string     `json:"status"`
	RequestedAt    time.Time  `json:"requestedAt"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	DeniedAt       *time.Time `json:"deniedAt,omitempty"`
	DeniedBy       string     `json:"deniedBy,omitempty"`
	PrintedAt      *time.Time `json:"printedAt,omitempty"`
}

func toJobResponse(job *models.Job) JobResponse {
	resp := JobResponse{
		ID:             job.ID.String(),
		OwnerID:        job.OwnerID.String(),
		DisplayName:    job.DisplayName,
		Email:          job.Email,
		Category:       job.Category,
		WaitlistNumber: job.WaitlistNumber,
		PassURL:        job.PassURL,
		RequestedVia:   job.RequestedVia,
		Status:         string(job.Status),
		RequestedAt:    job.RequestedAt,
		ApprovedBy:     job.ApprovedBy,
		DeniedBy:       job.DeniedBy,
	}
	if !job.ApprovedAt.IsZero() {
		t := job.ApprovedAt
		resp.ApprovedAt = &t
	}
	if !job.DeniedAt.IsZero() {
		t := job.DeniedAt
		resp.DeniedAt = &t
	}
	if !job.PrintedAt.IsZero() {
		t := job.PrintedAt
		resp.PrintedAt = &t
	}
	return resp
}

func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ownerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid identity id"))
		return
	}

	ctx = requestcontext.WithDevice(ctx, device.Describe(r.UserAgent()))
	job, err := h.service.Request(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "print request failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toJobResponse(job))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.jobID(w, r)
	if !ok {
		return
	}
	job, err := h.service.Get(r.Context(), jobID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJobResponse(job))
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *Handler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Deny)
}

func (h *Handler) HandleMarkPrinted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID, ok := h.jobID(w, r)
	if !ok {
		return
	}

	job, err := h.service.MarkPrinted(ctx, jobID, models.RoleApprover, approver.GetApproverID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "mark printed failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJobResponse(job))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, string) (*models.Job, error)) {
	ctx := r.Context()
	jobID, ok := h.jobID(w, r)
	if !ok {
		return
	}

	job, err := op(ctx, jobID, approver.GetApproverID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "print transition failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toJobResponse(job))
}

func (h *Handler) jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid job id"))
		return uuid.UUID{}, false
	}
	return id, true
}
