package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chefpass/internal/pass/models"
	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/platform/httputil"
	"chefpass/pkg/requestcontext"
)

// Service defines the pass operations the handler exposes.
type Service interface {
	Ensure(ctx context.Context, identityID uuid.UUID) (models.Ref, error)
	GetPublic(ctx context.Context, token string) (*models.PublicPass, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/identities/{id}/pass", h.HandleEnsure)
	r.Get("/v/{token}", h.HandleGetPublic)
}

// PublicPassResponse is the redacted public view. Optional fields are
// omitted, never blank.
type PublicPassResponse struct {
	DisplayName    string    `json:"displayName"`
	Category       string    `json:"category,omitempty"`
	Email          string    `json:"email,omitempty"`
	WaitlistNumber *int      `json:"waitlistNumber,omitempty"`
	WantsGigs      bool      `json:"wantsGigs,omitempty"`
	WantsSell      bool      `json:"wantsSell,omitempty"`
	FarmConnect    bool      `json:"farmConnect,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (h *Handler) HandleEnsure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid identity id"))
		return
	}

	ref, err := h.service.Ensure(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "ensure pass failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ref)
}

func (h *Handler) HandleGetPublic(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	pass, err := h.service.GetPublic(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PublicPassResponse{
		DisplayName:    pass.DisplayName,
		Category:       pass.Category,
		Email:          pass.Email,
		WaitlistNumber: pass.WaitlistNumber,
		WantsGigs:      pass.WantsGigs,
		WantsSell:      pass.WantsSell,
		FarmConnect:    pass.FarmConnect,
		CreatedAt:      pass.CreatedAt,
		UpdatedAt:      pass.UpdatedAt,
	})
}
