package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chefpass/internal/identity/models"
	"chefpass/internal/identity/service"
	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/platform/httputil"
	"chefpass/pkg/requestcontext"
	s "chefpass/pkg/string"
)

// Service defines the identity operations the handler exposes.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Register(ctx context.Context, displayName string) (*models.Identity, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Identity, error)
	SaveDisplayName(ctx context.Context, id uuid.UUID, displayName string) error
	SaveEmail(ctx context.Context, id uuid.UUID, email string) (int, error)
	SaveCategory(ctx context.Context, id uuid.UUID, category string) error
	SavePreferences(ctx context.Context, id uuid.UUID, prefs service.Preferences) error
	MarkWelcomeDone(ctx context.Context, id uuid.UUID) error
	AssignWaitlistNumber(ctx context.Context, id uuid.UUID) (int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/identities", h.HandleRegister)
	r.Get("/identities/{id}", h.HandleGet)
	r.Put("/identities/{id}/name", h.HandleSaveName)
	r.Put("/identities/{id}/email", h.HandleSaveEmail)
	r.Put("/identities/{id}/category", h.HandleSaveCategory)
	r.Put("/identities/{id}/preferences", h.HandleSavePreferences)
	r.Post("/identities/{id}/welcome", h.HandleMarkWelcome)
	r.Post("/identities/{id}/waitlist", h.HandleAssignWaitlist)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	s.TrimStrings(&req.DisplayName)

	ident, err := h.service.Register(ctx, req.DisplayName)
	if err != nil {
		h.logger.ErrorContext(ctx, "register identity failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toIdentityResponse(ident))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	ident, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIdentityResponse(ident))
}

func (h *Handler) HandleSaveName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SaveNameRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	s.TrimStrings(&req.DisplayName)
	if err := h.service.SaveDisplayName(ctx, id, req.DisplayName); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSaveEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SaveEmailRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	s.TrimStrings(&req.Email)
	number, err := h.service.SaveEmail(ctx, id, req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "save email failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WaitlistResponse{WaitlistNumber: number})
}

func (h *Handler) HandleSaveCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SaveCategoryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	s.TrimStrings(&req.Category)
	if err := h.service.SaveCategory(ctx, id, req.Category); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[SavePreferencesRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	prefs := service.Preferences{
		WantsGigs:   req.WantsGigs,
		WantsSell:   req.WantsSell,
		FarmConnect: req.FarmConnect,
	}
	if err := h.service.SavePreferences(ctx, id, prefs); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMarkWelcome(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkWelcomeDone(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAssignWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, ok := h.identityID(w, r)
	if !ok {
		return
	}
	number, err := h.service.AssignWaitlistNumber(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "assign waitlist number failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, WaitlistResponse{WaitlistNumber: number})
}

func (h *Handler) identityID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid identity id"))
		return uuid.UUID{}, false
	}
	return id, true
}
