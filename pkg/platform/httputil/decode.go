package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "chefpass/pkg/domain-errors"
	"chefpass/pkg/validation"
)

// DecodeJSON decodes a JSON request body into the target type and runs its
// struct-tag validation. Returns the decoded value and true on success.
// On failure, writes an error response and returns nil, false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := validation.Validate(&req); err != nil {
		logger.WarnContext(ctx, "request body failed validation",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return &req, true
}
