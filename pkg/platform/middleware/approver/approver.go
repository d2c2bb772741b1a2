// Package approver gates the privileged print-workflow endpoints. Approvers
// authenticate with a signed bearer token whose subject identifies them;
// that identity is what approve/deny transitions stamp onto records.
package approver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chefpass/pkg/requestcontext"
	"chefpass/pkg/secrets"
)

// TokenAudience is the expected audience claim on approver tokens.
const TokenAudience = "chefpass-approver"

// StaticApproverID is the actor stamped on decisions made with the static
// fallback token, which carries no subject of its own.
const StaticApproverID = "static-approver"

type contextKeyApproverID struct{}

// GetApproverID retrieves the approver identifier from the context.
// Returns empty string if this is not an authenticated approver request.
func GetApproverID(ctx context.Context) string {
	if actorID, ok := ctx.Value(contextKeyApproverID{}).(string); ok {
		return actorID
	}
	return ""
}

// WithApproverID is exported for handler tests.
func WithApproverID(ctx context.Context, approverID string) context.Context {
	return context.WithValue(ctx, contextKeyApproverID{}, approverID)
}

// NewToken mints an approver bearer token. Used by cmd/tokengen and tests.
func NewToken(signingKey, approverID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   approverID,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}

// RequireApprover validates the bearer token and stores the approver ID on
// the context for audit attribution. A signed JWT is the primary credential;
// when staticTokenHash is non-empty, a bearer token matching that bcrypt
// hash is accepted as the shared fallback credential.
func RequireApprover(signingKey, staticTokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			approverID, ok := validate(signingKey, staticTokenHash, r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "approver token rejected",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"approver token required"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithApproverID(ctx, approverID)))
		})
	}
}

func validate(signingKey, staticTokenHash, authorization string) (string, bool) {
	raw, found := strings.CutPrefix(authorization, "Bearer ")
	if !found || raw == "" {
		return "", false
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(signingKey), nil
	}, jwt.WithAudience(TokenAudience), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		if staticTokenHash != "" && secrets.Verify(raw, staticTokenHash) == nil {
			return StaticApproverID, true
		}
		return "", false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
