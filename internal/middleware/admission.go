package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth/verifier"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
)

// unexported, collision-proof context key
type identityContextKeyType struct{}

var identityKey = identityContextKeyType{}

// IdentityFromContext extracts the verified caller identity from context.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*auth.Identity)
	return id, ok
}

// Admission gates every request through the configured verifier. A
// rejected request is answered immediately and never reaches a handler.
type Admission struct {
	Verifier verifier.Verifier
}

func NewAdmission(v verifier.Verifier) *Admission {
	return &Admission{Verifier: v}
}

func (a *Admission) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Run the configured verifier against the request headers
		identity, err := a.Verifier.Verify(r.Context(), r.Header)
		if err != nil {
			status, detail := rejectionStatus(err)

			logger.Warn("request rejected", map[string]any{
				"verifier": a.Verifier.Name(),
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   status,
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status_code": status,
				"detail":      detail,
			})
			return
		}

		// 2. Attach identity to context
		ctx := context.WithValue(r.Context(), identityKey, identity)

		// 3. Continue request
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rejectionStatus maps a verifier error to the client-facing status and
// detail. The detail is deliberately short; verification internals stay
// in the logs.
func rejectionStatus(err error) (int, string) {
	if errors.Is(err, verifier.ErrForbidden) {
		return http.StatusForbidden, verifier.ErrForbidden.Error()
	}
	return http.StatusUnauthorized, verifier.ErrUnauthorized.Error()
}
