package verifier

import (
	"context"
	"errors"
	"net/http"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth"
)

// Rejection reasons. Handlers map these onto HTTP status codes; the
// underlying cause stays in the logs and is never echoed to the caller.
var (
	// ErrUnauthorized covers a missing, malformed, or invalid bearer token.
	ErrUnauthorized = errors.New("invalid or missing token")

	// ErrForbidden covers a missing or mismatched shared key.
	ErrForbidden = errors.New("access key rejected")
)

// Verifier validates the credential carried by a request and returns the
// resulting identity. Implementations must return identity facts only and
// must not perform any request handling themselves.
type Verifier interface {
	// Name returns the verifier identifier (e.g. "shared-key", "google-oidc").
	Name() string

	// Verify extracts this verifier's credential from the request headers
	// and validates it. On failure the returned error wraps ErrUnauthorized
	// or ErrForbidden.
	Verify(ctx context.Context, header http.Header) (*auth.Identity, error)
}
