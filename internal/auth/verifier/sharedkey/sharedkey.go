package sharedkey

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth/verifier"
)

const verifierName = "shared-key"

// Verifier checks a static shared secret carried in a request header.
// The configured secret may be either the plaintext key or a bcrypt hash
// of it; hashed secrets keep the plaintext out of the environment.
type Verifier struct {
	header string
	secret string
	hashed bool
}

func New(header, secret string) (*Verifier, error) {
	if header == "" {
		return nil, errors.New("shared key header name missing")
	}
	if secret == "" {
		return nil, errors.New("shared key secret missing")
	}

	return &Verifier{
		header: header,
		secret: secret,
		hashed: strings.HasPrefix(secret, "$2a$") || strings.HasPrefix(secret, "$2b$"),
	}, nil
}

func (v *Verifier) Name() string {
	return verifierName
}

func (v *Verifier) Verify(_ context.Context, header http.Header) (*auth.Identity, error) {
	key := header.Get(v.header)
	if key == "" {
		return nil, fmt.Errorf("%s header missing: %w", v.header, verifier.ErrForbidden)
	}

	if v.hashed {
		if err := bcrypt.CompareHashAndPassword([]byte(v.secret), []byte(key)); err != nil {
			return nil, fmt.Errorf("key mismatch: %w", verifier.ErrForbidden)
		}
	} else if subtle.ConstantTimeCompare([]byte(v.secret), []byte(key)) != 1 {
		return nil, fmt.Errorf("key mismatch: %w", verifier.ErrForbidden)
	}

	return &auth.Identity{Authorized: true}, nil
}
