package auth

// Credential scheme tags. A request carries at most one credential,
// extracted from its headers before verification.
const (
	SchemeSharedKey   = "shared-key"
	SchemeBearerToken = "bearer-token"
)

// Credential is the raw value pulled from a request header. It lives for
// one verification attempt and is never stored.
type Credential struct {
	Scheme string
	Value  string
}

// Identity is the result of a successful verification. It contains facts
// only, no decisions, and never outlives the request that produced it.
// Shared-key auth yields an Identity with no claims: the Authorized flag
// is all the scheme can assert.
type Identity struct {
	Authorized bool
	Subject    string // token "sub" claim, empty for shared-key auth
	Email      string // token "email" claim, if present
	Issuer     string
}
