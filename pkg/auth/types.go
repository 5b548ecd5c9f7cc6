package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnauthorized is returned when a request carries no valid identity.
	ErrUnauthorized = errors.New("unauthorized: authentication required")

	// ErrSessionExpired indicates the session is no longer valid due to expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionRevoked indicates the session is no longer valid due to revocation.
	ErrSessionRevoked = errors.New("session revoked")
)

// Principal represents the authenticated identity.
// Intentionally minimal, with no catch-all claims map.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`

	Roles    []string `json:"roles,omitempty"`
	TenantID string   `json:"tenant_id,omitempty"`

	SessionID string `json:"session_id,omitempty"`

	ExpiresAtUnixMs int64 `json:"expires_at_unix_ms"`
}

// Expired reports whether the principal has an expiry in the past.
// A zero expiry never expires.
func (p Principal) Expired(now time.Time) bool {
	return p.ExpiresAtUnixMs > 0 && now.UnixMilli() >= p.ExpiresAtUnixMs
}

// Provider resolves the current user of an HTTP request.
type Provider interface {
	// Middleware validates HTTP requests and populates context.
	Middleware() func(http.Handler) http.Handler

	// Principal extracts identity from validated request context.
	Principal(ctx context.Context) (Principal, bool)
}

// SignupRequest is the payload sent to the backend to create an account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse is the backend's answer to a signup request.
type SignupResponse struct {
	MCode string `json:"mCode"`
}

// Service creates accounts.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (SignupResponse, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, req SignupRequest) (SignupResponse, error)

// Signup calls f.
func (f ServiceFunc) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	return f(ctx, req)
}

// StatusError is returned by HTTPClient when the backend answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("auth: backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("auth: backend returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type principalContextKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
