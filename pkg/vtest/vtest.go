package vtest

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/vango-dev/signup/pkg/auth"
)

// CtxBuilder allows fluent construction of test contexts.
type CtxBuilder struct {
	ctx context.Context
}

// NewCtx creates a new context builder for testing.
//
// Example:
//
//	ctx := vtest.NewCtx().WithPrincipal(auth.Principal{ID: "123"}).Build()
func NewCtx() *CtxBuilder {
	return &CtxBuilder{ctx: context.Background()}
}

// WithPrincipal marks the context as belonging to a signed-in user.
func (b *CtxBuilder) WithPrincipal(p auth.Principal) *CtxBuilder {
	b.ctx = auth.WithPrincipal(b.ctx, p)
	return b
}

// WithValue attaches an arbitrary value.
func (b *CtxBuilder) WithValue(key, val any) *CtxBuilder {
	b.ctx = context.WithValue(b.ctx, key, val)
	return b
}

// Build returns the final context for use in tests.
func (b *CtxBuilder) Build() context.Context {
	return b.ctx
}

// CtxWithPrincipal is a shorthand for NewCtx().WithPrincipal(p).Build().
func CtxWithPrincipal(p auth.Principal) context.Context {
	return NewCtx().WithPrincipal(p).Build()
}

// StaticProvider is an auth.Provider that reports the same principal for
// every request. A nil principal means every request is anonymous.
type StaticProvider struct {
	principal *auth.Principal
}

var _ auth.Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider for p.
func NewStaticProvider(p *auth.Principal) *StaticProvider {
	return &StaticProvider{principal: p}
}

// Middleware stores the principal in every request context.
func (s *StaticProvider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.principal != nil {
				r = r.WithContext(auth.WithPrincipal(r.Context(), *s.principal))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Principal reads the principal stored in ctx.
func (s *StaticProvider) Principal(ctx context.Context) (auth.Principal, bool) {
	return auth.PrincipalFromContext(ctx)
}

// ExpectContains fails the test if body does not contain substr.
func ExpectContains(t testing.TB, body, substr string) {
	t.Helper()
	if !strings.Contains(body, substr) {
		t.Errorf("expected output to contain %q\nGot:\n%s", substr, body)
	}
}

// ExpectNotContains fails the test if body contains substr.
func ExpectNotContains(t testing.TB, body, substr string) {
	t.Helper()
	if strings.Contains(body, substr) {
		t.Errorf("expected output NOT to contain %q\nGot:\n%s", substr, body)
	}
}
