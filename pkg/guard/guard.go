package guard

import (
	"context"
	"net/http"

	"github.com/vango-dev/signup/pkg/auth"
)

// DefaultTarget is where authenticated users are sent.
const DefaultTarget = "/"

// Decision is the outcome of resolving a guarded route.
type Decision struct {
	// Redirect is true when the user must be sent to Target.
	Redirect bool
	Target   string
	// Principal is the signed-in user when Redirect is true.
	Principal auth.Principal
}

// Resolve decides whether a request context belongs to a signed-in user.
// Non-HTTP callers (the terminal prompt) use it directly; HTTP routes use
// RedirectIfAuthenticated.
func Resolve(ctx context.Context, provider auth.Provider, target string) Decision {
	if target == "" {
		target = DefaultTarget
	}
	if provider == nil {
		return Decision{Target: target}
	}
	p, ok := provider.Principal(ctx)
	if !ok {
		return Decision{Target: target}
	}
	return Decision{Redirect: true, Target: target, Principal: p}
}

// RedirectIfAuthenticated returns middleware that answers 303 See Other to
// target when provider reports a current user. It must be mounted after
// provider.Middleware() so the identity is already in the request context.
func RedirectIfAuthenticated(provider auth.Provider, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Resolve(r.Context(), provider, target)
			if !d.Redirect {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
		})
	}
}
