// Package auth defines the authentication collaborators used by the signup
// flow.
//
// Two roles are covered here:
//
//   - Service creates accounts. HTTPClient is the production implementation,
//     posting JSON to the backend's signup endpoint.
//   - Provider reports whether the current request already carries an
//     authenticated user. Implementations live in package sessionauth.
//
// Neither role owns sessions or tokens for the signup page. A Provider only
// reads state that an upstream login flow created.
//
// # Signup calls
//
//	client := auth.NewHTTPClient("https://auth.example.com",
//	    auth.WithSignupPath("/api/auth/signup"),
//	    auth.WithTimeout(10*time.Second),
//	)
//	resp, err := client.Signup(ctx, auth.SignupRequest{
//	    Name:     "Jane Doe",
//	    Email:    "jane@example.com",
//	    Password: "secret123",
//	})
//
// A non-2xx response is returned as *StatusError so callers can inspect the
// status code with errors.As.
//
// # Current user
//
// Provider middleware runs in the HTTP chain and stores its result in the
// request context. Principal reads it back:
//
//	r.Use(provider.Middleware())
//	...
//	if p, ok := provider.Principal(r.Context()); ok {
//	    // already signed in as p.Email
//	}
//
// WithPrincipal and PrincipalFromContext are available for providers that
// resolve a Principal directly.
package auth
