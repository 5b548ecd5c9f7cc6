package sessionauth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vango-dev/signup/pkg/auth"
)

// ErrInvalidToken is returned by Parse for tokens that fail verification.
var ErrInvalidToken = errors.New("sessionauth: invalid token")

// Claims is the JWT payload understood by JWTProvider.
type Claims struct {
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	TenantID string   `json:"tid,omitempty"`
	SID      string   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider is an auth.Provider that verifies HS256 tokens.
// Tokens are read from the configured cookie first, then from an
// "Authorization: Bearer" header.
type JWTProvider struct {
	secret     []byte
	issuer     string
	cookieName string
	leeway     time.Duration
}

var _ auth.Provider = (*JWTProvider)(nil)

// JWTOption configures a JWTProvider.
type JWTOption func(*JWTProvider)

// WithIssuer requires tokens to carry the given iss claim.
func WithIssuer(issuer string) JWTOption {
	return func(p *JWTProvider) {
		p.issuer = issuer
	}
}

// WithTokenCookie sets the cookie the token is read from.
func WithTokenCookie(name string) JWTOption {
	return func(p *JWTProvider) {
		if name != "" {
			p.cookieName = name
		}
	}
}

// WithLeeway allows for clock skew when checking exp and nbf.
func WithLeeway(d time.Duration) JWTOption {
	return func(p *JWTProvider) {
		p.leeway = d
	}
}

// NewJWTProvider creates a provider verifying tokens signed with secret.
func NewJWTProvider(secret []byte, opts ...JWTOption) *JWTProvider {
	p := &JWTProvider{
		secret:     secret,
		cookieName: DefaultCookieName,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Sign issues a token for claims. It is used by tests and tooling; the
// signup flow itself never mints tokens.
func (p *JWTProvider) Sign(claims Claims) (string, error) {
	if p.issuer != "" && claims.Issuer == "" {
		claims.Issuer = p.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Parse verifies a raw token and returns its claims.
func (p *JWTProvider) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(p.leeway),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, auth.ErrSessionExpired
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware verifies the request token and stores the principal in context.
func (p *JWTProvider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := p.tokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := p.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := auth.WithPrincipal(r.Context(), claims.principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Principal returns the principal stored by Middleware.
func (p *JWTProvider) Principal(ctx context.Context) (auth.Principal, bool) {
	return auth.PrincipalFromContext(ctx)
}

func (p *JWTProvider) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(p.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func (c *Claims) principal() auth.Principal {
	p := auth.Principal{
		ID:        c.Subject,
		Email:     c.Email,
		Name:      c.Name,
		Roles:     c.Roles,
		TenantID:  c.TenantID,
		SessionID: c.SID,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAtUnixMs = c.ExpiresAt.UnixMilli()
	}
	return p
}
