package sessionauth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/signup/pkg/auth"
)

// DefaultCookieName is the cookie carrying the session ID.
const DefaultCookieName = "session"

// StoredSession is a session record as kept in the backing store.
type StoredSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles,omitempty"`
	TenantID  string    `json:"tenant_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked,omitempty"`
}

func (s *StoredSession) principal() auth.Principal {
	return auth.Principal{
		ID:              s.UserID,
		Email:           s.Email,
		Name:            s.Name,
		Roles:           s.Roles,
		TenantID:        s.TenantID,
		SessionID:       s.ID,
		ExpiresAtUnixMs: s.ExpiresAt.UnixMilli(),
	}
}

// SessionStore loads and checks sessions by ID.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*StoredSession, error)
	Validate(ctx context.Context, session *StoredSession) error
}

// Cookie describes the session cookie the provider reads, and expires
// when the session it names is rejected.
type Cookie struct {
	Name   string
	Domain string
	Path   string

	// Secure marks the expiring cookie Secure even on plain HTTP, for
	// deployments behind a TLS-terminating proxy.
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookie returns the cookie settings used when none are configured.
func DefaultCookie() Cookie {
	return Cookie{
		Name:     DefaultCookieName,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
}

// expired builds the Set-Cookie value that drops the session cookie.
// The attributes must match the ones the session was issued with or the
// browser keeps the original.
func (c Cookie) expired(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure || (r != nil && r.TLS != nil),
		SameSite: c.SameSite,
	}
}

// Provider resolves the current user from a session cookie and a
// SessionStore.
type Provider struct {
	store  SessionStore
	cookie Cookie
	logger *slog.Logger
}

var _ auth.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithCookie sets the session cookie. Empty Name and Path keep their
// defaults, and a zero SameSite means Lax.
func WithCookie(c Cookie) Option {
	return func(p *Provider) {
		def := DefaultCookie()
		if c.Name == "" {
			c.Name = def.Name
		}
		if c.Path == "" {
			c.Path = def.Path
		}
		if c.SameSite == 0 {
			c.SameSite = def.SameSite
		}
		p.cookie = c
	}
}

// WithLogger sets the logger used to report rejected sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a session provider backed by store.
func New(store SessionStore, opts ...Option) *Provider {
	p := &Provider{
		store:  store,
		cookie: DefaultCookie(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cookie returns the effective cookie settings.
func (p *Provider) Cookie() Cookie {
	return p.cookie
}

// Middleware loads the session named by the cookie. Requests without a
// usable session continue anonymously. The cookie is expired only when
// the store rejects the session, not when the store is unreachable.
func (p *Provider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(p.cookie.Name)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			stored, err := p.load(r.Context(), cookie.Value)
			switch {
			case err == nil:
			case rejected(err):
				p.logger.Debug("session rejected", "reason", err)
				http.SetCookie(w, p.cookie.expired(r))
				next.ServeHTTP(w, r)
				return
			default:
				p.logger.Warn("session lookup failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, stored)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (p *Provider) load(ctx context.Context, id string) (*StoredSession, error) {
	stored, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrSessionNotFound
	}
	if err := p.store.Validate(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Principal returns the identity of the session loaded by Middleware.
func (p *Provider) Principal(ctx context.Context) (auth.Principal, bool) {
	stored, ok := SessionFromContext(ctx)
	if !ok {
		return auth.Principal{}, false
	}
	return stored.principal(), true
}

func rejected(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, auth.ErrSessionExpired) ||
		errors.Is(err, auth.ErrSessionRevoked)
}

// SessionFromContext returns the stored session from context.
func SessionFromContext(ctx context.Context) (*StoredSession, bool) {
	if ctx == nil {
		return nil, false
	}
	stored, ok := ctx.Value(sessionContextKey{}).(*StoredSession)
	return stored, ok && stored != nil
}

type sessionContextKey struct{}
