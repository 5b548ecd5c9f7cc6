package sessionauth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vango-dev/signup/pkg/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signedToken(t *testing.T, p *JWTProvider, sub string, exp time.Time) string {
	t.Helper()
	token, err := p.Sign(Claims{
		Email: sub + "@example.com",
		Name:  "Test User",
		SID:   "sid-" + sub,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return token
}

func TestJWTParse(t *testing.T) {
	p := NewJWTProvider(testSecret, WithIssuer("signup-tests"))
	token := signedToken(t, p, "u1", time.Now().Add(time.Hour))

	claims, err := p.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Subject != "u1" || claims.Issuer != "signup-tests" || claims.SID != "sid-u1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTParseRejects(t *testing.T) {
	p := NewJWTProvider(testSecret, WithIssuer("signup-tests"))

	other := NewJWTProvider([]byte("another-secret-another-secret-xx"), WithIssuer("signup-tests"))
	wrongIssuer := NewJWTProvider(testSecret, WithIssuer("someone-else"))

	noSubject, err := p.Sign(Claims{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", signedToken(t, other, "u1", time.Now().Add(time.Hour)), ErrInvalidToken},
		{"wrong issuer", signedToken(t, wrongIssuer, "u1", time.Now().Add(time.Hour)), ErrInvalidToken},
		{"expired", signedToken(t, p, "u1", time.Now().Add(-time.Hour)), auth.ErrSessionExpired},
		{"missing subject", noSubject, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Parse(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestJWTParseRejectsOtherAlgorithms(t *testing.T) {
	p := NewJWTProvider(testSecret)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse(HS512) error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTMiddleware(t *testing.T) {
	p := NewJWTProvider(testSecret, WithTokenCookie("access"))
	token := signedToken(t, p, "u1", time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		wantID string
	}{
		{"none", func(r *http.Request) {}, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access", Value: token}) }, "u1"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "u1"},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, "u1"},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/signup", nil)
			tt.setup(req)

			var got auth.Principal
			var ok bool
			p.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = p.Principal(r.Context())
			})).ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantID == "" {
				if ok {
					t.Errorf("expected no principal, got %+v", got)
				}
				return
			}
			if !ok || got.ID != tt.wantID || got.Email != "u1@example.com" {
				t.Errorf("Principal() = %+v, %v", got, ok)
			}
			if got.ExpiresAtUnixMs == 0 {
				t.Error("ExpiresAtUnixMs not set")
			}
		})
	}
}
