package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/vango-dev/signup/internal/config"
	"github.com/vango-dev/signup/internal/errors"
	"github.com/vango-dev/signup/pkg/auth/sessionauth"
	"github.com/vango-dev/signup/pkg/responses"
	"github.com/vango-dev/signup/pkg/signup"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeS3 struct {
	body string
	err  error
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "signup.json", `{"auth":{"baseURL":"https://auth.example.com","timeout":"5s"}}`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Auth.SignupPath != config.DefaultSignupPath {
		t.Errorf("SignupPath = %q, want default", cfg.Auth.SignupPath)
	}

	bad := writeFile(t, dir, "bad.json", `{"auth":{}}`)
	_, err = loadConfig(bad)
	var se *errors.SignupError
	if !stderrors.As(err, &se) || se.Code != "S103" {
		t.Errorf("loadConfig(missing baseURL) error = %v, want S103", err)
	}
}

func TestLoadTableLayers(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "messages.yaml", "EMAIL_SENT: From file.\nUSER_EXISTS: Taken.\n")

	mc := config.MessagesConfig{
		File: file,
		S3:   config.S3Config{Bucket: "b", Key: "messages.yaml"},
	}
	table, err := loadTable(context.Background(), mc, &fakeS3{body: "EMAIL_SENT: From S3.\n"}, discardLogger())
	if err != nil {
		t.Fatalf("loadTable() error = %v", err)
	}

	if msg, _ := table.Lookup(responses.CodeEmailSent); msg != "From S3." {
		t.Errorf("EMAIL_SENT = %q, want the S3 message", msg)
	}
	if msg, _ := table.Lookup(responses.CodeUserExists); msg != "Taken." {
		t.Errorf("USER_EXISTS = %q, want the file message", msg)
	}
	if _, ok := table.Lookup(responses.CodeSignupSuccess); !ok {
		t.Error("built-in SIGNUP_SUCCESS missing")
	}
}

func TestLoadTableErrors(t *testing.T) {
	tests := []struct {
		name   string
		mc     config.MessagesConfig
		getter responses.ObjectGetter
	}{
		{"missing file", config.MessagesConfig{File: filepath.Join(t.TempDir(), "nope.yaml")}, nil},
		{"s3 failure", config.MessagesConfig{S3: config.S3Config{Bucket: "b", Key: "k"}}, &fakeS3{err: stderrors.New("denied")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadTable(context.Background(), tt.mc, tt.getter, discardLogger())
			var se *errors.SignupError
			if !stderrors.As(err, &se) || se.Code != "S301" {
				t.Errorf("loadTable() error = %v, want S301", err)
			}
		})
	}
}

func TestNewProviderNone(t *testing.T) {
	p, closer, err := newProvider(context.Background(), config.SessionConfig{Provider: config.SessionProviderNone}, discardLogger())
	if err != nil || p != nil || closer != nil {
		t.Errorf("newProvider(none) = %v, %v, %v", p, closer != nil, err)
	}
}

func TestNewProviderRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := newProvider(context.Background(), config.SessionConfig{
		Provider:  config.SessionProviderRedis,
		RedisAddr: addr,
	}, discardLogger())
	var se *errors.SignupError
	if !stderrors.As(err, &se) || se.Code != "S202" {
		t.Errorf("newProvider() error = %v, want S202", err)
	}
}

func TestNewProviderRedisCookie(t *testing.T) {
	mr := miniredis.RunT(t)
	sc := config.SessionConfig{
		Provider:       config.SessionProviderRedis,
		RedisAddr:      mr.Addr(),
		CookieName:     "sid",
		CookieDomain:   ".example.com",
		CookiePath:     "/app",
		CookieSecure:   true,
		CookieSameSite: config.SameSiteNone,
	}
	p, closer, err := newProvider(context.Background(), sc, discardLogger())
	if err != nil {
		t.Fatalf("newProvider() error = %v", err)
	}
	defer closer()

	want := sessionauth.Cookie{
		Name:     "sid",
		Domain:   ".example.com",
		Path:     "/app",
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	if got := p.(*sessionauth.Provider).Cookie(); got != want {
		t.Errorf("Cookie() = %+v, want %+v", got, want)
	}

	// A stale cookie is cleared with the configured attributes.
	req := httptest.NewRequest(http.MethodGet, "http://example.com/app/signup", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "stale"})
	rec := httptest.NewRecorder()
	p.Middleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "sid" || c.Domain != "example.com" || c.Path != "/app" || !c.Secure || c.MaxAge != -1 {
		t.Errorf("cleared cookie = %+v", c)
	}
}

func TestSessionCookieSameSite(t *testing.T) {
	tests := []struct {
		in   string
		want http.SameSite
	}{
		{config.SameSiteLax, http.SameSiteLaxMode},
		{config.SameSiteStrict, http.SameSiteStrictMode},
		{config.SameSiteNone, http.SameSiteNoneMode},
		{"", http.SameSiteLaxMode},
	}
	for _, tt := range tests {
		if got := sessionCookie(config.SessionConfig{CookieSameSite: tt.in}).SameSite; got != tt.want {
			t.Errorf("sessionCookie(%q).SameSite = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveSessionRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	sc := config.SessionConfig{
		Provider:    config.SessionProviderRedis,
		RedisAddr:   mr.Addr(),
		RedisPrefix: config.DefaultRedisPrefix,
		CookieName:  config.DefaultCookieName,
	}
	p, closer, err := newProvider(context.Background(), sc, discardLogger())
	if err != nil {
		t.Fatalf("newProvider() error = %v", err)
	}
	defer closer()

	store := sessionauth.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		sessionauth.WithRedisPrefix(sc.RedisPrefix))
	err = store.Save(context.Background(), &sessionauth.StoredSession{
		ID:        "s1",
		UserID:    "u1",
		Name:      "Jane",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	d := resolveSession(p, sc.CookieName, "s1", "/home")
	if !d.Redirect || d.Target != "/home" || d.Principal.ID != "u1" {
		t.Errorf("resolveSession(s1) = %+v", d)
	}
	if d := resolveSession(p, sc.CookieName, "unknown", "/home"); d.Redirect {
		t.Errorf("resolveSession(unknown) = %+v, want no redirect", d)
	}
}

func TestResolveSessionJWT(t *testing.T) {
	sc := config.SessionConfig{
		Provider:   config.SessionProviderJWT,
		CookieName: "token",
		JWTSecret:  "0123456789abcdef0123456789abcdef",
		JWTIssuer:  "signup-tests",
	}
	p, _, err := newProvider(context.Background(), sc, discardLogger())
	if err != nil {
		t.Fatalf("newProvider() error = %v", err)
	}

	token, err := p.(*sessionauth.JWTProvider).Sign(sessionauth.Claims{
		Email: "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	d := resolveSession(p, sc.CookieName, token, "/")
	if !d.Redirect || displayName(d.Principal) != "jane@example.com" {
		t.Errorf("resolveSession(token) = %+v", d)
	}
	if d := resolveSession(p, sc.CookieName, "garbage", "/"); d.Redirect {
		t.Errorf("resolveSession(garbage) = %+v, want no redirect", d)
	}
	if d := resolveSession(nil, sc.CookieName, token, "/"); d.Redirect {
		t.Errorf("resolveSession(nil provider) = %+v, want no redirect", d)
	}
}

func TestControllerOptionsPolicy(t *testing.T) {
	cfg := config.New()
	cfg.Behavior.ClearMessageLoadingOnError = true
	a := &app{cfg: cfg, logger: discardLogger()}

	ctrl := signup.New(nil, nil, a.controllerOptions()...)
	if ctrl.Policy() != signup.ClearMessageLoading {
		t.Errorf("Policy() = %v, want %v", ctrl.Policy(), signup.ClearMessageLoading)
	}
}

func TestServerOptionsMetrics(t *testing.T) {
	cfg := config.New()
	cfg.Auth.BaseURL = "https://auth.example.com"
	a := &app{cfg: cfg, logger: discardLogger()}

	withMetrics := len(serverOptions(a))
	cfg.Metrics.Enabled = false
	without := len(serverOptions(a))
	if withMetrics != without+1 {
		t.Errorf("options with metrics = %d, without = %d", withMetrics, without)
	}
}

func TestCodesCommand(t *testing.T) {
	dir := t.TempDir()
	msgs := writeFile(t, dir, "messages.yaml", "EMAIL_SENT: Check your inbox.\n")
	cfgPath := writeFile(t, dir, "signup.json", `{"messages":{"file":"`+filepath.ToSlash(msgs)+`"}}`)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"codes", "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("codes error = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "CODE") {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "Check your inbox.") {
		t.Errorf("file message missing:\n%s", got)
	}
	if !strings.Contains(got, string(responses.CodeUserExists)) {
		t.Errorf("built-in code missing:\n%s", got)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--short"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != version {
		t.Errorf("version = %q, want %q", got, version)
	}
}

func TestPrintError(t *testing.T) {
	errors.DisableColors()
	defer errors.EnableColors()

	var buf bytes.Buffer
	printError(&buf, errors.New("S301").WithDetail("Failed to load messages.yaml"))
	if !strings.Contains(buf.String(), "Failed to load messages.yaml") {
		t.Errorf("printError() = %q", buf.String())
	}

	buf.Reset()
	printError(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "plain") {
		t.Errorf("printError() = %q", buf.String())
	}
}

func TestAppClose(t *testing.T) {
	closed := 0
	a := &app{logger: discardLogger(), closers: []func() error{
		func() error { closed++; return nil },
		func() error { closed++; return stderrors.New("already closed") },
	}}
	a.Close()
	if closed != 2 {
		t.Errorf("closers run = %d, want 2", closed)
	}
}

func TestNewServiceEndpoint(t *testing.T) {
	cfg := config.New()
	cfg.Auth.BaseURL = "https://auth.example.com/"
	svc, err := newService(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := svc.Endpoint(), "https://auth.example.com"+config.DefaultSignupPath; got != want {
		t.Errorf("Endpoint() = %q, want %q", got, want)
	}
}
