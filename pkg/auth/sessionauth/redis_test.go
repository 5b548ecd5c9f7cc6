package sessionauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/vango-dev/signup/pkg/auth"
)

func newTestRedisStore(t *testing.T, opts ...RedisStoreOption) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, opts...), mr
}

func TestRedisStoreSaveGet(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	session := &StoredSession{
		ID:        "s1",
		UserID:    "u1",
		Email:     "jane@example.com",
		Name:      "Jane Doe",
		Roles:     []string{"member"},
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !mr.Exists(DefaultRedisPrefix + "s1") {
		t.Fatalf("key %q not written", DefaultRedisPrefix+"s1")
	}
	if ttl := mr.TTL(DefaultRedisPrefix + "s1"); ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v, want (0, 1h]", ttl)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(session, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisStoreGetCorrupt(t *testing.T) {
	store, mr := newTestRedisStore(t, WithRedisPrefix("x:"))
	if err := mr.Set("x:bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "bad"); err == nil {
		t.Error("expected decode error")
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, &StoredSession{ID: "s1", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrSessionNotFound", err)
	}
}

func TestRedisStoreSaveExpiredDeletes(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, &StoredSession{ID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, &StoredSession{ID: "s1", ExpiresAt: time.Now().Add(-time.Second)}); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(DefaultRedisPrefix + "s1") {
		t.Error("expired save should delete the key")
	}
}

func TestRedisStoreValidate(t *testing.T) {
	store, _ := newTestRedisStore(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	tests := []struct {
		name    string
		session StoredSession
		want    error
	}{
		{"no expiry", StoredSession{}, nil},
		{"future", StoredSession{ExpiresAt: now.Add(time.Second)}, nil},
		{"expired", StoredSession{ExpiresAt: now}, auth.ErrSessionExpired},
		{"revoked", StoredSession{Revoked: true, ExpiresAt: now.Add(time.Hour)}, auth.ErrSessionRevoked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Validate(context.Background(), &tt.session)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRedisStoreWithProvider(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	if err := store.Save(ctx, &StoredSession{ID: "live", UserID: "u9", Email: "u9@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	provider := New(store)
	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "live"})
	_, seen := runMiddleware(provider, req)

	p, ok := provider.Principal(seen.Context())
	if !ok || p.ID != "u9" {
		t.Errorf("Principal() = %+v, %v", p, ok)
	}
}
