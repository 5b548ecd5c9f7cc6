package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(WithRegistry(reg), WithNamespace("test")), reg
}

func TestMetricsHandler(t *testing.T) {
	m, _ := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/users/1", "/users/2", "/boom", "/plain", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	tests := []struct {
		route, status string
		want          float64
	}{
		{"/users/{id}", "204", 2},
		{"/boom", "500", 1},
		{"/plain", "200", 1},
		{"unmatched", "404", 1},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(tt.route, http.MethodGet, tt.status))
		if got != tt.want {
			t.Errorf("requests_total{route=%q,status=%s} = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}
	if n := testutil.CollectAndCount(m.requestDuration); n != 4 {
		t.Errorf("request duration series = %d, want 4", n)
	}
}

func TestObserveSubmit(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.ObserveSubmit("success", 20*time.Millisecond)
	m.ObserveSubmit("success", 30*time.Millisecond)
	m.ObserveSubmit("invalid", 0)

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("submissions_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("invalid")); got != 1 {
		t.Errorf("submissions_total{invalid} = %v, want 1", got)
	}

	count, err := testutil.GatherAndCount(reg, "test_submission_duration_seconds")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("duration series = %d, want 2", count)
	}
}

func TestLiveMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.LiveOpened()
	m.LiveOpened()
	m.LiveClosed()
	if got := testutil.ToFloat64(m.liveConnections); got != 1 {
		t.Errorf("live_connections = %v, want 1", got)
	}

	m.LiveError(errors.New("i/o timeout"))
	m.LiveError(errors.New("websocket: close 1006"))
	if got := testutil.ToFloat64(m.liveErrors.WithLabelValues("timeout")); got != 1 {
		t.Errorf("live_errors_total{timeout} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.liveErrors.WithLabelValues("closed")); got != 1 {
		t.Errorf("live_errors_total{closed} = %v, want 1", got)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "unknown"},
		{errors.New("read: i/o Timeout"), "timeout"},
		{errors.New(`signup: unknown field: "x"`), "unknown_field"},
		{errors.New("invalid character 'x'"), "bad_message"},
		{errors.New("websocket: close 1001"), "closed"},
		{errors.New("websocket: bad handshake"), "websocket"},
		{errors.New("something else"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMetricsConfigDefaults(t *testing.T) {
	c := defaultMetricsConfig()
	if c.Namespace != "signup" {
		t.Errorf("Namespace = %q, want signup", c.Namespace)
	}
	WithNamespace("")(&c)
	if c.Namespace != "signup" {
		t.Error("empty namespace should keep default")
	}
	WithSubsystem("web")(&c)
	WithBuckets([]float64{1})(&c)
	WithConstLabels(prometheus.Labels{"env": "test"})(&c)
	if c.Subsystem != "web" || len(c.Buckets) != 1 || c.ConstLabels["env"] != "test" {
		t.Errorf("config = %+v", c)
	}
}
