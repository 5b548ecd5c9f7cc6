// Package middleware provides observability for the signup server.
//
// This package includes:
//   - Prometheus metrics for HTTP requests, signup submissions and live
//     connections
//   - OpenTelemetry tracing middleware for HTTP requests
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(
//	    middleware.WithNamespace("signup"),
//	    middleware.WithRegistry(reg),
//	)
//	r.Use(m.Handler)
//	ctrl := signup.New(client, table, signup.WithMetrics(m))
//
// Metrics collected (with the default namespace):
//   - signup_http_requests_total: requests by route, method and status
//   - signup_http_request_duration_seconds: request latency by route
//   - signup_submissions_total: Submit calls by outcome
//   - signup_submission_duration_seconds: Submit latency by outcome
//   - signup_live_connections: open live channels
//   - signup_live_errors_total: live channel errors by type
//
// Route labels use the chi route pattern, so path parameters never create
// new series.
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request and stores it in the
// request context, so spans started further down (the auth client's
// outgoing call) become its children:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("signup"),
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// The tracer comes from the global provider unless WithTracerProvider is
// used. Configure it in main() before starting the server.
package middleware
