package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultSignupPath is the endpoint path used when none is configured.
	DefaultSignupPath = "/api/auth/signup"

	// RequestIDHeader carries a per-call identifier to the backend.
	RequestIDHeader = "X-Request-ID"

	tracerName = "github.com/vango-dev/signup/pkg/auth"

	// maxErrorBody bounds how much of a failed response is kept in StatusError.
	maxErrorBody = 4 << 10
)

// HTTPClient is a Service that talks JSON over HTTP.
type HTTPClient struct {
	baseURL    string
	signupPath string
	httpClient *http.Client
	tracer     trace.Tracer
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithSignupPath overrides the signup endpoint path.
func WithSignupPath(path string) ClientOption {
	return func(c *HTTPClient) {
		if path != "" {
			c.signupPath = path
		}
	}
}

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout on the underlying client.
// Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithTracerProvider sets the tracer provider used for client spans.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *HTTPClient) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewHTTPClient creates a signup client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signupPath: DefaultSignupPath,
		httpClient: &http.Client{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full signup URL.
func (c *HTTPClient) Endpoint() string {
	path := c.signupPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Signup posts req to the backend and decodes the response code.
func (c *HTTPClient) Signup(ctx context.Context, req SignupRequest) (SignupResponse, error) {
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, "auth.Signup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("http.url", c.Endpoint()),
			attribute.String("signup.request_id", requestID),
		),
	)
	defer span.End()

	resp, err := c.do(ctx, requestID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SignupResponse{}, err
	}
	span.SetAttributes(attribute.String("signup.code", resp.MCode))
	return resp, nil
}

func (c *HTTPClient) do(ctx context.Context, requestID string, req SignupRequest) (SignupResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("auth: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return SignupResponse{}, fmt.Errorf("auth: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return SignupResponse{}, fmt.Errorf("auth: post signup: %w", err)
	}
	defer httpResp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return SignupResponse{}, &StatusError{
			StatusCode: httpResp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	var out SignupResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return SignupResponse{}, fmt.Errorf("auth: decode response: %w", err)
	}
	return out, nil
}
