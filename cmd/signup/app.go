package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/signup/internal/config"
	"github.com/vango-dev/signup/internal/errors"
	"github.com/vango-dev/signup/pkg/auth"
	"github.com/vango-dev/signup/pkg/auth/sessionauth"
	"github.com/vango-dev/signup/pkg/responses"
	"github.com/vango-dev/signup/pkg/signup"
)

const redisPingTimeout = 3 * time.Second

// app holds the collaborators built from signup.json.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	service  auth.Service
	table    *responses.Table
	provider auth.Provider
	closers  []func() error
}

// loadConfig reads and validates the configuration. An empty path means
// signup.json in the working directory.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load(".")
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	svc, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	a.service = svc

	a.table, err = loadTable(ctx, cfg.Messages, nil, logger)
	if err != nil {
		return nil, err
	}

	provider, closer, err := newProvider(ctx, cfg.Session, a.logger)
	if err != nil {
		return nil, err
	}
	a.provider = provider
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	return a, nil
}

// Close releases provider connections.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func (a *app) controllerOptions() []signup.Option {
	opts := []signup.Option{signup.WithLogger(a.logger.With("component", "signup"))}
	if a.cfg.Behavior.ClearMessageLoadingOnError {
		opts = append(opts, signup.WithErrorPolicy(signup.ClearMessageLoading))
	}
	return opts
}

func newService(cfg *config.Config) (*auth.HTTPClient, error) {
	timeout, err := cfg.AuthTimeout()
	if err != nil {
		return nil, errors.New("S103").WithDetail("auth.timeout is not a valid duration").Wrap(err)
	}
	return auth.NewHTTPClient(cfg.Auth.BaseURL,
		auth.WithSignupPath(cfg.Auth.SignupPath),
		auth.WithTimeout(timeout),
		auth.WithTracerProvider(otel.GetTracerProvider()),
	), nil
}

// loadTable builds the message table: defaults, then the file, then the S3
// object. getter overrides the S3 client built from the config.
func loadTable(ctx context.Context, mc config.MessagesConfig, getter responses.ObjectGetter, logger *slog.Logger) (*responses.Table, error) {
	table := responses.Default()

	if mc.File != "" {
		msgs, err := responses.LoadFile(mc.File)
		if err != nil {
			return nil, errors.New("S301").
				WithDetail("Failed to load " + mc.File).
				Wrap(err)
		}
		table.Merge(msgs)
		logger.Debug("messages loaded", "source", mc.File, "count", len(msgs))
	}

	if mc.S3.Enabled() {
		if getter == nil {
			client, err := responses.NewS3Client(ctx, mc.S3.Region, mc.S3.Endpoint)
			if err != nil {
				return nil, errors.New("S301").
					WithDetail("Failed to configure the S3 client").
					Wrap(err)
			}
			getter = client
		}
		msgs, err := responses.LoadS3(ctx, getter, mc.S3.Bucket, mc.S3.Key)
		if err != nil {
			return nil, errors.New("S301").
				WithDetail("Failed to load s3://" + mc.S3.Bucket + "/" + mc.S3.Key).
				WithSuggestion("Check messages.s3 and the AWS credentials in the environment").
				Wrap(err)
		}
		table.Merge(msgs)
		logger.Debug("messages loaded", "source", "s3://"+mc.S3.Bucket+"/"+mc.S3.Key, "count", len(msgs))
	}

	return table, nil
}

// newProvider builds the current-user provider. The returned closer, if
// any, releases its connections.
func newProvider(ctx context.Context, sc config.SessionConfig, logger *slog.Logger) (auth.Provider, func() error, error) {
	switch sc.Provider {
	case config.SessionProviderRedis:
		client := redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		store := sessionauth.NewRedisStore(client, sessionauth.WithRedisPrefix(sc.RedisPrefix))

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = client.Close()
			return nil, nil, errors.New("S202").
				WithDetail("Redis at " + sc.RedisAddr + " did not answer").
				Wrap(err)
		}
		return sessionauth.New(store,
			sessionauth.WithCookie(sessionCookie(sc)),
			sessionauth.WithLogger(logger.With("component", "session")),
		), client.Close, nil

	case config.SessionProviderJWT:
		return sessionauth.NewJWTProvider([]byte(sc.JWTSecret),
			sessionauth.WithIssuer(sc.JWTIssuer),
			sessionauth.WithTokenCookie(sc.CookieName),
		), nil, nil

	default:
		return nil, nil, nil
	}
}

func sessionCookie(sc config.SessionConfig) sessionauth.Cookie {
	c := sessionauth.Cookie{
		Name:     sc.CookieName,
		Domain:   sc.CookieDomain,
		Path:     sc.CookiePath,
		Secure:   sc.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	switch sc.CookieSameSite {
	case config.SameSiteStrict:
		c.SameSite = http.SameSiteStrictMode
	case config.SameSiteNone:
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
