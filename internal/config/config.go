package config

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/signup/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "signup.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultSignupPath is the default signup endpoint on the auth backend.
	DefaultSignupPath = "/api/auth/signup"

	// DefaultRedirectTarget is where authenticated visitors are sent.
	DefaultRedirectTarget = "/"

	// DefaultCookieName is the default session cookie name.
	DefaultCookieName = "session"

	// DefaultRedisPrefix is the default key prefix for stored sessions.
	DefaultRedisPrefix = "signup:session:"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "signup"
)

// Session cookie SameSite modes.
const (
	SameSiteLax    = "lax"
	SameSiteStrict = "strict"
	SameSiteNone   = "none"
)

// Session provider names.
const (
	SessionProviderNone  = "none"
	SessionProviderRedis = "redis"
	SessionProviderJWT   = "jwt"
)

// Config represents the complete signup.json configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Auth contains authentication backend configuration.
	Auth AuthConfig `json:"auth,omitempty"`

	// Session contains current-user provider configuration.
	Session SessionConfig `json:"session,omitempty"`

	// Messages contains response message table sources.
	Messages MessagesConfig `json:"messages,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Behavior contains controller behavior switches.
	Behavior BehaviorConfig `json:"behavior,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// RedirectTarget is where already authenticated visitors are redirected.
	RedirectTarget string `json:"redirectTarget,omitempty"`
}

// AuthConfig contains authentication backend settings.
type AuthConfig struct {
	// BaseURL is the authentication backend base URL.
	BaseURL string `json:"baseURL,omitempty"`

	// SignupPath is appended to BaseURL for signup requests.
	SignupPath string `json:"signupPath,omitempty"`

	// Timeout is the HTTP client timeout (e.g., "10s"). Zero means none.
	Timeout string `json:"timeout,omitempty"`
}

// SessionConfig contains current-user provider settings.
type SessionConfig struct {
	// Provider is one of "none", "redis" or "jwt".
	Provider string `json:"provider,omitempty"`

	// CookieName is the cookie carrying the session id or token.
	CookieName string `json:"cookieName,omitempty"`

	// CookieDomain and CookiePath must match the attributes the session
	// cookie was issued with, so a rejected session can be cleared.
	CookieDomain string `json:"cookieDomain,omitempty"`
	CookiePath   string `json:"cookiePath,omitempty"`

	// CookieSecure marks cleared cookies Secure on plain HTTP, for use
	// behind a TLS-terminating proxy.
	CookieSecure bool `json:"cookieSecure,omitempty"`

	// CookieSameSite is one of "lax", "strict" or "none". Default: "lax".
	CookieSameSite string `json:"cookieSameSite,omitempty"`

	// RedisAddr is the Redis address for the redis provider.
	RedisAddr string `json:"redisAddr,omitempty"`

	// RedisPrefix is the key prefix for stored sessions.
	RedisPrefix string `json:"redisPrefix,omitempty"`

	// JWTSecret is the HS256 secret for the jwt provider.
	JWTSecret string `json:"jwtSecret,omitempty"`

	// JWTIssuer is the expected issuer for the jwt provider.
	JWTIssuer string `json:"jwtIssuer,omitempty"`
}

// MessagesConfig contains response message table sources.
type MessagesConfig struct {
	// File is a YAML file mapping response codes to messages.
	File string `json:"file,omitempty"`

	// S3 points at a YAML object with the same format.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config locates a message table object in S3.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Key      string `json:"key,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Enabled reports whether an S3 source is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != "" && s.Key != ""
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records submission metrics.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// BehaviorConfig contains controller behavior switches.
type BehaviorConfig struct {
	// ClearMessageLoadingOnError clears messageLoading when signup fails.
	ClearMessageLoadingOnError bool `json:"clearMessageLoadingOnError,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			RedirectTarget: DefaultRedirectTarget,
		},
		Auth: AuthConfig{
			SignupPath: DefaultSignupPath,
		},
		Session: SessionConfig{
			Provider:       SessionProviderNone,
			CookieName:     DefaultCookieName,
			CookiePath:     "/",
			CookieSameSite: SameSiteLax,
			RedisPrefix:    DefaultRedisPrefix,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for signup.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("S101").
				WithDetail("No signup.json found in " + filepath.Dir(path)).
				WithSuggestion("Pass --config or create signup.json")
		}
		return nil, errors.New("S102").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("S102").
			WithDetail("Failed to parse signup.json: " + err.Error()).
			WithSuggestion("Check that signup.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.RedirectTarget == "" {
		c.Server.RedirectTarget = DefaultRedirectTarget
	}
	if c.Auth.SignupPath == "" {
		c.Auth.SignupPath = DefaultSignupPath
	}
	if c.Session.Provider == "" {
		c.Session.Provider = SessionProviderNone
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = DefaultCookieName
	}
	if c.Session.CookiePath == "" {
		c.Session.CookiePath = "/"
	}
	if c.Session.CookieSameSite == "" {
		c.Session.CookieSameSite = SameSiteLax
	}
	if c.Session.RedisPrefix == "" {
		c.Session.RedisPrefix = DefaultRedisPrefix
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("S103").
			WithDetail("server.port must be between 0 and 65535")
	}

	if c.Auth.BaseURL == "" {
		return errors.New("S103").
			WithDetail("auth.baseURL is required").
			WithSuggestion("Set auth.baseURL to the authentication backend, e.g. https://auth.example.com")
	}
	u, err := url.Parse(c.Auth.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("S103").
			WithDetail("auth.baseURL must be an absolute URL, got " + strconv.Quote(c.Auth.BaseURL))
	}

	if _, err := c.AuthTimeout(); err != nil {
		return errors.New("S103").
			WithDetail("auth.timeout is not a valid duration").
			Wrap(err)
	}

	switch c.Session.Provider {
	case SessionProviderNone:
	case SessionProviderRedis:
		if c.Session.RedisAddr == "" {
			return errors.New("S103").
				WithDetail("session.redisAddr is required for the redis provider")
		}
	case SessionProviderJWT:
		if c.Session.JWTSecret == "" {
			return errors.New("S103").
				WithDetail("session.jwtSecret is required for the jwt provider")
		}
	default:
		return errors.New("S103").
			WithDetail("session.provider must be one of none, redis, jwt; got " + strconv.Quote(c.Session.Provider))
	}

	switch c.Session.CookieSameSite {
	case SameSiteLax, SameSiteStrict:
	case SameSiteNone:
		if !c.Session.CookieSecure {
			return errors.New("S103").
				WithDetail("session.cookieSameSite none requires session.cookieSecure").
				WithSuggestion("Browsers drop SameSite=None cookies that are not Secure")
		}
	default:
		return errors.New("S103").
			WithDetail("session.cookieSameSite must be one of lax, strict, none; got " + strconv.Quote(c.Session.CookieSameSite))
	}

	if c.Messages.S3.Bucket != "" && c.Messages.S3.Key == "" {
		return errors.New("S103").
			WithDetail("messages.s3.key is required when messages.s3.bucket is set")
	}

	return nil
}

// AuthTimeout parses auth.timeout. An empty value means no timeout.
func (c *Config) AuthTimeout() (time.Duration, error) {
	if c.Auth.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Auth.Timeout)
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}
