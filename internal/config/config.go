package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultAddr            = ":8080"
	defaultEnvironment     = EnvDevelopment
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultLocationTimeout = 10 * time.Second
	defaultViewIdleTTL     = 30 * time.Minute
	defaultViewsPerOwner   = 8
	defaultMaxViews        = 10000
	defaultLogLevel        = "info"
	defaultLocale          = "en"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Session     SessionConfig
	Views       ViewConfig
	Log         LogConfig
	Locale      LocaleConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr         string
	SiteURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SessionConfig holds the cookie codec keys. Values prefixed with "base64:" are
// decoded, anything else is used verbatim.
type SessionConfig struct {
	HashKey      []byte
	BlockKey     []byte
	CookieSecure bool
}

// ViewConfig controls view activations.
type ViewConfig struct {
	LocationTimeout time.Duration
	IdleTTL         time.Duration
	// MaxPerOwner and MaxActive bound live activations per session and per process.
	MaxPerOwner int
	MaxActive   int
}

type LogConfig struct {
	Level string
	File  string
}

type LocaleConfig struct {
	Default string
}

// IsProduction reports whether the production environment is selected.
func (c Config) IsProduction() bool { return c.Environment == EnvProduction }

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and an explicit map, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	addr := stringWithDefault(lookup, "TOURDOXA_HTTP_ADDR", "")
	if addr == "" {
		if port := stringWithDefault(lookup, "PORT", ""); port != "" {
			addr = ":" + port
		} else {
			addr = defaultAddr
		}
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "TOURDOXA_ENV", defaultEnvironment)),
		Server: ServerConfig{
			Addr:         addr,
			SiteURL:      stringWithDefault(lookup, "TOURDOXA_SITE_URL", ""),
			ReadTimeout:  durationWithDefault(lookup, "TOURDOXA_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "TOURDOXA_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "TOURDOXA_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Session: SessionConfig{
			HashKey:  keyBytes(stringWithDefault(lookup, "TOURDOXA_SESSION_HASH_KEY", "")),
			BlockKey: keyBytes(stringWithDefault(lookup, "TOURDOXA_SESSION_BLOCK_KEY", "")),
		},
		Views: ViewConfig{
			LocationTimeout: durationWithDefault(lookup, "TOURDOXA_LOCATION_TIMEOUT", defaultLocationTimeout),
			IdleTTL:         durationWithDefault(lookup, "TOURDOXA_VIEW_IDLE_TTL", defaultViewIdleTTL),
			MaxPerOwner:     intWithDefault(lookup, "TOURDOXA_VIEW_MAX_PER_SESSION", defaultViewsPerOwner),
			MaxActive:       intWithDefault(lookup, "TOURDOXA_VIEW_MAX_ACTIVE", defaultMaxViews),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "TOURDOXA_LOG_LEVEL", defaultLogLevel)),
			File:  stringWithDefault(lookup, "TOURDOXA_LOG_FILE", ""),
		},
		Locale: LocaleConfig{
			Default: strings.ToLower(stringWithDefault(lookup, "TOURDOXA_DEFAULT_LOCALE", defaultLocale)),
		},
	}
	cfg.Session.CookieSecure = cfg.IsProduction()

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	switch cfg.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		missing = append(missing, "Environment")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		missing = append(missing, "Server.Addr")
	}
	if cfg.IsProduction() && len(cfg.Session.HashKey) < 32 {
		missing = append(missing, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		missing = append(missing, "Session.BlockKey")
	}
	if cfg.Views.LocationTimeout <= 0 {
		missing = append(missing, "Views.LocationTimeout")
	}
	if cfg.Views.IdleTTL <= 0 {
		missing = append(missing, "Views.IdleTTL")
	}
	if cfg.Views.MaxPerOwner <= 0 {
		missing = append(missing, "Views.MaxPerOwner")
	}
	if cfg.Views.MaxActive < cfg.Views.MaxPerOwner {
		missing = append(missing, "Views.MaxActive")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		missing = append(missing, "Log.Level")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func keyBytes(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if enc, ok := strings.CutPrefix(raw, "base64:"); ok {
		if decoded, err := base64.StdEncoding.DecodeString(enc); err == nil {
			return decoded
		}
	}
	return []byte(raw)
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
		// Bare integers are seconds.
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}
