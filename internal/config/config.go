// Package config loads service configuration from a file, the environment
// and an optional .env file.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rohannair2022/unscene-uofthacks13/cache"
	"github.com/rohannair2022/unscene-uofthacks13/observe"
	"github.com/rohannair2022/unscene-uofthacks13/resilience"
	"github.com/rohannair2022/unscene-uofthacks13/secret"
	"github.com/rohannair2022/unscene-uofthacks13/upstream"
)

// EnvPrefix prefixes every environment override, e.g. WORLDVIEW_CACHE_BACKEND.
const EnvPrefix = "WORLDVIEW"

// Config holds all service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upstream   UpstreamConfig   `mapstructure:"upstream"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Observe    ObserveConfig    `mapstructure:"observe"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

type ServerConfig struct {
	Address           string        `mapstructure:"address"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins       []string      `mapstructure:"cors_origins"`
	// MaxHeapBytes enables the memory health check with this heap ceiling.
	MaxHeapBytes uint64 `mapstructure:"max_heap_bytes"`
}

type UpstreamConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SiteURL     string        `mapstructure:"site_url"`
	SiteName    string        `mapstructure:"site_name"`
}

type CacheConfig struct {
	Backend    string      `mapstructure:"backend"`
	MaxEntries int         `mapstructure:"max_entries"`
	Redis      RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type ResilienceConfig struct {
	Timeout   time.Duration   `mapstructure:"timeout"`
	Circuit   CircuitConfig   `mapstructure:"circuit"`
	Bulkhead  BulkheadConfig  `mapstructure:"bulkhead"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retry     RetryConfig     `mapstructure:"retry"`
}

type CircuitConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

type BulkheadConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	MaxWait       time.Duration `mapstructure:"max_wait"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Rate    float64       `mapstructure:"rate"`
	Burst   int           `mapstructure:"burst"`
	MaxWait time.Duration `mapstructure:"max_wait"`
}

type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
}

type ObserveConfig struct {
	ServiceName string        `mapstructure:"service_name"`
	LogLevel    string        `mapstructure:"log_level"`
	Tracing     TracingConfig `mapstructure:"tracing"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Exporter  string  `mapstructure:"exporter"`
	Endpoint  string  `mapstructure:"endpoint"`
	SamplePct float64 `mapstructure:"sample_pct"`
}

type MetricsConfig struct {
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
}

// AuthConfig gates the insight endpoints. When enabled, callers present one
// of APIKeys in Header or a JWT signed with JWT.Secret.
type AuthConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	Header  string    `mapstructure:"header"`
	APIKeys []string  `mapstructure:"api_keys"`
	JWT     JWTConfig `mapstructure:"jwt"`
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":3001")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_heap_bytes", 0)

	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.base_url", upstream.DefaultBaseURL)
	v.SetDefault("upstream.model", upstream.DefaultModel)
	v.SetDefault("upstream.temperature", upstream.DefaultTemperature)
	v.SetDefault("upstream.max_tokens", upstream.DefaultMaxTokens)
	v.SetDefault("upstream.timeout", upstream.DefaultTimeout)
	v.SetDefault("upstream.site_url", upstream.DefaultSiteURL)
	v.SetDefault("upstream.site_name", upstream.DefaultSiteName)

	v.SetDefault("cache.backend", cache.BackendMemory)
	v.SetDefault("cache.max_entries", 0)
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", cache.DefaultRedisPrefix)

	v.SetDefault("resilience.timeout", 45*time.Second)
	v.SetDefault("resilience.circuit.enabled", true)
	v.SetDefault("resilience.circuit.max_failures", 5)
	v.SetDefault("resilience.circuit.reset_timeout", 30*time.Second)
	v.SetDefault("resilience.bulkhead.enabled", true)
	v.SetDefault("resilience.bulkhead.max_concurrent", 10)
	v.SetDefault("resilience.bulkhead.max_wait", 2*time.Second)
	v.SetDefault("resilience.rate_limit.enabled", true)
	v.SetDefault("resilience.rate_limit.rate", 5.0)
	v.SetDefault("resilience.rate_limit.burst", 10)
	v.SetDefault("resilience.rate_limit.max_wait", time.Second)
	v.SetDefault("resilience.retry.max_attempts", 1)
	v.SetDefault("resilience.retry.initial_delay", 250*time.Millisecond)

	v.SetDefault("observe.service_name", "worldview")
	v.SetDefault("observe.log_level", "info")
	v.SetDefault("observe.tracing.exporter", "none")
	v.SetDefault("observe.tracing.sample_pct", 1.0)
	v.SetDefault("observe.metrics.exporter", "prometheus")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.header", "X-API-Key")
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "")
	v.SetDefault("auth.jwt.audience", "")
}

// Load reads configuration. A .env file in the working directory is loaded
// into the environment first without overriding variables already set.
// With an empty path, worldview.{yaml,json,toml} is looked up in . and
// ./config and may be absent. Secret references are resolved and the
// result is validated.
func Load(ctx context.Context, path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	resolver, err := secret.DefaultRegistry.Resolver(true)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveSecrets(ctx, resolver); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names used by existing deployments.
	_ = v.BindEnv("upstream.api_key", EnvPrefix+"_UPSTREAM_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("server.address", EnvPrefix+"_SERVER_ADDRESS", "PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("worldview")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Server.Address = normalizeAddress(cfg.Server.Address)
	return &cfg, nil
}

// normalizeAddress turns a bare port such as PORT=3001 into ":3001".
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

// ResolveSecrets expands ${VAR} and secretref: values in credential fields.
func (c *Config) ResolveSecrets(ctx context.Context, r *secret.Resolver) error {
	fields := []struct {
		name string
		v    *string
	}{
		{"upstream.api_key", &c.Upstream.APIKey},
		{"cache.redis.password", &c.Cache.Redis.Password},
		{"auth.jwt.secret", &c.Auth.JWT.Secret},
	}
	for _, f := range fields {
		if *f.v == "" {
			continue
		}
		resolved, err := r.ResolveValue(ctx, *f.v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.name, err)
		}
		*f.v = strings.TrimSpace(resolved)
	}
	for i, k := range c.Auth.APIKeys {
		resolved, err := r.ResolveValue(ctx, k)
		if err != nil {
			return fmt.Errorf("config: auth.api_keys[%d]: %w", i, err)
		}
		c.Auth.APIKeys[i] = strings.TrimSpace(resolved)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("config: server.address is required")
	}
	if strings.TrimSpace(c.Upstream.APIKey) == "" {
		return fmt.Errorf("config: %w (set OPENROUTER_API_KEY)", upstream.ErrMissingAPIKey)
	}
	if c.Upstream.MaxTokens < 0 || c.Upstream.Temperature < 0 {
		return errors.New("config: upstream.max_tokens and upstream.temperature must be >= 0")
	}
	if err := c.Cache.Policy().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	r := c.Resilience
	if r.Circuit.MaxFailures < 0 || r.Bulkhead.MaxConcurrent < 0 || r.RateLimit.Rate < 0 || r.RateLimit.Burst < 0 {
		return errors.New("config: resilience limits must be >= 0")
	}
	if r.Retry.MaxAttempts < 0 {
		return errors.New("config: resilience.retry.max_attempts must be >= 0")
	}
	obs := c.Observe.Observe("")
	if err := obs.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 && c.Auth.JWT.Secret == "" {
		return errors.New("config: auth.enabled requires auth.api_keys or auth.jwt.secret")
	}
	return nil
}

// Client returns the upstream client configuration.
func (c UpstreamConfig) Client() upstream.Config {
	return upstream.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: upstream.Float64(c.Temperature),
		MaxTokens:   c.MaxTokens,
		Timeout:     c.Timeout,
		SiteURL:     c.SiteURL,
		SiteName:    c.SiteName,
	}
}

// Policy returns the cache policy.
func (c CacheConfig) Policy() cache.Policy {
	return cache.Policy{
		Backend:    c.Backend,
		MaxEntries: c.MaxEntries,
		Redis: cache.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// Guard returns the resilience guard configuration.
func (c ResilienceConfig) Guard() resilience.GuardConfig {
	return resilience.GuardConfig{
		Timeout: c.Timeout,
		Circuit: resilience.CircuitBreakerConfig{
			MaxFailures:  c.Circuit.MaxFailures,
			ResetTimeout: c.Circuit.ResetTimeout,
		},
		Bulkhead: resilience.BulkheadConfig{
			MaxConcurrent: c.Bulkhead.MaxConcurrent,
			MaxWait:       c.Bulkhead.MaxWait,
		},
		RateLimit: resilience.RateLimiterConfig{
			Rate:    c.RateLimit.Rate,
			Burst:   c.RateLimit.Burst,
			MaxWait: c.RateLimit.MaxWait,
		},
		Retry: resilience.RetryConfig{
			MaxAttempts:  c.Retry.MaxAttempts,
			InitialDelay: c.Retry.InitialDelay,
		},
		DisableCircuit:   !c.Circuit.Enabled,
		DisableBulkhead:  !c.Bulkhead.Enabled,
		DisableRateLimit: !c.RateLimit.Enabled,
	}
}

// Observe returns the telemetry configuration. Exporter "none" disables a
// signal.
func (c ObserveConfig) Observe(version string) observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Tracing.Exporter != "" && c.Tracing.Exporter != "none",
			Exporter:  c.Tracing.Exporter,
			Endpoint:  c.Tracing.Endpoint,
			SamplePct: c.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Metrics.Exporter != "" && c.Metrics.Exporter != "none",
			Exporter: c.Metrics.Exporter,
			Endpoint: c.Metrics.Endpoint,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}
