package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/payshield/risk-engine/internal/domain/fraud"
	"github.com/payshield/risk-engine/internal/domain/values"
	fraudsvc "github.com/payshield/risk-engine/internal/service/fraud"
)

// Config is the full application configuration. Precedence: struct defaults,
// then the optional YAML file, then RISK_-prefixed environment variables.
type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Redis     RedisConfig     `koanf:"redis"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Audit     AuditConfig     `koanf:"audit"`

	Engine   fraudsvc.Config `koanf:"engine"`
	Velocity VelocityConfig  `koanf:"velocity"`
	Geo      GeoConfig       `koanf:"geo"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`

	// EvaluationsPerUserPerMinute bounds how often one user can be scored,
	// enforced through the redis sliding window so it holds across
	// instances. Zero disables the per-user limit.
	EvaluationsPerUserPerMinute int `koanf:"evaluations_per_user_per_minute"`
}

type RedisConfig struct {
	URL      string `koanf:"url"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint"`
	SamplingRate  float64       `koanf:"sampling_rate"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
}

type AuditConfig struct {
	QueueSize    int           `koanf:"queue_size"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
	Stream       string        `koanf:"stream"`
}

// VelocityConfig holds the velocity ceilings handed to the engine through
// the velocity store.
type VelocityConfig struct {
	TransactionsPerHour int     `koanf:"transactions_per_hour"`
	TransactionsPerDay  int     `koanf:"transactions_per_day"`
	AmountPerHour       float64 `koanf:"amount_per_hour"`
	Currency            string  `koanf:"currency"`
}

// Limits converts the raw settings into the domain limits value.
func (v VelocityConfig) Limits() (*fraud.VelocityLimits, error) {
	amount, err := values.NewMoneyFromFloat(v.AmountPerHour, v.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid velocity amount limit: %w", err)
	}
	return &fraud.VelocityLimits{
		TransactionsPerHour: v.TransactionsPerHour,
		TransactionsPerDay:  v.TransactionsPerDay,
		AmountPerHour:       amount,
	}, nil
}

type GeoConfig struct {
	HighRiskCountries []string `koanf:"high_risk_countries"`
}

// Load reads configuration from defaults, configs/config.yaml when present,
// and the RISK_ environment. The engine section is validated here so a bad
// weight set fails the process at startup.
func Load() (*Config, error) {
	return LoadFrom("configs/config.yaml")
}

// LoadFrom behaves like Load with an explicit file path.
func LoadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// The config file is optional; environment-only deployments skip it.
	_ = k.Load(file.Provider(path), yaml.Parser())

	if err := k.Load(env.Provider("RISK_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "RISK_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails fast on an unusable configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit.EvaluationsPerUserPerMinute < 0 {
		return fmt.Errorf("per-user evaluation limit must not be negative, got %d",
			c.Server.RateLimit.EvaluationsPerUserPerMinute)
	}
	if c.Audit.QueueSize < 1 {
		return fmt.Errorf("audit queue size must be positive, got %d", c.Audit.QueueSize)
	}
	if c.Velocity.TransactionsPerHour < 1 || c.Velocity.TransactionsPerDay < 1 {
		return fmt.Errorf("velocity limits must be positive")
	}
	if _, err := c.Velocity.Limits(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond:           100,
				BurstSize:                   200,
				EvaluationsPerUserPerMinute: 120,
			},
		},
		Redis: RedisConfig{
			URL: "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			OTLPEndpoint:  "localhost:4317",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
		},
		Audit: AuditConfig{
			QueueSize:    1024,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			Stream:       "risk:audit",
		},
		Engine: fraudsvc.DefaultConfig(),
		Velocity: VelocityConfig{
			TransactionsPerHour: 10,
			TransactionsPerDay:  50,
			AmountPerHour:       5000,
			Currency:            values.USD,
		},
		Geo: GeoConfig{
			HighRiskCountries: []string{"KP", "IR", "SY", "CU"},
		},
	}
}
