package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/config"
)

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	HTTP      HTTPConfig      `yaml:"http"`
	Site      SiteConfig      `yaml:"site"`
	Database  DatabaseConfig  `yaml:"database"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Redis     RedisConfig     `yaml:"redis"`
	Dify      DifyConfig      `yaml:"dify"`
	Goals     GoalsConfig     `yaml:"goals"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// SiteConfig points at the dashboard frontend that auth redirects land on.
type SiteConfig struct {
	URL string `yaml:"url"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	RetryBudget     int           `yaml:"retry_budget"`
}

type SupabaseConfig struct {
	URL            string `yaml:"url"`
	AnonKey        string `yaml:"anon_key"`
	ServiceRoleKey string `yaml:"service_role_key"`
	JWTSecret      string `yaml:"jwt_secret"`
}

type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DifyConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration `yaml:"timeout"`
}

type GoalsConfig struct {
	SaveTimeout         time.Duration `yaml:"save_timeout"`
	CompensateOnFailure bool          `yaml:"compensate_on_failure"`
	CompensationTimeout time.Duration `yaml:"compensation_timeout"`
}

type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
	TTL          time.Duration `yaml:"ttl"`
	StateTTL     time.Duration `yaml:"state_ttl"`
}

type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	SweepInterval     time.Duration `yaml:"sweep_interval"`
	VisitorTTL        time.Duration `yaml:"visitor_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	return LoadFile(getEnv("CONFIG_PATH", "./config/base.yaml"))
}

// LoadFile loads configuration from the given YAML file
func LoadFile(configPath string) (*Config, error) {
	provider, err := config.NewYAML(
		config.File(configPath),
		config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create config provider: %w", err)
	}

	var cfg Config
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("failed to populate config: %w", err)
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables if present
func (c *Config) overrideFromEnv() {
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.HTTP.Port)
	}
	if val := os.Getenv("SITE_URL"); val != "" {
		c.Site.URL = val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("SUPABASE_URL"); val != "" {
		c.Supabase.URL = val
	}
	if val := os.Getenv("SUPABASE_ANON_KEY"); val != "" {
		c.Supabase.AnonKey = val
	}
	if val := os.Getenv("SUPABASE_SERVICE_ROLE_KEY"); val != "" {
		c.Supabase.ServiceRoleKey = val
	}
	if val := os.Getenv("SUPABASE_JWT_SECRET"); val != "" {
		c.Supabase.JWTSecret = val
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}
	if val := os.Getenv("DIFY_API_KEY"); val != "" {
		c.Dify.APIKey = val
	}
	if val := os.Getenv("DIFY_BASE_URL"); val != "" {
		c.Dify.BaseURL = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}
}

func (c *Config) applyDefaults() {
	if c.Dify.BaseURL == "" {
		c.Dify.BaseURL = "https://api.dify.ai/v1"
	}
	if c.Goals.SaveTimeout <= 0 {
		c.Goals.SaveTimeout = 25 * time.Second
	}
	if c.Goals.CompensationTimeout <= 0 {
		c.Goals.CompensationTimeout = 10 * time.Second
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "achivo_session"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 7 * 24 * time.Hour
	}
	if c.Session.StateTTL <= 0 {
		c.Session.StateTTL = 10 * time.Minute
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 60
	}
	if c.RateLimit.SweepInterval <= 0 {
		c.RateLimit.SweepInterval = 5 * time.Minute
	}
	if c.RateLimit.VisitorTTL <= 0 {
		c.RateLimit.VisitorTTL = 5 * time.Minute
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Database.RetryBudget < 0 {
		c.Database.RetryBudget = 0
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
