package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	JWTIssuer       string        `mapstructure:"JWT_ISSUER"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`
	DefaultTenant   string        `mapstructure:"DEFAULT_TENANT"`
	BaseDomain      string        `mapstructure:"BASE_DOMAIN"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFile         string        `mapstructure:"LOG_FILE"`
	TenantCacheSize int           `mapstructure:"TENANT_CACHE_SIZE"`
	TenantCacheTTL  time.Duration `mapstructure:"TENANT_CACHE_TTL"`
	AuthzPolicyFile string        `mapstructure:"AUTHZ_POLICY_FILE"`
	AuthzMode       string        `mapstructure:"AUTHZ_MODE"`
	MigrationsDir   string        `mapstructure:"MIGRATIONS_DIR"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit       string        `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"JWT_SECRET", "JWT_ISSUER", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	"DEFAULT_TENANT", "BASE_DOMAIN", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FILE",
	"TENANT_CACHE_SIZE", "TENANT_CACHE_TTL", "AUTHZ_POLICY_FILE", "AUTHZ_MODE",
	"MIGRATIONS_DIR", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "BODY_LIMIT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_ISSUER", "hms")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "24h")
	v.SetDefault("DEFAULT_TENANT", "public")
	v.SetDefault("BASE_DOMAIN", "localhost")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TENANT_CACHE_SIZE", 1024)
	v.SetDefault("TENANT_CACHE_TTL", "5m")
	v.SetDefault("AUTHZ_MODE", "enforce")
	v.SetDefault("MIGRATIONS_DIR", "")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("BODY_LIMIT", "1M")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// A comma separated env value arrives as a single element.
	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	if len(cfg.CORSOrigins) == 0 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// devSecret signs tokens in development when JWT_SECRET is unset.
const devSecret = "development-only-secret-do-not-use"

// Secret returns the signing key, falling back to a fixed key in development.
func (c *Config) Secret() string {
	if c.JWTSecret == "" && c.IsDev() {
		return devSecret
	}
	return c.JWTSecret
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters, got %d", len(c.JWTSecret))
		}
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL and REFRESH_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return errors.New("REFRESH_TOKEN_TTL must not be shorter than ACCESS_TOKEN_TTL")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.DefaultTenant == "" {
		return errors.New("DEFAULT_TENANT must not be empty")
	}
	switch c.AuthzMode {
	case "enforce", "shadow", "disabled":
	default:
		return fmt.Errorf("AUTHZ_MODE must be \"enforce\", \"shadow\" or \"disabled\", got %q", c.AuthzMode)
	}
	if c.IsProduction() && c.AuthzMode != "enforce" {
		return errors.New("AUTHZ_MODE must be \"enforce\" in production")
	}
	return nil
}
