package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
)

type Config struct {
	Port                int           `env:"PORT"                  envDefault:"8080"`
	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	Issuer   string        `env:"GATEWAY_ISSUER"    envDefault:"http://localhost:8080"`
	TokenTTL time.Duration `env:"GATEWAY_TOKEN_TTL" envDefault:"24h"`

	// Empty paths keep the accounts, pepper and signing key in memory only.
	DatabaseFile   string `env:"GATEWAY_DATABASE_FILE"`
	PepperFile     string `env:"GATEWAY_PEPPER_FILE"`
	SigningKeyFile string `env:"GATEWAY_SIGNING_KEY_FILE"`

	StrictLimit   httpx.RateLimitConfig `envPrefix:"RATELIMIT_STRICT_"`
	ModerateLimit httpx.RateLimitConfig `envPrefix:"RATELIMIT_MODERATE_"`
	PublicLimit   httpx.RateLimitConfig `envPrefix:"RATELIMIT_PUBLIC_"`
}

// LoadConfig reads the environment. Rate limits start from the httpx
// profiles and only the variables that are set override them.
func LoadConfig() (Config, error) {
	cfg := Config{
		StrictLimit:   httpx.StrictLimit,
		ModerateLimit: httpx.ModerateLimit,
		PublicLimit:   httpx.PublicLimit,
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("GATEWAY_TOKEN_TTL must be positive"))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD must be positive"))
	}
	for name, l := range map[string]httpx.RateLimitConfig{
		"STRICT":   c.StrictLimit,
		"MODERATE": c.ModerateLimit,
		"PUBLIC":   c.PublicLimit,
	} {
		if !l.Valid() {
			errs = append(errs, fmt.Errorf("RATELIMIT_%s_* must all be positive", name))
		}
	}
	return errors.Join(errs...)
}
