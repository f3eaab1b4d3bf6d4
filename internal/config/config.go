package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is loaded once at startup from INKWELL_* environment variables.
type Config struct {
	Addr                string        `envconfig:"ADDR"`
	DBPath              string        `envconfig:"DB" default:"inkwell.db"`
	AllowOrigin         string        `envconfig:"ALLOW_ORIGIN" default:"http://localhost:3000"`
	IdentityURL         string        `envconfig:"IDENTITY_URL" default:"http://localhost:9094"`
	IdentityCredentials string        `envconfig:"IDENTITY_CREDENTIALS" default:"identity-credentials.json"`
	VerifyTimeout       time.Duration `envconfig:"VERIFY_TIMEOUT" default:"10s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("inkwell", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		} else {
			cfg.Addr = ":8080"
		}
	}
	return cfg, nil
}
