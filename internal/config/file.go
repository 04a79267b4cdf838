package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay schema. Every field is optional; only
// set fields override the env-derived values.
type fileConfig struct {
	Port     *int    `yaml:"port"`
	LogLevel *string `yaml:"logLevel"`

	DBPath *string `yaml:"dbPath"`
	AppURL *string `yaml:"appUrl"`

	Stripe struct {
		SecretKey *string `yaml:"secretKey"`
		BaseURL   *string `yaml:"baseUrl"`
	} `yaml:"stripe"`

	HTTPTimeout *string `yaml:"httpTimeout"`
	CacheTTL    *string `yaml:"cacheTtl"`

	MaxRetries     *int    `yaml:"maxRetries"`
	InitialBackoff *string `yaml:"initialBackoff"`
	MaxConcurrency *int    `yaml:"maxConcurrency"`

	OTLPEndpoint *string `yaml:"otlpEndpoint"`

	JWTSecret    *string `yaml:"jwtSecret"`
	JWTAccessTTL *string `yaml:"jwtAccessTtl"`
}

// applyFile overlays values from a YAML file onto the config.
func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return err
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.DBPath != nil {
		c.DBPath = *fc.DBPath
	}
	if fc.AppURL != nil {
		c.AppURL = *fc.AppURL
	}
	if fc.Stripe.SecretKey != nil {
		c.StripeSecretKey = *fc.Stripe.SecretKey
	}
	if fc.Stripe.BaseURL != nil {
		c.StripeBaseURL = *fc.Stripe.BaseURL
	}
	if fc.MaxRetries != nil {
		c.MaxRetries = *fc.MaxRetries
	}
	if fc.MaxConcurrency != nil {
		c.MaxConcurrency = *fc.MaxConcurrency
	}
	if fc.OTLPEndpoint != nil {
		c.OTLPEndpoint = *fc.OTLPEndpoint
	}
	if fc.JWTSecret != nil {
		c.JWTSecret = *fc.JWTSecret
	}

	setDuration(&c.HTTPTimeout, fc.HTTPTimeout)
	setDuration(&c.CacheTTL, fc.CacheTTL)
	setDuration(&c.InitialBackoff, fc.InitialBackoff)
	setDuration(&c.JWTAccessTTL, fc.JWTAccessTTL)

	return nil
}

func setDuration(dst *time.Duration, v *string) {
	if v == nil {
		return
	}
	if d, err := time.ParseDuration(*v); err == nil {
		*dst = d
	}
}
