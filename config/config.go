// Package config loads the estimator settings: the company block printed on
// quotes, the default pricing version, the fee schedule and quote numbering.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"renovestimate/services"
)

// Config is the root of estimator.yaml.
type Config struct {
	Company services.CompanyInfo `yaml:"company"`
	Pricing PricingConfig        `yaml:"pricing"`
	Quotes  QuotesConfig         `yaml:"quotes"`
}

// PricingConfig selects the rate book and fee schedule.
type PricingConfig struct {
	DefaultVersion string               `yaml:"default_version"`
	Fees           services.FeeSchedule `yaml:"fees"`
}

// QuotesConfig controls quote numbering and listing.
type QuotesConfig struct {
	Prefix    string `yaml:"prefix"`
	ListLimit int    `yaml:"list_limit"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Company: services.CompanyInfo{
			Name: "Rénovation & Construction",
		},
		Pricing: PricingConfig{
			DefaultVersion: string(services.PricingWizard),
			Fees:           services.DefaultFeeSchedule(),
		},
		Quotes: QuotesConfig{
			Prefix:    services.DefaultQuotePrefix,
			ListLimit: 50,
		},
	}
}

// Load reads path over the defaults, then applies the .env files and the
// ESTIMATOR_* environment overrides. A missing config file or .env file is
// not an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ESTIMATOR_COMPANY_NAME"); v != "" {
		c.Company.Name = v
	}
	if v := os.Getenv("ESTIMATOR_COMPANY_EMAIL"); v != "" {
		c.Company.Email = v
	}
	if v := os.Getenv("ESTIMATOR_COMPANY_SIRET"); v != "" {
		c.Company.Siret = v
	}
	if v := os.Getenv("ESTIMATOR_PRICING_VERSION"); v != "" {
		c.Pricing.DefaultVersion = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("ESTIMATOR_VAT_RATE"); v != "" {
		if rate, err := cast.ToFloat64E(v); err == nil {
			c.Pricing.Fees.Taxes = rate
		}
	}
	if v := os.Getenv("ESTIMATOR_QUOTE_PREFIX"); v != "" {
		c.Quotes.Prefix = strings.ToUpper(strings.TrimSpace(v))
	}
	if v := os.Getenv("ESTIMATOR_LIST_LIMIT"); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			c.Quotes.ListLimit = n
		}
	}
}

var quotePrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,8}$`)

// Validate validates the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Company, validation.By(func(any) error {
			return validation.ValidateStruct(&c.Company,
				validation.Field(&c.Company.Name, validation.Required),
			)
		})),
		validation.Field(&c.Pricing),
		validation.Field(&c.Quotes),
	)
}

// Validate checks the pricing version and the fee fractions.
func (p PricingConfig) Validate() error {
	versions := make([]any, len(services.PricingVersions))
	for i, v := range services.PricingVersions {
		versions[i] = string(v)
	}
	fee := []validation.Rule{validation.Min(0.0), validation.Max(1.0)}
	f := &p.Fees
	return validation.ValidateStruct(&p,
		validation.Field(&p.DefaultVersion, validation.Required, validation.In(versions...)),
		validation.Field(&p.Fees, validation.By(func(any) error {
			return validation.ValidateStruct(f,
				validation.Field(&f.Architect, fee...),
				validation.Field(&f.Engineering, fee...),
				validation.Field(&f.ProjectManagement, fee...),
				validation.Field(&f.OfficialFees, fee...),
				validation.Field(&f.Inspection, fee...),
				validation.Field(&f.Permits, fee...),
				validation.Field(&f.Insurance, fee...),
				validation.Field(&f.Contingency, fee...),
				validation.Field(&f.Taxes, fee...),
				validation.Field(&f.TechnicalStudies, fee...),
				validation.Field(&f.Other, fee...),
			)
		})),
	)
}

// Validate checks the quote prefix and list size.
func (q QuotesConfig) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Prefix, validation.Required, validation.Match(quotePrefixPattern)),
		validation.Field(&q.ListLimit, validation.Min(1), validation.Max(500)),
	)
}

// PricingVersion returns the configured default pricing version.
func (c *Config) PricingVersion() services.PricingVersion {
	v, err := services.ParsePricingVersion(c.Pricing.DefaultVersion)
	if err != nil {
		return services.PricingWizard
	}
	return v
}
