// Package business loads the per-business configuration and brand
// catalog documents. Both are read-only: loaded once, validated at the
// boundary, and treated as immutable afterwards.
package business

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigValidation is returned when a business document is missing
// or structurally invalid. Validation fails fast at load time instead
// of surfacing as missing keys deep inside prompt assembly.
var ErrConfigValidation = errors.New("business config validation failed")

// Branding holds the display colors and logo for a business.
type Branding struct {
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
	LogoURL        string `json:"logo_url"`
}

// Config is one business's configuration document
// (businesses/<id>/business.json).
type Config struct {
	BusinessName string   `json:"business_name"`
	Branding     Branding `json:"branding"`
}

// Default branding values applied when the document omits them.
const (
	defaultPrimaryColor   = "#4CAF50"
	defaultSecondaryColor = "#1E1E1E"
	defaultAccentColor    = "#C2A875"
)

// LoadConfig reads and validates businesses/<businessID>/business.json
// under dir.
func LoadConfig(dir, businessID string) (*Config, error) {
	path := filepath.Join(dir, businessID, "business.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfigValidation, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrConfigValidation, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks required fields and fills in branding defaults.
func (c *Config) Validate() error {
	if c.BusinessName == "" {
		return fmt.Errorf("%w: business_name is required", ErrConfigValidation)
	}
	if c.Branding.PrimaryColor == "" {
		c.Branding.PrimaryColor = defaultPrimaryColor
	}
	if c.Branding.SecondaryColor == "" {
		c.Branding.SecondaryColor = defaultSecondaryColor
	}
	if c.Branding.AccentColor == "" {
		c.Branding.AccentColor = defaultAccentColor
	}
	return nil
}
