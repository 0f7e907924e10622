// Package config loads and validates the client configuration. Credentials
// are read once, up front; a missing credential is a typed error at load
// time, never a surprise at send time.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ErrMissingCredentials indicates the base URL or bearer token is absent.
// It blocks every network operation and is surfaced once at startup.
var ErrMissingCredentials = errors.New("missing credentials")

// ConfigError describes an invalid or incomplete configuration field.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error on %s: %s", e.Field, e.Message)
}

// Is lets credential errors match ErrMissingCredentials.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingCredentials && (e.Field == "base_url" || e.Field == "bearer_token")
}

// Config is the complete client configuration.
type Config struct {
	// BaseURL of the prompt-hub API.
	BaseURL string `json:"base_url" validate:"required,url"`

	// BearerToken authenticates every request.
	BearerToken string `json:"bearer_token" validate:"required"`

	// Cookie is an optional session cookie sent alongside the token.
	Cookie string `json:"cookie,omitempty"`

	// ProjectID selects the hub project the endpoints are scoped to.
	ProjectID int `json:"project_id" validate:"gt=0"`

	// IntegrationName is stamped into predict requests.
	IntegrationName string `json:"integration_name,omitempty"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	// CatalogLimit is the default page size for participant-catalog fetches.
	CatalogLimit int `json:"catalog_limit,omitempty" validate:"omitempty,gt=0"`
}

// DefaultConfig returns the built-in defaults. Credentials have no default
// and must come from the config file or the environment.
func DefaultConfig() *Config {
	return &Config{
		ProjectID:       42,
		IntegrationName: "my_integration",
		LogLevel:        "warn",
		CatalogLimit:    10,
	}
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "parley", "config.json")
}

// StateDir returns the directory for mutable state such as the catalog
// cache and TUI log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "parley")
}
