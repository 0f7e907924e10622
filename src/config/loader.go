package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PARLEY"

// Loader loads configuration from a file and the environment.
type Loader struct {
	fs       afero.Fs
	validate *validator.Validate
}

// NewLoader creates a loader reading from the given filesystem.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs:       fs,
		validate: validator.New(),
	}
}

// Load reads the config file at path (when it exists), applies environment
// overrides, and validates the result. Missing credentials come back as a
// *ConfigError matching ErrMissingCredentials.
func (l *Loader) Load(path string) (*Config, error) {
	config, err := l.LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := l.Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadUnvalidated reads and merges the config sources without validating the
// result, for callers that overlay their own values before validating.
func (l *Loader) LoadUnvalidated(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := afero.ReadFile(l.fs, path)
		if err == nil {
			var fileConfig Config
			if err := json.Unmarshal(data, &fileConfig); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			mergeConfig(config, &fileConfig)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnvironmentOverrides(config)
	return config, nil
}

// Validate checks a configuration without loading it.
func (l *Loader) Validate(config *Config) error {
	if config.BaseURL == "" {
		return &ConfigError{Field: "base_url", Message: "base URL is required; set it in the config file or " + EnvPrefix + "_BASE_URL"}
	}
	if config.BearerToken == "" {
		return &ConfigError{Field: "bearer_token", Message: "bearer token is required; set it in the config file or " + EnvPrefix + "_BEARER_TOKEN"}
	}

	if err := l.validate.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return &ConfigError{
				Field:   e.Field(),
				Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
			}
		}
		return err
	}
	return nil
}

// mergeConfig overlays non-zero override fields onto base.
func mergeConfig(base, override *Config) {
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.BearerToken != "" {
		base.BearerToken = override.BearerToken
	}
	if override.Cookie != "" {
		base.Cookie = override.Cookie
	}
	if override.ProjectID != 0 {
		base.ProjectID = override.ProjectID
	}
	if override.IntegrationName != "" {
		base.IntegrationName = override.IntegrationName
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.CatalogLimit != 0 {
		base.CatalogLimit = override.CatalogLimit
	}
}

// applyEnvironmentOverrides applies PARLEY_* environment variables.
func applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(EnvPrefix + "_BASE_URL"); v != "" {
		config.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "_BEARER_TOKEN"); v != "" {
		config.BearerToken = v
	}
	if v := os.Getenv(EnvPrefix + "_COOKIE"); v != "" {
		config.Cookie = v
	}
	if v := os.Getenv(EnvPrefix + "_PROJECT_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			config.ProjectID = id
		}
	}
	if v := os.Getenv(EnvPrefix + "_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}
