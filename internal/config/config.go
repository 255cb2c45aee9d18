// Package config reads the command line tool's configuration from the
// environment.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/picatz/foundry"
	"github.com/picatz/foundry/credential"
)

// Config holds every setting the examples read from the environment.
//
// Flags on the command line take precedence over these values.
type Config struct {
	// ProjectEndpoint is the Foundry project endpoint used with Entra ID.
	ProjectEndpoint string `envconfig:"AZURE_AI_PROJECT_ENDPOINT"`

	// FoundryEndpoint is the Foundry resource endpoint used with an API key.
	FoundryEndpoint string `envconfig:"AZURE_AI_FOUNDRY_ENDPOINT"`

	// APIKey is the Foundry resource key.
	APIKey string `envconfig:"AZURE_AI_API_KEY"`

	// Model is the OpenAI model deployment name.
	Model string `envconfig:"AZURE_MODEL_2_DEPLOYMENT_NAME" default:"gpt-4.1-mini"`

	// ReasoningModel is the non-OpenAI model deployment name.
	ReasoningModel string `envconfig:"AZURE_MODEL_DEPLOYMENT_NAME" default:"DeepSeek-R1-0528"`

	// APIVersion is appended to Entra ID requests.
	APIVersion string `envconfig:"FOUNDRY_API_VERSION" default:"2025-11-15-preview"`

	// SubscriptionID scopes the model catalog scan.
	SubscriptionID string `envconfig:"AZURE_SUBSCRIPTION_ID"`

	// CacheDir holds the model catalog cache.
	CacheDir string `envconfig:"FOUNDRY_CACHE_DIR"`

	// CacheTTL is how long a catalog scan stays fresh.
	CacheTTL time.Duration `envconfig:"FOUNDRY_CACHE_TTL" default:"24h"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("error getting configuration from environment: %w", err)
	}

	c.CacheDir = cmp.Or(c.CacheDir, DefaultCacheDir())

	return c, nil
}

// DefaultCacheDir is the catalog cache location when FOUNDRY_CACHE_DIR is
// unset: the user cache directory, falling back to the home directory.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "foundry")
	}
	return filepath.Join(cmp.Or(os.Getenv("HOME"), os.Getenv("USERPROFILE")), ".foundry-cache")
}

// ErrMissing is returned by [Config.Validate] when a required setting is
// unset.
var ErrMissing = errors.New("missing configuration")

// Validate checks that the settings required by mode are present.
func (c *Config) Validate(mode credential.Mode) error {
	switch mode {
	case credential.ModeEntraID:
		if c.ProjectEndpoint == "" {
			return fmt.Errorf("%w: AZURE_AI_PROJECT_ENDPOINT must be set.", ErrMissing)
		}
	case credential.ModeAPIKey:
		if c.FoundryEndpoint == "" || c.APIKey == "" {
			return fmt.Errorf("%w: AZURE_AI_FOUNDRY_ENDPOINT and AZURE_AI_API_KEY must be set.", ErrMissing)
		}
	default:
		return fmt.Errorf("unknown authentication mode %q", mode)
	}
	return nil
}

// Endpoint returns the endpoint used for mode.
func (c *Config) Endpoint(mode credential.Mode) string {
	if mode == credential.ModeAPIKey {
		return c.FoundryEndpoint
	}
	return c.ProjectEndpoint
}

// Models returns the model deployments, falling back to the package
// defaults for empty values.
func (c *Config) Models() (model, reasoningModel string) {
	return cmp.Or(c.Model, foundry.DefaultModel), cmp.Or(c.ReasoningModel, foundry.DefaultReasoningModel)
}
