package config

import (
	"os"
	"strconv"

	"fellingdate/internal/errors"
)

// UnknownDatasetPolicy controls what happens when an estimation request
// names a dataset the catalog does not know.
type UnknownDatasetPolicy string

const (
	// PolicyFallback substitutes the default dataset and attaches a
	// warning diagnostic to the result.
	PolicyFallback UnknownDatasetPolicy = "fallback"
	// PolicyReject fails the call with a fatal error.
	PolicyReject UnknownDatasetPolicy = "reject"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Estimate EstimateConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional estimate-archive connection. The
// archive is disabled when URL is empty.
type DatabaseConfig struct {
	URL string
}

// EstimateConfig holds estimation defaults
type EstimateConfig struct {
	DefaultDataset   string
	OnUnknownDataset UnknownDatasetPolicy
	CredMass         float64
	Truncation       float64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Estimate: EstimateConfig{
			DefaultDataset:   getEnv("DEFAULT_SAPWOOD_DATA", "Hollstein_1980"),
			OnUnknownDataset: UnknownDatasetPolicy(getEnv("ON_UNKNOWN_DATASET", string(PolicyFallback))),
			CredMass:         0.954,
			Truncation:       1e-7,
		},
	}

	if v := os.Getenv("CRED_MASS_DEFAULT"); v != "" {
		credMass, err := strconv.ParseFloat(v, 64)
		if err != nil || credMass <= 0 || credMass >= 1 {
			return nil, errors.ConfigInvalid("CRED_MASS_DEFAULT must be a number strictly between 0 and 1")
		}
		cfg.Estimate.CredMass = credMass
	}

	if v := os.Getenv("PMF_TRUNCATION"); v != "" {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil || eps < 0 {
			return nil, errors.ConfigInvalid("PMF_TRUNCATION must be a non-negative number")
		}
		cfg.Estimate.Truncation = eps
	}

	switch cfg.Estimate.OnUnknownDataset {
	case PolicyFallback, PolicyReject:
	default:
		return nil, errors.ConfigInvalid("ON_UNKNOWN_DATASET must be 'fallback' or 'reject'")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
