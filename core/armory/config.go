package armory

import "fmt"

// Config holds configuration for the armory profile API client.
type Config struct {
	// BaseURL overrides the regional API host. Mainly useful for tests
	// and self-hosted gateways; leave empty for the regional default.
	BaseURL string `mapstructure:"base_url" default:""`
	// Region is the account region (us, eu, kr, tw).
	Region string `mapstructure:"region" default:"us"`
	// Locale is the locale requested from the profile endpoints.
	Locale string `mapstructure:"locale" default:"en_US"`
	// TimeoutSeconds is the HTTP timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

const (
	RegionUS = "us"
	RegionEU = "eu"
	RegionKR = "kr"
	RegionTW = "tw"
)

// IsValidRegion checks if the configured region is valid.
func (c Config) IsValidRegion() bool {
	switch c.Region {
	case RegionUS, RegionEU, RegionKR, RegionTW:
		return true
	default:
		return false
	}
}

// apiBase returns the API host for the configured region.
func (c Config) apiBase() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.api.blizzard.com", c.Region)
}
