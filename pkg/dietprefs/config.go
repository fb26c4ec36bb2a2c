package dietprefs

import "time"

// Config represents the configuration for the dietprefs API client
type Config struct {
	// BaseURL is the API root including the version prefix,
	// e.g. http://localhost:8000/api/v1
	BaseURL string

	// Timeout bounds every HTTP round trip. Zero means 30s.
	Timeout time.Duration

	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64

	// Burst is the limiter bucket size.
	Burst int

	// UserAgent is sent on every request when set.
	UserAgent string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	if c.RateLimit < 0 || c.Burst < 0 {
		return ErrInvalidConfig
	}
	return nil
}
