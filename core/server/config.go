package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// RequestTimeoutSeconds bounds how long a single request may hold store connections.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"15"`
}

// RequestTimeout returns the per-request timeout, falling back to 15s.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}
