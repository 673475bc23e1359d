package server

import "fmt"

// Config holds configuration for the status HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// PublicMetrics serves /metrics without the API key.
	PublicMetrics bool `mapstructure:"public_metrics" default:"false"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}

// Validate checks the configuration before the server starts.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port is not set")
	}
	if c.ApiKey == "" {
		return fmt.Errorf("server api key is not set")
	}
	return nil
}
