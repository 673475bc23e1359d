package vsphere

import "time"

// Config holds configuration for the vCenter connection.
type Config struct {
	// Host is the vCenter host name or address.
	Host string `mapstructure:"host" default:""`
	// Port is the vCenter HTTPS port.
	Port string `mapstructure:"port" default:"443"`
	// Username is the SSO user.
	Username string `mapstructure:"username" default:""`
	// Password is the SSO password.
	Password string `mapstructure:"password" default:""`
	// Insecure skips TLS verification.
	Insecure bool `mapstructure:"insecure" default:"false"`
	// CAFile is an optional PEM bundle used to verify vCenter.
	CAFile string `mapstructure:"ca_file" default:""`
	// ConnectAttempts bounds the connection bootstrap. Values below one mean one.
	ConnectAttempts int `mapstructure:"connect_attempts" default:"3"`
	// RetryInterval is the initial delay between attempts.
	RetryInterval time.Duration `mapstructure:"retry_interval" default:"2s"`
}
