package metrics

// Config holds configuration for the metrics registry.
type Config struct {
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"pcadmin"`
	// PushgatewayURL is the Pushgateway CLI runs push to. Empty disables pushing.
	PushgatewayURL string `mapstructure:"pushgateway_url" default:""`
	// Job is the Pushgateway job label.
	Job string `mapstructure:"job" default:"pcadmin"`
}
