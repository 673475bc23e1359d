package config

import (
	"reflect"
	"strings"

	"pcadmin/core/database"
	"pcadmin/core/logger"
	"pcadmin/core/metrics"
	"pcadmin/core/server"
	"pcadmin/core/storage"
	"pcadmin/core/vsphere"
	"pcadmin/feature/contentsync"
	"pcadmin/feature/dnssync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Storage holds configuration for the object storage.
	Storage storage.Config `mapstructure:"storage"`
	// VSphere holds configuration for the vCenter connection.
	VSphere vsphere.Config `mapstructure:"vsphere"`
	// Content holds configuration for the content sync.
	Content contentsync.Config `mapstructure:"content"`
	// DNS holds configuration for the DNS sync and its backend.
	DNS dnssync.Config `mapstructure:"dns"`
	// Metrics holds configuration for the metrics registry.
	Metrics metrics.Config `mapstructure:"metrics"`
	// Database holds configuration for the run journal database.
	Database database.Config `mapstructure:"database"`
	// Server holds configuration for the status HTTP server.
	Server server.Config `mapstructure:"server"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. DNS_FORWARD_DOMAIN -> dns.forward_domain)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse. time.Duration is an int64 and stays a leaf.
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
