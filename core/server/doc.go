// Package server holds the status HTTP server configuration.
//
// The server is started by the serve command. It exposes the run journal and
// the Prometheus registry behind an API key.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key and whether /metrics
// may be scraped without the key.
package server
