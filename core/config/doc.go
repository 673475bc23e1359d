// Package config loads the pcadmin configuration.
//
// Values come from a .env file, when present, and the environment. Every
// setting has a default declared on its struct field; environment variables
// use the upper-cased key with dots replaced by underscores, so
// dns.forward_domain is read from DNS_FORWARD_DOMAIN.
//
// # Configuration Structure
//
//   - Log: level and encoding
//   - Storage: S3-compatible endpoint and credentials
//   - VSphere: vCenter endpoint, credentials and connect retries
//   - Content: bucket, target library and transfer strategy
//   - DNS: domains, modes and the DNS backend
//   - Metrics: namespace and optional Pushgateway
//   - Database: optional MySQL run journal
//   - Server: status API port and key
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.DNS.ForwardDomain)
package config
