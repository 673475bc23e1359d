package dnszone

// Config selects and configures the DNS backend.
type Config struct {
	// Backend is rfc2136 or cloudflare.
	Backend string
	// Server is the primary name server (host:port) for rfc2136.
	Server string
	// TSIGName is the TSIG key name. Empty disables signing.
	TSIGName string
	// TSIGSecret is the base64 TSIG secret.
	TSIGSecret string
	// TSIGAlgorithm is the TSIG algorithm, hmac-sha256 by default.
	TSIGAlgorithm string
	// TimeoutSeconds bounds each DNS exchange.
	TimeoutSeconds int
	// CloudflareToken is the API token for cloudflare.
	CloudflareToken string
}
