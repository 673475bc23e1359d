package dnssync

import "pcadmin/core/dnszone"

// Config holds the dns section of the configuration.
type Config struct {
	// Provider selects the DNS backend: rfc2136 or cloudflare.
	Provider string `mapstructure:"provider" default:"rfc2136"`
	// ForwardDomain is the zone receiving the A records.
	ForwardDomain string `mapstructure:"forward_domain" default:""`
	// ReverseDomain is the in-addr.arpa zone receiving the PTR records.
	ReverseDomain string `mapstructure:"reverse_domain" default:""`
	// TTL of the created records, in seconds.
	TTL int `mapstructure:"ttl" default:"301"`
	// PurgeOnly removes the records of the inventory hosts without adding
	// them back.
	PurgeOnly bool `mapstructure:"purge_only" default:"false"`
	// ShowDetails logs every planned record change.
	ShowDetails bool `mapstructure:"show_details" default:"false"`
	// DryRun computes the changes without applying them.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// ReplaceUnchanged removes and re-adds records even when they already
	// hold the desired data.
	ReplaceUnchanged bool `mapstructure:"replace_unchanged" default:"false"`
	// PoweredOnOnly limits the inventory to running VMs.
	PoweredOnOnly bool `mapstructure:"powered_on_only" default:"false"`

	Server          string `mapstructure:"server" default:""`
	TSIGName        string `mapstructure:"tsig_name" default:""`
	TSIGSecret      string `mapstructure:"tsig_secret" default:""`
	TSIGAlgorithm   string `mapstructure:"tsig_algorithm" default:"hmac-sha256"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" default:"10"`
	CloudflareToken string `mapstructure:"cloudflare_token" default:""`
}

// ProviderConfig returns the backend settings.
func (c Config) ProviderConfig() dnszone.Config {
	return dnszone.Config{
		Backend:         c.Provider,
		Server:          c.Server,
		TSIGName:        c.TSIGName,
		TSIGSecret:      c.TSIGSecret,
		TSIGAlgorithm:   c.TSIGAlgorithm,
		TimeoutSeconds:  c.TimeoutSeconds,
		CloudflareToken: c.CloudflareToken,
	}
}

// Options converts the configuration into reconcile options. A dry run
// takes precedence over purge only.
func (c Config) Options() Options {
	mode := ModeNormal
	if c.PurgeOnly {
		mode = ModePurgeOnly
	}
	if c.DryRun {
		mode = ModeDryRun
	}
	ttl := DefaultTTL
	if c.TTL > 0 {
		ttl = uint32(c.TTL)
	}
	return Options{
		ForwardDomain:    c.ForwardDomain,
		ReverseDomain:    c.ReverseDomain,
		TTL:              ttl,
		Mode:             mode,
		ShowDetails:      c.ShowDetails,
		ReplaceUnchanged: c.ReplaceUnchanged,
	}
}
