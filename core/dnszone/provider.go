package dnszone

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// ErrZoneNotFound is returned when no managed zone matches a domain exactly.
var ErrZoneNotFound = errors.New("DNS zone not found")

// Backend names.
const (
	BackendRFC2136    = "rfc2136"
	BackendCloudflare = "cloudflare"
)

// Zone is a managed zone.
type Zone struct {
	// Name is the fully qualified zone apex.
	Name string
	// ID is the backend identity of the zone, if it has one.
	ID string
}

// Provider is a managed DNS service.
type Provider interface {
	// Zone resolves the zone whose apex equals domain exactly.
	Zone(ctx context.Context, domain string) (Zone, error)
	// Records lists the records of one kind in the zone.
	Records(ctx context.Context, zone Zone, kind Kind) ([]Record, error)
	// Apply submits one batch of deletions and additions to the zone.
	Apply(ctx context.Context, zone Zone, change Change) error
}

// NewProvider builds the backend selected by cfg.Backend.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendRFC2136:
		return NewRFC2136(cfg)
	case BackendCloudflare:
		return NewCloudflare(cfg.CloudflareToken)
	default:
		return nil, fmt.Errorf("unknown DNS provider %q", cfg.Backend)
	}
}

// Normalize returns the domain as a lower-case fully qualified name.
// "multicloud.internal" and "multicloud.internal." normalize identically.
func Normalize(domain string) string {
	return strings.ToLower(dns.Fqdn(strings.TrimSpace(domain)))
}

func zoneNotFound(domain string) error {
	return fmt.Errorf("%w: %s", ErrZoneNotFound, domain)
}
