package dnszone

import (
	"context"

	"pcadmin/core/metrics"
)

type instrumented struct {
	next    Provider
	metrics *metrics.Metrics
}

// Instrument counts every provider request in m.
func Instrument(p Provider, m *metrics.Metrics) Provider {
	if m == nil {
		return p
	}
	return &instrumented{next: p, metrics: m}
}

func (p *instrumented) Zone(ctx context.Context, domain string) (Zone, error) {
	z, err := p.next.Zone(ctx, domain)
	p.metrics.IncDNSRequest("zone", Normalize(domain), err == nil)
	return z, err
}

func (p *instrumented) Records(ctx context.Context, zone Zone, kind Kind) ([]Record, error) {
	recs, err := p.next.Records(ctx, zone, kind)
	p.metrics.IncDNSRequest("read", zone.Name, err == nil)
	return recs, err
}

func (p *instrumented) Apply(ctx context.Context, zone Zone, change Change) error {
	err := p.next.Apply(ctx, zone, change)
	p.metrics.IncDNSRequest("update", zone.Name, err == nil)
	return err
}
