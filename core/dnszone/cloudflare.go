package dnszone

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/cloudflare/cloudflare-go"
	"github.com/miekg/dns"
)

const cloudflarePageSize = 100

// Cloudflare manages zones hosted on Cloudflare.
//
// The API has no atomic batch: Apply deletes first, then creates, and stops
// at the first failed request. A failed Apply may leave the zone partially
// changed; the next run converges it.
type Cloudflare struct {
	api *cloudflare.API
}

// NewCloudflare creates the backend from an API token.
func NewCloudflare(token string, opts ...cloudflare.Option) (*Cloudflare, error) {
	if token == "" {
		return nil, errors.New("cloudflare API token required")
	}

	api, err := cloudflare.NewWithAPIToken(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudflare client: %w", err)
	}
	return &Cloudflare{api: api}, nil
}

// Zone finds the hosted zone whose name equals domain.
func (p *Cloudflare) Zone(ctx context.Context, domain string) (Zone, error) {
	name := Normalize(domain)
	bare := strings.TrimSuffix(name, ".")

	zones, err := p.api.ListZones(ctx, bare)
	if err != nil {
		return Zone{}, fmt.Errorf("failed to list zones: %w", err)
	}
	for _, z := range zones {
		if strings.EqualFold(z.Name, bare) {
			return Zone{Name: name, ID: z.ID}, nil
		}
	}
	return Zone{}, zoneNotFound(name)
}

// Records lists the zone's records of the given kind, page by page.
func (p *Cloudflare) Records(ctx context.Context, zone Zone, kind Kind) ([]Record, error) {
	rrtype, err := cloudflareType(kind)
	if err != nil {
		return nil, err
	}

	var all []cloudflare.DNSRecord
	page := 1
	for {
		params := cloudflare.ListDNSRecordsParams{
			Type: rrtype,
			ResultInfo: cloudflare.ResultInfo{
				Page:    page,
				PerPage: cloudflarePageSize,
			},
		}

		records, info, err := p.api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zone.ID), params)
		if err != nil {
			return nil, fmt.Errorf("failed to list DNS records of %s: %w", zone.Name, err)
		}

		all = append(all, records...)
		if info == nil || page >= info.TotalPages {
			break
		}
		page++
	}

	result := make([]Record, 0, len(all))
	for _, r := range all {
		if rec, ok := fromCloudflare(r); ok {
			result = append(result, rec)
		}
	}
	return result, nil
}

// Apply deletes, then creates, one request per record.
func (p *Cloudflare) Apply(ctx context.Context, zone Zone, change Change) error {
	rc := cloudflare.ZoneIdentifier(zone.ID)

	for _, rec := range change.Deletions {
		handle := handleOf(rec)
		if handle == "" {
			return fmt.Errorf("record %s has no Cloudflare id", rec.RecordName())
		}
		if err := p.api.DeleteDNSRecord(ctx, rc, handle); err != nil {
			return fmt.Errorf("failed to delete %s: %w", rec.RecordName(), err)
		}
	}

	for _, rec := range change.Additions {
		rrtype, err := cloudflareType(rec.RecordKind())
		if err != nil {
			return err
		}
		params := cloudflare.CreateDNSRecordParams{
			Type:    rrtype,
			Name:    strings.TrimSuffix(rec.RecordName(), "."),
			Content: strings.TrimSuffix(rec.Payload(), "."),
			TTL:     int(ttlOf(rec)),
		}
		if _, err := p.api.CreateDNSRecord(ctx, rc, params); err != nil {
			return fmt.Errorf("failed to create %s: %w", rec.RecordName(), err)
		}
	}
	return nil
}

func cloudflareType(kind Kind) (string, error) {
	switch kind {
	case KindForward:
		return dns.TypeToString[dns.TypeA], nil
	case KindReverse:
		return dns.TypeToString[dns.TypePTR], nil
	}
	return "", fmt.Errorf("unsupported record kind %s", kind)
}

func fromCloudflare(r cloudflare.DNSRecord) (Record, bool) {
	name := Normalize(r.Name)
	switch r.Type {
	case dns.TypeToString[dns.TypeA]:
		addr, err := netip.ParseAddr(r.Content)
		if err != nil || !addr.Is4() {
			return nil, false
		}
		return ForwardRecord{Name: name, Addr: addr, TTL: uint32(r.TTL), Handle: r.ID}, true
	case dns.TypeToString[dns.TypePTR]:
		return ReverseRecord{Name: name, Target: Normalize(r.Content), TTL: uint32(r.TTL), Handle: r.ID}, true
	}
	return nil, false
}

func handleOf(rec Record) string {
	switch r := rec.(type) {
	case ForwardRecord:
		return r.Handle
	case ReverseRecord:
		return r.Handle
	}
	return ""
}

func ttlOf(rec Record) uint32 {
	switch r := rec.(type) {
	case ForwardRecord:
		return r.TTL
	case ReverseRecord:
		return r.TTL
	}
	return 0
}
