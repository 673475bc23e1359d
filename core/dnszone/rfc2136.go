package dnszone

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const tsigFudge = 300

// RFC2136 manages zones on an authoritative server through SOA queries,
// zone transfers and dynamic updates. One Apply is one UPDATE message, so
// each zone's batch is atomic.
type RFC2136 struct {
	server   string
	client   *dns.Client
	timeout  time.Duration
	tsigName string
	tsigAlg  string
	secrets  map[string]string
}

// NewRFC2136 creates the backend.
func NewRFC2136(cfg Config) (*RFC2136, error) {
	if cfg.Server == "" {
		return nil, errors.New("rfc2136 server is not set")
	}

	server := cfg.Server
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &RFC2136{
		server:  server,
		timeout: timeout,
		client:  &dns.Client{Net: "tcp", Timeout: timeout},
	}

	if cfg.TSIGName != "" {
		p.tsigName = dns.Fqdn(cfg.TSIGName)
		p.tsigAlg = dns.HmacSHA256
		if cfg.TSIGAlgorithm != "" {
			p.tsigAlg = dns.Fqdn(cfg.TSIGAlgorithm)
		}
		p.secrets = map[string]string{p.tsigName: cfg.TSIGSecret}
		p.client.TsigSecret = p.secrets
	}

	return p, nil
}

func (p *RFC2136) sign(m *dns.Msg) {
	if p.tsigName != "" {
		m.SetTsig(p.tsigName, p.tsigAlg, tsigFudge, time.Now().Unix())
	}
}

// Zone resolves the zone by asking the server for the SOA of domain. The
// server must answer authoritatively with an SOA owned by domain itself.
func (p *RFC2136) Zone(ctx context.Context, domain string) (Zone, error) {
	name := Normalize(domain)

	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypeSOA)
	p.sign(m)

	r, _, err := p.client.ExchangeContext(ctx, m, p.server)
	if err != nil {
		return Zone{}, fmt.Errorf("SOA query for %s failed: %w", name, err)
	}
	if r.Rcode == dns.RcodeNameError {
		return Zone{}, zoneNotFound(name)
	}
	if r.Rcode != dns.RcodeSuccess {
		return Zone{}, fmt.Errorf("SOA query for %s failed: %s", name, dns.RcodeToString[r.Rcode])
	}

	for _, rr := range r.Answer {
		if soa, ok := rr.(*dns.SOA); ok && strings.EqualFold(soa.Hdr.Name, name) {
			return Zone{Name: name}, nil
		}
	}
	return Zone{}, zoneNotFound(name)
}

// Records transfers the zone and keeps the records of the given kind.
func (p *RFC2136) Records(ctx context.Context, zone Zone, kind Kind) ([]Record, error) {
	m := new(dns.Msg)
	m.SetAxfr(zone.Name)
	p.sign(m)

	t := &dns.Transfer{
		DialTimeout:  p.timeout,
		ReadTimeout:  p.timeout,
		WriteTimeout: p.timeout,
		TsigSecret:   p.secrets,
	}

	env, err := t.In(m, p.server)
	if err != nil {
		return nil, fmt.Errorf("zone transfer of %s failed: %w", zone.Name, err)
	}

	var records []Record
	for e := range env {
		if e.Error != nil {
			return nil, fmt.Errorf("zone transfer of %s failed: %w", zone.Name, e.Error)
		}
		for _, rr := range e.RR {
			if rec, ok := fromRR(rr); ok && rec.RecordKind() == kind {
				records = append(records, rec)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Apply sends deletions and additions in one UPDATE message. Deletions are
// listed first so a record can be replaced by an identical one.
func (p *RFC2136) Apply(ctx context.Context, zone Zone, change Change) error {
	if change.IsEmpty() {
		return nil
	}

	m := new(dns.Msg)
	m.SetUpdate(zone.Name)

	if len(change.Deletions) > 0 {
		rrs := make([]dns.RR, 0, len(change.Deletions))
		for _, rec := range change.Deletions {
			rrs = append(rrs, toRR(rec))
		}
		m.Remove(rrs)
	}
	if len(change.Additions) > 0 {
		rrs := make([]dns.RR, 0, len(change.Additions))
		for _, rec := range change.Additions {
			rrs = append(rrs, toRR(rec))
		}
		m.Insert(rrs)
	}
	p.sign(m)

	r, _, err := p.client.ExchangeContext(ctx, m, p.server)
	if err != nil {
		return fmt.Errorf("update of %s failed: %w", zone.Name, err)
	}
	if r.Rcode != dns.RcodeSuccess {
		return fmt.Errorf("update of %s rejected: %s", zone.Name, dns.RcodeToString[r.Rcode])
	}
	return nil
}

func toRR(rec Record) dns.RR {
	switch r := rec.(type) {
	case ForwardRecord:
		return &dns.A{
			Hdr: dns.RR_Header{Name: r.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: r.TTL},
			A:   net.IP(r.Addr.AsSlice()),
		}
	case ReverseRecord:
		return &dns.PTR{
			Hdr: dns.RR_Header{Name: r.Name, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: r.TTL},
			Ptr: dns.Fqdn(r.Target),
		}
	}
	panic(fmt.Sprintf("dnszone: unexpected record %T", rec))
}

func fromRR(rr dns.RR) (Record, bool) {
	switch v := rr.(type) {
	case *dns.A:
		addr, ok := netip.AddrFromSlice(v.A.To4())
		if !ok {
			return nil, false
		}
		return ForwardRecord{Name: strings.ToLower(v.Hdr.Name), Addr: addr, TTL: v.Hdr.Ttl}, true
	case *dns.PTR:
		return ReverseRecord{Name: strings.ToLower(v.Hdr.Name), Target: strings.ToLower(v.Ptr), TTL: v.Hdr.Ttl}, true
	}
	return nil, false
}
