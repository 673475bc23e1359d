package dnszone

import (
	"net/netip"
	"strings"
)

// Kind discriminates the record variants.
type Kind int

const (
	// KindForward is a name to IPv4 address record.
	KindForward Kind = iota + 1
	// KindReverse is an in-addr.arpa name to host name record.
	KindReverse
)

func (k Kind) String() string {
	switch k {
	case KindForward:
		return "forward"
	case KindReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Record is a DNS record managed by the reconciler. It is either a
// ForwardRecord or a ReverseRecord.
type Record interface {
	// RecordName returns the fully qualified owner name.
	RecordName() string
	// RecordKind returns the variant.
	RecordKind() Kind
	// Payload returns the record data in presentation form.
	Payload() string

	isRecord()
}

// ForwardRecord maps a host name to an IPv4 address.
type ForwardRecord struct {
	Name string
	Addr netip.Addr
	TTL  uint32
	// Handle is the backend identity needed to delete the record. It is
	// empty for backends that delete by value.
	Handle string
}

func (r ForwardRecord) RecordName() string { return r.Name }
func (r ForwardRecord) RecordKind() Kind   { return KindForward }
func (r ForwardRecord) Payload() string    { return r.Addr.String() }
func (ForwardRecord) isRecord()            {}

// ReverseRecord maps an in-addr.arpa name to a host name.
type ReverseRecord struct {
	Name   string
	Target string
	TTL    uint32
	Handle string
}

func (r ReverseRecord) RecordName() string { return r.Name }
func (r ReverseRecord) RecordKind() Kind   { return KindReverse }
func (r ReverseRecord) Payload() string    { return r.Target }
func (ReverseRecord) isRecord()            {}

// Key returns the case-insensitive reconciliation key of a record.
func Key(r Record) string {
	return strings.ToLower(r.RecordName())
}

// SamePayload reports whether two records carry the same name, kind and
// data. TTL and handle are ignored.
func SamePayload(a, b Record) bool {
	if a.RecordKind() != b.RecordKind() || !strings.EqualFold(a.RecordName(), b.RecordName()) {
		return false
	}
	switch x := a.(type) {
	case ForwardRecord:
		return x.Addr == b.(ForwardRecord).Addr
	case ReverseRecord:
		return strings.EqualFold(x.Target, b.(ReverseRecord).Target)
	}
	return false
}

// Change is a batch of record additions and deletions for one zone.
type Change struct {
	Additions []Record
	Deletions []Record
}

// IsEmpty reports whether the change does nothing.
func (c Change) IsEmpty() bool {
	return len(c.Additions) == 0 && len(c.Deletions) == 0
}
