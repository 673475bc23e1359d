package dnssync

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"pcadmin/core/dnszone"
	"pcadmin/core/inventory"

	"github.com/miekg/dns"
)

const reverseSuffix = "in-addr.arpa."

// Dropped is an inventory entry that produced no record, or only a
// forward record.
type Dropped struct {
	VM     string
	Reason string
}

// Desired is the record set the inventory calls for.
type Desired struct {
	Forward []dnszone.Record
	Reverse []dnszone.Record
	Dropped []Dropped
}

// ParseIPv4 parses a dotted IPv4 address.
func ParseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%s is not an IPv4 address", s)
	}
	return addr, nil
}

// ReverseName returns the in-addr.arpa name of an IPv4 address:
// 10.88.10.55 becomes 55.10.88.10.in-addr.arpa.
func ReverseName(addr netip.Addr) string {
	o := addr.Unmap().As4()
	var b strings.Builder
	for i := 3; i >= 0; i-- {
		b.WriteString(strconv.Itoa(int(o[i])))
		b.WriteByte('.')
	}
	b.WriteString(reverseSuffix)
	return b.String()
}

// ShortHostName returns the first label of a host name, lower-cased.
func ShortHostName(host string) string {
	short, _, _ := strings.Cut(strings.TrimSpace(host), ".")
	return strings.ToLower(short)
}

// BuildDesired derives the forward and reverse records of the inventory.
// Both domains must be normalized. Entries without a valid IPv4 address or
// host name are dropped, reverse names outside reverseDomain produce no PTR,
// and the first entry wins when two share a host name or an address.
func BuildDesired(vms []inventory.VM, forwardDomain, reverseDomain string, ttl uint32) Desired {
	var d Desired
	names := make(map[string]struct{})
	ptrs := make(map[string]struct{})
	for _, vm := range vms {
		addr, err := ParseIPv4(vm.IPAddress)
		if err != nil {
			d.Dropped = append(d.Dropped, Dropped{VM: vm.Name, Reason: fmt.Sprintf("no valid IPv4 address (%q)", vm.IPAddress)})
			continue
		}
		short := ShortHostName(vm.HostName)
		fqdn := short + "." + forwardDomain
		if _, ok := dns.IsDomainName(fqdn); short == "" || !ok {
			d.Dropped = append(d.Dropped, Dropped{VM: vm.Name, Reason: fmt.Sprintf("no valid host name (%q)", vm.HostName)})
			continue
		}
		if _, dup := names[fqdn]; dup {
			d.Dropped = append(d.Dropped, Dropped{VM: vm.Name, Reason: fmt.Sprintf("duplicate host name %s", fqdn)})
			continue
		}
		names[fqdn] = struct{}{}
		d.Forward = append(d.Forward, dnszone.ForwardRecord{Name: fqdn, Addr: addr, TTL: ttl})

		ptr := ReverseName(addr)
		if !dns.IsSubDomain(reverseDomain, ptr) {
			d.Dropped = append(d.Dropped, Dropped{VM: vm.Name, Reason: fmt.Sprintf("%s is outside %s", ptr, reverseDomain)})
			continue
		}
		if _, dup := ptrs[ptr]; dup {
			d.Dropped = append(d.Dropped, Dropped{VM: vm.Name, Reason: fmt.Sprintf("duplicate address %s", addr)})
			continue
		}
		ptrs[ptr] = struct{}{}
		d.Reverse = append(d.Reverse, dnszone.ReverseRecord{Name: ptr, Target: fqdn, TTL: ttl})
	}
	return d
}
