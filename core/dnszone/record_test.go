package dnszone

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "multicloud.internal.", Normalize("multicloud.internal"))
	assert.Equal(t, "multicloud.internal.", Normalize("multicloud.internal."))
	assert.Equal(t, "multicloud.internal.", Normalize(" MultiCloud.Internal "))
}

func TestSamePayload(t *testing.T) {
	a := ForwardRecord{Name: "web1.example.com.", Addr: netip.MustParseAddr("10.1.1.5"), TTL: 301}

	tests := []struct {
		name string
		b    Record
		want bool
	}{
		{"Same address, other ttl and handle", ForwardRecord{Name: "WEB1.example.com.", Addr: netip.MustParseAddr("10.1.1.5"), TTL: 60, Handle: "x"}, true},
		{"Other address", ForwardRecord{Name: "web1.example.com.", Addr: netip.MustParseAddr("10.1.1.9")}, false},
		{"Other name", ForwardRecord{Name: "web2.example.com.", Addr: netip.MustParseAddr("10.1.1.5")}, false},
		{"Other kind", ReverseRecord{Name: "web1.example.com.", Target: "10.1.1.5"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SamePayload(a, tt.b))
		})
	}

	assert.True(t, SamePayload(
		ReverseRecord{Name: "5.1.1.10.in-addr.arpa.", Target: "web1.example.com."},
		ReverseRecord{Name: "5.1.1.10.in-addr.arpa.", Target: "WEB1.example.com."},
	))
}

func TestRecordAccessors(t *testing.T) {
	fwd := ForwardRecord{Name: "web1.example.com.", Addr: netip.MustParseAddr("10.1.1.5")}
	rev := ReverseRecord{Name: "5.1.1.10.in-addr.arpa.", Target: "web1.example.com."}

	assert.Equal(t, KindForward, fwd.RecordKind())
	assert.Equal(t, "10.1.1.5", fwd.Payload())
	assert.Equal(t, KindReverse, rev.RecordKind())
	assert.Equal(t, "web1.example.com.", rev.Payload())
	assert.Equal(t, "forward", KindForward.String())
	assert.Equal(t, "reverse", KindReverse.String())
	assert.Equal(t, "5.1.1.10.in-addr.arpa.", Key(rev))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{Backend: "rfc2136", Server: "127.0.0.1"})
	assert.NoError(t, err)
	assert.IsType(t, &RFC2136{}, p)
	assert.Equal(t, "127.0.0.1:53", p.(*RFC2136).server)

	p, err = NewProvider(Config{Backend: "cloudflare", CloudflareToken: "token"})
	assert.NoError(t, err)
	assert.IsType(t, &Cloudflare{}, p)

	_, err = NewProvider(Config{Backend: "cloudflare"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Backend: "route53"})
	assert.ErrorContains(t, err, "unknown DNS provider")
}
