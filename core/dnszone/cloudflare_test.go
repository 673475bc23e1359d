package dnszone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cloudflare/cloudflare-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCloudflare serves the subset of the Cloudflare API used by the backend.
type fakeCloudflare struct {
	mu      sync.Mutex
	zones   map[string]string // name -> id
	records map[string][]cloudflare.DNSRecord
	nextID  int
	deleted []string
}

func newFakeCloudflare() *fakeCloudflare {
	return &fakeCloudflare{
		zones:   map[string]string{"example.com": "zone-1"},
		records: make(map[string][]cloudflare.DNSRecord),
	}
}

func writeResult(w http.ResponseWriter, result any, info *cloudflare.ResultInfo) {
	w.Header().Set("Content-Type", "application/json")
	body := map[string]any{
		"success":  true,
		"errors":   []any{},
		"messages": []any{},
		"result":   result,
	}
	if info != nil {
		body["result_info"] = info
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeCloudflare) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] == "zones" && r.Method == http.MethodGet:
		name := r.URL.Query().Get("name")
		var zones []cloudflare.Zone
		if id, ok := f.zones[name]; ok {
			zones = append(zones, cloudflare.Zone{ID: id, Name: name})
		}
		writeResult(w, zones, &cloudflare.ResultInfo{Page: 1, PerPage: 50, TotalPages: 1, Count: len(zones), Total: len(zones)})

	case len(parts) == 3 && parts[2] == "dns_records" && r.Method == http.MethodGet:
		zoneID := parts[1]
		rrtype := r.URL.Query().Get("type")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		var matching []cloudflare.DNSRecord
		for _, rec := range f.records[zoneID] {
			if rec.Type == rrtype {
				matching = append(matching, rec)
			}
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(matching) {
			start = len(matching)
		}
		if end > len(matching) {
			end = len(matching)
		}
		totalPages := (len(matching) + perPage - 1) / perPage
		writeResult(w, matching[start:end], &cloudflare.ResultInfo{Page: page, PerPage: perPage, TotalPages: totalPages, Count: end - start, Total: len(matching)})

	case len(parts) == 3 && parts[2] == "dns_records" && r.Method == http.MethodPost:
		var params cloudflare.CreateDNSRecordParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nextID++
		rec := cloudflare.DNSRecord{
			ID:      "rec-" + strconv.Itoa(f.nextID),
			Type:    params.Type,
			Name:    params.Name,
			Content: params.Content,
			TTL:     params.TTL,
		}
		f.records[parts[1]] = append(f.records[parts[1]], rec)
		writeResult(w, rec, nil)

	case len(parts) == 4 && parts[2] == "dns_records" && r.Method == http.MethodDelete:
		zoneID, id := parts[1], parts[3]
		kept := f.records[zoneID][:0]
		for _, rec := range f.records[zoneID] {
			if rec.ID != id {
				kept = append(kept, rec)
			}
		}
		f.records[zoneID] = kept
		f.deleted = append(f.deleted, id)
		writeResult(w, map[string]string{"id": id}, nil)

	default:
		http.NotFound(w, r)
	}
}

func newTestCloudflare(t *testing.T, f *fakeCloudflare) *Cloudflare {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	p, err := NewCloudflare("token", cloudflare.BaseURL(srv.URL), cloudflare.UsingRateLimit(1000))
	require.NoError(t, err)
	return p
}

func TestCloudflare_Zone(t *testing.T) {
	p := newTestCloudflare(t, newFakeCloudflare())
	ctx := context.Background()

	z, err := p.Zone(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, Zone{Name: "example.com.", ID: "zone-1"}, z)

	_, err = p.Zone(ctx, "missing.org.")
	assert.ErrorIs(t, err, ErrZoneNotFound)
}

func TestCloudflare_RecordsPaginates(t *testing.T) {
	f := newFakeCloudflare()
	for i := 0; i < cloudflarePageSize+5; i++ {
		f.records["zone-1"] = append(f.records["zone-1"], cloudflare.DNSRecord{
			ID:      "a-" + strconv.Itoa(i),
			Type:    "A",
			Name:    "host" + strconv.Itoa(i) + ".example.com",
			Content: "10.0.0." + strconv.Itoa(i%250),
			TTL:     301,
		})
	}
	f.records["zone-1"] = append(f.records["zone-1"], cloudflare.DNSRecord{ID: "txt", Type: "TXT", Name: "example.com", Content: "v=spf1"})

	p := newTestCloudflare(t, f)

	recs, err := p.Records(context.Background(), Zone{Name: "example.com.", ID: "zone-1"}, KindForward)
	require.NoError(t, err)
	require.Len(t, recs, cloudflarePageSize+5)
	assert.Equal(t, ForwardRecord{
		Name:   "host0.example.com.",
		Addr:   netip.MustParseAddr("10.0.0.0"),
		TTL:    301,
		Handle: "a-0",
	}, recs[0])
}

func TestCloudflare_Apply(t *testing.T) {
	f := newFakeCloudflare()
	f.records["zone-1"] = []cloudflare.DNSRecord{
		{ID: "old", Type: "A", Name: "web1.example.com", Content: "10.1.1.9", TTL: 301},
	}
	p := newTestCloudflare(t, f)
	ctx := context.Background()
	zone := Zone{Name: "example.com.", ID: "zone-1"}

	existing, err := p.Records(ctx, zone, KindForward)
	require.NoError(t, err)
	require.Len(t, existing, 1)

	err = p.Apply(ctx, zone, Change{
		Deletions: existing,
		Additions: []Record{ForwardRecord{Name: "web1.example.com.", Addr: netip.MustParseAddr("10.1.1.5"), TTL: 301}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"old"}, f.deleted)
	after, err := p.Records(ctx, zone, KindForward)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, "10.1.1.5", after[0].Payload())
	assert.Equal(t, "web1.example.com.", after[0].RecordName())
}

func TestCloudflare_ApplyReverse(t *testing.T) {
	f := newFakeCloudflare()
	f.zones["1.10.in-addr.arpa"] = "zone-rev"
	p := newTestCloudflare(t, f)
	ctx := context.Background()

	zone, err := p.Zone(ctx, "1.10.in-addr.arpa.")
	require.NoError(t, err)

	require.NoError(t, p.Apply(ctx, zone, Change{
		Additions: []Record{ReverseRecord{Name: "5.1.1.10.in-addr.arpa.", Target: "web1.example.com.", TTL: 301}},
	}))

	stored := f.records["zone-rev"]
	require.Len(t, stored, 1)
	assert.Equal(t, "PTR", stored[0].Type)
	assert.Equal(t, "5.1.1.10.in-addr.arpa", stored[0].Name)
	assert.Equal(t, "web1.example.com", stored[0].Content)

	recs, err := p.Records(ctx, zone, KindReverse)
	require.NoError(t, err)
	assert.Equal(t, []Record{ReverseRecord{
		Name:   "5.1.1.10.in-addr.arpa.",
		Target: "web1.example.com.",
		TTL:    301,
		Handle: stored[0].ID,
	}}, recs)
}

func TestCloudflare_ApplyRequiresHandle(t *testing.T) {
	p := newTestCloudflare(t, newFakeCloudflare())

	err := p.Apply(context.Background(), Zone{Name: "example.com.", ID: "zone-1"}, Change{
		Deletions: []Record{ForwardRecord{Name: "web1.example.com.", Addr: netip.MustParseAddr("10.1.1.9")}},
	})
	assert.ErrorContains(t, err, "no Cloudflare id")
}
