package dnssync

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"testing"

	"pcadmin/core/dnszone"
	"pcadmin/core/inventory"
	"pcadmin/feature/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	fwdZone = "multicloud.internal."
	revZone = "10.in-addr.arpa."
)

type fakeProvider struct {
	records  map[string][]dnszone.Record
	applyErr map[string]error
	readErr  error
	calls    []string
}

func newProvider() *fakeProvider {
	return &fakeProvider{
		records:  map[string][]dnszone.Record{fwdZone: nil, revZone: nil},
		applyErr: map[string]error{},
	}
}

func (p *fakeProvider) Zone(_ context.Context, domain string) (dnszone.Zone, error) {
	p.calls = append(p.calls, "zone "+domain)
	if _, ok := p.records[domain]; !ok {
		return dnszone.Zone{}, fmt.Errorf("%w: %s", dnszone.ErrZoneNotFound, domain)
	}
	return dnszone.Zone{Name: domain}, nil
}

func (p *fakeProvider) Records(_ context.Context, zone dnszone.Zone, kind dnszone.Kind) ([]dnszone.Record, error) {
	p.calls = append(p.calls, "records "+zone.Name)
	if p.readErr != nil {
		return nil, p.readErr
	}
	var out []dnszone.Record
	for _, r := range p.records[zone.Name] {
		if r.RecordKind() == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (p *fakeProvider) Apply(_ context.Context, zone dnszone.Zone, change dnszone.Change) error {
	p.calls = append(p.calls, "apply "+zone.Name)
	if err := p.applyErr[zone.Name]; err != nil {
		return err
	}
	var kept []dnszone.Record
	for _, r := range p.records[zone.Name] {
		deleted := false
		for _, d := range change.Deletions {
			if dnszone.SamePayload(r, d) {
				deleted = true
				break
			}
		}
		if !deleted {
			kept = append(kept, r)
		}
	}
	p.records[zone.Name] = append(kept, change.Additions...)
	return nil
}

func (p *fakeProvider) applies() int {
	n := 0
	for _, c := range p.calls {
		if len(c) > 6 && c[:6] == "apply " {
			n++
		}
	}
	return n
}

type fakeSource struct {
	vms []inventory.VM
	err error
}

func (s fakeSource) VirtualMachines(context.Context) ([]inventory.VM, error) {
	return s.vms, s.err
}

type fakeRecorder struct {
	runs []*history.Run
}

func (r *fakeRecorder) Record(_ context.Context, run *history.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

func forward(name, addr string) dnszone.Record {
	return dnszone.ForwardRecord{Name: name, Addr: netip.MustParseAddr(addr), TTL: 301}
}

func reverse(name, target string) dnszone.Record {
	return dnszone.ReverseRecord{Name: name, Target: target, TTL: 301}
}

func payloads(recs []dnszone.Record) []string {
	var out []string
	for _, r := range recs {
		out = append(out, r.RecordName()+"="+r.Payload())
	}
	return out
}

var web1 = []inventory.VM{{Name: "web1", HostName: "web1", IPAddress: "10.1.1.5"}}

func baseOptions() Options {
	return Options{ForwardDomain: "multicloud.internal", ReverseDomain: "10.in-addr.arpa", TTL: 301}
}

func newTestService(p dnszone.Provider) *Service {
	return NewService(fakeSource{}, p, nil, nil, zap.NewNop())
}

func TestReconcile_ReplacesChangedAddress(t *testing.T) {
	p := newProvider()
	p.records[fwdZone] = []dnszone.Record{forward("web1.multicloud.internal.", "10.1.1.9")}

	res, err := newTestService(p).Reconcile(context.Background(), web1, baseOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"web1.multicloud.internal.=10.1.1.9"}, payloads(res.Forward.Deletions))
	assert.Equal(t, []string{"web1.multicloud.internal.=10.1.1.5"}, payloads(res.Forward.Additions))
	assert.True(t, res.Forward.Applied)
	assert.True(t, res.Reverse.Applied)

	assert.Equal(t, []string{"web1.multicloud.internal.=10.1.1.5"}, payloads(p.records[fwdZone]))
	assert.Equal(t, []string{"5.1.1.10.in-addr.arpa.=web1.multicloud.internal."}, payloads(p.records[revZone]))
}

func TestReconcile_LeavesOtherNamesAlone(t *testing.T) {
	p := newProvider()
	p.records[fwdZone] = []dnszone.Record{forward("mail.multicloud.internal.", "10.1.1.20")}

	res, err := newTestService(p).Reconcile(context.Background(), web1, baseOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Forward.Deletions)
	assert.ElementsMatch(t, []string{
		"mail.multicloud.internal.=10.1.1.20",
		"web1.multicloud.internal.=10.1.1.5",
	}, payloads(p.records[fwdZone]))
}

func TestReconcile_DryRunNeverApplies(t *testing.T) {
	p := newProvider()
	p.records[fwdZone] = []dnszone.Record{forward("web1.multicloud.internal.", "10.1.1.9")}

	opts := baseOptions()
	opts.Mode = ModeDryRun
	res, err := newTestService(p).Reconcile(context.Background(), web1, opts)
	require.NoError(t, err)

	assert.Zero(t, p.applies())
	assert.Len(t, res.Forward.Additions, 1)
	assert.Len(t, res.Forward.Deletions, 1)
	assert.False(t, res.Forward.Applied)
	assert.Equal(t, []string{"web1.multicloud.internal.=10.1.1.9"}, payloads(p.records[fwdZone]))
}

func TestReconcile_PurgeOnly(t *testing.T) {
	p := newProvider()
	p.records[fwdZone] = []dnszone.Record{forward("web1.multicloud.internal.", "10.1.1.5")}
	p.records[revZone] = []dnszone.Record{reverse("5.1.1.10.in-addr.arpa.", "web1.multicloud.internal.")}

	opts := baseOptions()
	opts.Mode = ModePurgeOnly
	res, err := newTestService(p).Reconcile(context.Background(), web1, opts)
	require.NoError(t, err)

	assert.Empty(t, res.Forward.Additions)
	assert.Len(t, res.Forward.Deletions, 1)
	assert.Empty(t, p.records[fwdZone])
	assert.Empty(t, p.records[revZone])
}

func TestReconcile_UnchangedRecords(t *testing.T) {
	t.Run("Skipped", func(t *testing.T) {
		p := newProvider()
		svc := newTestService(p)

		_, err := svc.Reconcile(context.Background(), web1, baseOptions())
		require.NoError(t, err)
		assert.Equal(t, 2, p.applies())

		res, err := svc.Reconcile(context.Background(), web1, baseOptions())
		require.NoError(t, err)
		assert.Equal(t, 2, p.applies())
		assert.Equal(t, 1, res.Forward.Unchanged)
		assert.Equal(t, 1, res.Reverse.Unchanged)
	})

	t.Run("Replaced", func(t *testing.T) {
		p := newProvider()
		p.records[fwdZone] = []dnszone.Record{forward("web1.multicloud.internal.", "10.1.1.5")}

		opts := baseOptions()
		opts.ReplaceUnchanged = true
		res, err := newTestService(p).Reconcile(context.Background(), web1, opts)
		require.NoError(t, err)

		assert.Len(t, res.Forward.Deletions, 1)
		assert.Len(t, res.Forward.Additions, 1)
		assert.Equal(t, []string{"web1.multicloud.internal.=10.1.1.5"}, payloads(p.records[fwdZone]))
	})
}

func TestReconcile_DomainNormalization(t *testing.T) {
	for _, domain := range []string{"multicloud.internal", "multicloud.internal.", "MultiCloud.Internal"} {
		t.Run(domain, func(t *testing.T) {
			p := newProvider()
			opts := baseOptions()
			opts.ForwardDomain = domain

			res, err := newTestService(p).Reconcile(context.Background(), web1, opts)
			require.NoError(t, err)
			assert.Equal(t, fwdZone, res.Forward.Zone)
			assert.Equal(t, []string{"web1.multicloud.internal.=10.1.1.5"}, payloads(p.records[fwdZone]))
		})
	}
}

func TestReconcile_MissingZoneAborts(t *testing.T) {
	t.Run("Forward", func(t *testing.T) {
		p := newProvider()
		opts := baseOptions()
		opts.ForwardDomain = "unknown.internal"

		_, err := newTestService(p).Reconcile(context.Background(), web1, opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, dnszone.ErrZoneNotFound)
		assert.Equal(t, []string{"zone unknown.internal."}, p.calls)
	})

	t.Run("Reverse", func(t *testing.T) {
		p := newProvider()
		opts := baseOptions()
		opts.ReverseDomain = "99.in-addr.arpa"

		_, err := newTestService(p).Reconcile(context.Background(), web1, opts)
		assert.ErrorIs(t, err, dnszone.ErrZoneNotFound)
		assert.Zero(t, p.applies())
		assert.Empty(t, p.records[fwdZone])
	})

	t.Run("MissingDomain", func(t *testing.T) {
		p := newProvider()
		opts := baseOptions()
		opts.ReverseDomain = ""

		_, err := newTestService(p).Reconcile(context.Background(), web1, opts)
		assert.Error(t, err)
		assert.Empty(t, p.calls)
	})
}

func TestReconcile_ReadErrorAbortsBeforeApply(t *testing.T) {
	p := newProvider()
	p.readErr = errors.New("transfer refused")

	_, err := newTestService(p).Reconcile(context.Background(), web1, baseOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer refused")
	assert.Zero(t, p.applies())
}

func TestReconcile_ZonesAppliedIndependently(t *testing.T) {
	p := newProvider()
	applyErr := errors.New("update refused")
	p.applyErr[fwdZone] = applyErr

	res, err := newTestService(p).Reconcile(context.Background(), web1, baseOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, applyErr)
	assert.Contains(t, err.Error(), "zone "+fwdZone)

	assert.ErrorIs(t, res.Forward.Err, applyErr)
	assert.False(t, res.Forward.Applied)
	assert.NoError(t, res.Reverse.Err)
	assert.True(t, res.Reverse.Applied)
	assert.Len(t, p.records[revZone], 1)
}

func TestSync(t *testing.T) {
	t.Run("ReadsInventory", func(t *testing.T) {
		p := newProvider()
		svc := NewService(fakeSource{vms: web1}, p, nil, nil, zap.NewNop())

		res, err := svc.Sync(context.Background(), baseOptions())
		require.NoError(t, err)
		assert.Len(t, res.Forward.Additions, 1)
	})

	t.Run("InventoryError", func(t *testing.T) {
		p := newProvider()
		svc := NewService(fakeSource{err: errors.New("not authenticated")}, p, nil, nil, zap.NewNop())

		_, err := svc.Sync(context.Background(), baseOptions())
		require.Error(t, err)
		assert.Empty(t, p.calls)
	})
}

func TestReconcile_RecordsRun(t *testing.T) {
	p := newProvider()
	rec := &fakeRecorder{}
	svc := NewService(fakeSource{}, p, nil, rec, zap.NewNop())

	opts := baseOptions()
	opts.Mode = ModeDryRun
	_, err := svc.Reconcile(context.Background(), web1, opts)
	require.NoError(t, err)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, history.KindDNS, run.Kind)
	assert.Equal(t, history.StatusDryRun, run.Status)
	require.Len(t, run.Events, 2)
	assert.Equal(t, outcomePlanned, run.Events[0].Outcome)
	assert.JSONEq(t, `{"forward":{"add":1,"remove":0,"unchanged":0},"reverse":{"add":1,"remove":0,"unchanged":0},"dropped":0}`, run.Summary)
}

func TestConfigOptions(t *testing.T) {
	assert.Equal(t, ModeNormal, Config{}.Options().Mode)
	assert.Equal(t, DefaultTTL, Config{}.Options().TTL)
	assert.Equal(t, ModePurgeOnly, Config{PurgeOnly: true}.Options().Mode)
	assert.Equal(t, ModeDryRun, Config{PurgeOnly: true, DryRun: true}.Options().Mode)
	assert.Equal(t, uint32(60), Config{TTL: 60}.Options().TTL)

	pc := Config{Provider: "cloudflare", CloudflareToken: "tok"}.ProviderConfig()
	assert.Equal(t, "cloudflare", pc.Backend)
	assert.Equal(t, "tok", pc.CloudflareToken)
}
