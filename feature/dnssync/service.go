package dnssync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pcadmin/core/dnszone"
	"pcadmin/core/inventory"
	"pcadmin/core/metrics"
	"pcadmin/core/reconcile"
	"pcadmin/feature/history"

	"go.uber.org/zap"
)

// Record change outcomes stored in the run journal.
const (
	outcomeApplied = "applied"
	outcomePlanned = "planned"
	outcomeFailed  = "failed"

	operationAdd    = "add"
	operationRemove = "remove"
)

// Service reconciles the DNS records of the VM inventory.
type Service struct {
	source   inventory.Source
	provider dnszone.Provider
	metrics  *metrics.Metrics
	recorder history.Recorder
	logger   *zap.Logger
}

// NewService creates a DNS sync service. A nil recorder disables the run
// journal.
func NewService(source inventory.Source, provider dnszone.Provider, m *metrics.Metrics, recorder history.Recorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	return &Service{
		source:   source,
		provider: provider,
		metrics:  m,
		recorder: recorder,
		logger:   logger,
	}
}

// Sync reads the inventory and reconciles its records.
func (s *Service) Sync(ctx context.Context, opts Options) (*Result, error) {
	return s.observe(ctx, opts, func(run *history.Run) (*Result, error) {
		vms, err := s.source.VirtualMachines(ctx)
		if err != nil {
			return &Result{}, fmt.Errorf("failed to list virtual machines: %w", err)
		}
		return s.reconcile(ctx, vms, opts, run)
	})
}

// Reconcile brings the forward and reverse zones in line with vms. Missing
// zones and unreadable records abort before any change is applied. Apply
// failures are reported per zone and joined into the returned error.
func (s *Service) Reconcile(ctx context.Context, vms []inventory.VM, opts Options) (*Result, error) {
	return s.observe(ctx, opts, func(run *history.Run) (*Result, error) {
		return s.reconcile(ctx, vms, opts, run)
	})
}

func (s *Service) observe(ctx context.Context, opts Options, fn func(*history.Run) (*Result, error)) (*Result, error) {
	start := time.Now()
	run := history.NewRun(history.KindDNS)

	res, err := fn(run)

	s.metrics.IncSyncRun(metrics.SyncDNS, err == nil)
	s.metrics.ObserveSyncDuration(metrics.SyncDNS, time.Since(start))

	status := history.StatusSuccess
	if opts.Mode == ModeDryRun {
		status = history.StatusDryRun
	}
	run.Finish(status, res.Summary(), err)
	if rErr := s.recorder.Record(ctx, run); rErr != nil {
		s.logger.Warn("Failed to record DNS sync run", zap.Error(rErr))
	}
	return res, err
}

type zonePlan struct {
	zone     dnszone.Zone
	kind     dnszone.Kind
	desired  []dnszone.Record
	existing []dnszone.Record
}

func (s *Service) reconcile(ctx context.Context, vms []inventory.VM, opts Options, run *history.Run) (*Result, error) {
	res := &Result{}
	if opts.ForwardDomain == "" || opts.ReverseDomain == "" {
		return res, errors.New("both a forward and a reverse domain are required")
	}
	fwd := dnszone.Normalize(opts.ForwardDomain)
	rev := dnszone.Normalize(opts.ReverseDomain)
	res.Forward = ZoneResult{Zone: fwd, Kind: dnszone.KindForward}
	res.Reverse = ZoneResult{Zone: rev, Kind: dnszone.KindReverse}

	fz, err := s.provider.Zone(ctx, fwd)
	if err != nil {
		return res, fmt.Errorf("failed to resolve forward zone: %w", err)
	}
	rz, err := s.provider.Zone(ctx, rev)
	if err != nil {
		return res, fmt.Errorf("failed to resolve reverse zone: %w", err)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	desired := BuildDesired(vms, fwd, rev, ttl)
	res.Dropped = desired.Dropped
	for _, d := range desired.Dropped {
		s.logger.Warn("Skipping inventory entry", zap.String("vm", d.VM), zap.String("reason", d.Reason))
	}

	plans := []zonePlan{
		{zone: fz, kind: dnszone.KindForward, desired: desired.Forward},
		{zone: rz, kind: dnszone.KindReverse, desired: desired.Reverse},
	}
	for i := range plans {
		existing, err := s.provider.Records(ctx, plans[i].zone, plans[i].kind)
		if err != nil {
			return res, fmt.Errorf("failed to read %s records of zone %s: %w", plans[i].kind, plans[i].zone.Name, err)
		}
		plans[i].existing = existing
	}

	replaceOpts := reconcile.Options{
		SkipUnchanged: !opts.ReplaceUnchanged,
		RemoveOnly:    opts.Mode == ModePurgeOnly,
	}
	res.Forward = s.applyZone(ctx, plans[0], replaceOpts, opts, run)
	res.Reverse = s.applyZone(ctx, plans[1], replaceOpts, opts, run)

	s.logger.Info("DNS sync finished",
		zap.String("mode", opts.Mode.String()),
		zap.Int("vms", len(vms)),
		zap.Int("dropped", len(res.Dropped)),
		zap.Any("forward", res.Forward.Summary()),
		zap.Any("reverse", res.Reverse.Summary()))
	return res, res.Err()
}

// applyZone plans one zone and submits its change unless this is a dry run.
func (s *Service) applyZone(ctx context.Context, p zonePlan, replaceOpts reconcile.Options, opts Options, run *history.Run) ZoneResult {
	plan := reconcile.Replace(p.desired, p.existing, dnszone.Key, dnszone.SamePayload, replaceOpts)
	zr := ZoneResult{
		Zone:      p.zone.Name,
		Kind:      p.kind,
		Additions: plan.Add,
		Deletions: plan.Remove,
		Unchanged: len(plan.Unchanged),
	}
	log := s.logger.With(zap.String("zone", p.zone.Name), zap.Stringer("kind", p.kind))

	if opts.ShowDetails {
		for _, r := range plan.Remove {
			log.Info("Remove record", zap.String("record", r.RecordName()), zap.String("data", r.Payload()))
		}
		for _, r := range plan.Add {
			log.Info("Add record", zap.String("record", r.RecordName()), zap.String("data", r.Payload()))
		}
	}

	outcome := outcomePlanned
	switch {
	case opts.Mode == ModeDryRun:
		log.Info("Dry run, not applying", zap.Any("plan", plan.Summary()))
	case plan.IsEmpty():
		log.Info("Zone is up to date", zap.Int("unchanged", zr.Unchanged))
	default:
		if err := s.provider.Apply(ctx, p.zone, dnszone.Change{Additions: plan.Add, Deletions: plan.Remove}); err != nil {
			log.Error("Failed to apply zone change", zap.Error(err))
			zr.Err = err
			outcome = outcomeFailed
			break
		}
		zr.Applied = true
		outcome = outcomeApplied
		s.metrics.AddDNSChanges(p.zone.Name, p.kind.String(), operationRemove, len(plan.Remove))
		s.metrics.AddDNSChanges(p.zone.Name, p.kind.String(), operationAdd, len(plan.Add))
		log.Info("Applied zone change", zap.Any("plan", plan.Summary()))
	}

	for _, r := range plan.Remove {
		run.AddEvent(r.RecordName(), operationRemove, outcome, r.Payload())
	}
	for _, r := range plan.Add {
		run.AddEvent(r.RecordName(), operationAdd, outcome, r.Payload())
	}
	return zr
}
