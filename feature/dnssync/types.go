package dnssync

import (
	"errors"
	"fmt"

	"pcadmin/core/dnszone"
	"pcadmin/core/reconcile"
)

// DefaultTTL is the record TTL used when none is configured.
const DefaultTTL uint32 = 301

// Mode selects what a sync does with the computed changes.
type Mode int

const (
	// ModeNormal applies removals and additions.
	ModeNormal Mode = iota
	// ModePurgeOnly applies removals only.
	ModePurgeOnly
	// ModeDryRun applies nothing.
	ModeDryRun
)

func (m Mode) String() string {
	switch m {
	case ModePurgeOnly:
		return "purge-only"
	case ModeDryRun:
		return "dry-run"
	default:
		return "normal"
	}
}

// Options controls one sync.
type Options struct {
	ForwardDomain    string
	ReverseDomain    string
	TTL              uint32
	Mode             Mode
	ShowDetails      bool
	ReplaceUnchanged bool
}

// ZoneResult is the outcome for one zone. Zones are applied independently,
// so one zone may succeed while the other fails.
type ZoneResult struct {
	Zone      string
	Kind      dnszone.Kind
	Additions []dnszone.Record
	Deletions []dnszone.Record
	Unchanged int
	// Applied is true when the change was submitted successfully.
	Applied bool
	// Err is the apply failure, if any.
	Err error
}

// Summary returns the planned counts of the zone.
func (z ZoneResult) Summary() reconcile.PlanSummary {
	return reconcile.PlanSummary{Add: len(z.Additions), Remove: len(z.Deletions), Unchanged: z.Unchanged}
}

// Result reports what a sync did.
type Result struct {
	Forward ZoneResult
	Reverse ZoneResult
	// Dropped are the inventory entries that produced no record.
	Dropped []Dropped
}

// Err joins the apply failures of both zones, each prefixed with its zone.
func (r *Result) Err() error {
	var errs []error
	for _, z := range []ZoneResult{r.Forward, r.Reverse} {
		if z.Err != nil {
			errs = append(errs, fmt.Errorf("zone %s: %w", z.Zone, z.Err))
		}
	}
	return errors.Join(errs...)
}

// Summary is the compact form of a result stored in the run journal.
type Summary struct {
	Forward reconcile.PlanSummary `json:"forward"`
	Reverse reconcile.PlanSummary `json:"reverse"`
	Dropped int                   `json:"dropped"`
}

// Summary returns the counts of the result.
func (r *Result) Summary() Summary {
	return Summary{
		Forward: r.Forward.Summary(),
		Reverse: r.Reverse.Summary(),
		Dropped: len(r.Dropped),
	}
}
