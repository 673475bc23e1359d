package contentsync

import (
	"errors"
	"fmt"

	"pcadmin/core/catalog"
)

var (
	// ErrBucketNotFound aborts a sync whose bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrNoMatchingObjects aborts a sync when no object has an allowed suffix.
	ErrNoMatchingObjects = errors.New("no objects match the allowed file types")

	errNotPublic     = errors.New("object is not publicly readable and auto grant is disabled")
	errDuplicateName = errors.New("another object in this run maps to the same item name")
)

// Strategy selects how an object reaches the catalog.
type Strategy int

const (
	// StrategyDirect lets the catalog fetch the object by public URL.
	StrategyDirect Strategy = iota
	// StrategyStaged downloads the object locally and uploads it.
	StrategyStaged
)

func (s Strategy) String() string {
	if s == StrategyStaged {
		return "staged"
	}
	return "direct"
}

// Options controls one sync.
type Options struct {
	Bucket       string
	Prefix       string
	Suffixes     []string
	Strategy     Strategy
	AutoGrant    bool
	AlwaysRevoke bool
	LeavePublic  bool
	StageDir     string
	DryRun       bool
}

// Candidate is a storage object eligible for import.
type Candidate struct {
	Key  string
	Size int64
	Item catalog.Item
}

// ItemFailure is a per-object failure that did not stop the sync.
type ItemFailure struct {
	Object string
	Item   string
	Err    error
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Object, f.Err)
}

// Result reports what a sync did.
type Result struct {
	// Candidates are the objects that matched the suffix filter.
	Candidates []Candidate
	// Imported are the item names created in the catalog.
	Imported []string
	// Skipped are the item names already present in the catalog.
	Skipped []string
	// Planned are the item names a dry run would have imported.
	Planned []string
	// Failures are the objects that could not be imported.
	Failures []ItemFailure
}

// Summary is the compact form of a result stored in the run journal.
type Summary struct {
	Candidates int `json:"candidates"`
	Imported   int `json:"imported"`
	Skipped    int `json:"skipped"`
	Planned    int `json:"planned"`
	Failed     int `json:"failed"`
}

// Summary returns the counts of the result.
func (r *Result) Summary() Summary {
	return Summary{
		Candidates: len(r.Candidates),
		Imported:   len(r.Imported),
		Skipped:    len(r.Skipped),
		Planned:    len(r.Planned),
		Failed:     len(r.Failures),
	}
}
