package reconcile

// KeyFunc extracts the reconciliation key (the record or item name) from a value.
type KeyFunc[T any] func(T) string

// EqualFunc reports whether two values with the same key carry the same payload.
type EqualFunc[T any] func(a, b T) bool

// Plan contains the changes needed to bring the existing set in line with
// the desired set.
type Plan[T any] struct {
	// Add holds desired values that must be created.
	Add []T
	// Remove holds existing values that must be deleted before Add is applied.
	Remove []T
	// Unchanged holds existing values that already match and are left alone.
	Unchanged []T
}

// IsEmpty reports whether applying the plan would change nothing.
func (p Plan[T]) IsEmpty() bool {
	return len(p.Add) == 0 && len(p.Remove) == 0
}

// Summary returns aggregate counts for the plan.
func (p Plan[T]) Summary() PlanSummary {
	return PlanSummary{
		Add:       len(p.Add),
		Remove:    len(p.Remove),
		Unchanged: len(p.Unchanged),
	}
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	Add       int `json:"add"`
	Remove    int `json:"remove"`
	Unchanged int `json:"unchanged"`
}

// Options controls how Replace builds a plan.
type Options struct {
	// SkipUnchanged leaves a key untouched when its existing values already
	// equal the desired ones. Without it every existing value under a desired
	// key is removed and re-added.
	SkipUnchanged bool

	// RemoveOnly drops all additions, producing a purge plan that deletes
	// every existing value under a desired key.
	RemoveOnly bool
}
