// Package reconcile provides the generic set reconciliation used by the sync
// features.
//
// Both syncs follow the same three steps: enumerate the desired state from a
// live source, enumerate the current state of the target, then compute and
// apply the minimal difference. This package owns only the third step's
// computation; fetching and applying stay with the callers.
//
// # Idempotency Gate
//
// Missing splits desired values into the ones absent from the target and the
// ones already present. Present values are skipped, so a second run against
// an unchanged target performs no work.
//
// # Replace Plans
//
// Replace pairs desired and existing values by key. Values are never patched:
// a key that must change yields removals of every existing value under it and
// additions of the desired values. SkipUnchanged keeps keys whose values
// already match; RemoveOnly produces a purge plan.
//
//	plan := reconcile.Replace(desired, existing, keyFn, equalFn,
//	    reconcile.Options{SkipUnchanged: true})
//	if plan.IsEmpty() {
//	    return nil
//	}
package reconcile
