package reconcile

// Replace computes the plan that replaces, for every desired key, the
// existing values under that key with the desired ones. Existing keys that
// are not desired are never touched.
//
// Values are not patched in place: a changed key yields a removal of all its
// existing values followed by the addition of the desired values, so a key
// never appears with conflicting operations in the same plan.
func Replace[T any](desired, existing []T, key KeyFunc[T], equal EqualFunc[T], opts Options) Plan[T] {
	wantByKey, order := group(desired, key)
	haveByKey, _ := group(existing, key)

	var plan Plan[T]
	for _, k := range order {
		want := wantByKey[k]
		have := haveByKey[k]

		if opts.RemoveOnly {
			plan.Remove = append(plan.Remove, have...)
			continue
		}

		if opts.SkipUnchanged && sameValues(want, have, equal) {
			plan.Unchanged = append(plan.Unchanged, have...)
			continue
		}

		plan.Remove = append(plan.Remove, have...)
		plan.Add = append(plan.Add, want...)
	}
	return plan
}

// sameValues reports whether both lists hold the same values, ignoring order.
func sameValues[T any](want, have []T, equal EqualFunc[T]) bool {
	if len(want) != len(have) {
		return false
	}
	used := make([]bool, len(have))
	for _, w := range want {
		found := false
		for i, h := range have {
			if !used[i] && equal(w, h) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
