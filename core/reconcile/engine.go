package reconcile

// Unique returns the values with distinct keys in their original order.
// When several values share a key the first one wins; the others are
// returned as duplicates.
func Unique[T any](items []T, key KeyFunc[T]) (unique []T, duplicates []T) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			duplicates = append(duplicates, item)
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, item)
	}
	return unique, duplicates
}

// KeySet builds a set from a list of keys.
func KeySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Missing splits desired values into the ones whose key is absent from
// existing and the ones already present. Present values are a no-op for
// the caller, which makes repeated runs idempotent.
func Missing[T any](desired []T, existing map[string]struct{}, key KeyFunc[T]) (missing []T, present []T) {
	for _, item := range desired {
		if _, ok := existing[key(item)]; ok {
			present = append(present, item)
			continue
		}
		missing = append(missing, item)
	}
	return missing, present
}

// group indexes values by key and returns the keys in first-seen order.
func group[T any](items []T, key KeyFunc[T]) (map[string][]T, []string) {
	byKey := make(map[string][]T)
	var order []string
	for _, item := range items {
		k := key(item)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], item)
	}
	return byKey, order
}
