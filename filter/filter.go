package filter

// Apply returns the entries matched by f, in their original order. A nil
// filter matches everything.
func Apply[E ~map[string]any](f Filter, entries []E) []E {
	if f == nil {
		return entries
	}

	matched := make([]E, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			matched = append(matched, e)
		}
	}
	return matched
}
