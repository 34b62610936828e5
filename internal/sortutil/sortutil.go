// Package sortutil holds the small ordering helpers that keep plans and
// records byte-for-byte reproducible.
package sortutil

import "sort"

// StablePathSort returns a new slice containing the input paths sorted
// lexicographically. The original slice is not modified.
func StablePathSort(paths []string) []string {
	out := make([]string, len(paths))
	copy(out, paths)
	sort.Strings(out)
	return out
}

// Keys returns the keys of m in lexicographic order.
func Keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Unique returns the sorted, de-duplicated paths with empty strings dropped.
func Unique(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	return Keys(seen)
}
