package resolver

import "slices"

// Dedup returns the distinct names in sorted order. The input is not
// modified. Dedup(Dedup(xs)) equals Dedup(xs).
func Dedup(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}

// Contains reports whether set holds name exactly.
func Contains(set []string, name string) bool {
	return slices.Contains(set, name)
}
