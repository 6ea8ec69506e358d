package view

import "strings"

// FilterByName keeps the items whose name contains query, ignoring case.
// An empty query keeps everything.  The input is not modified.
func FilterByName[T any](items []T, name func(T) string, query string) []T {
	out := make([]T, 0, len(items))
	q := strings.ToLower(query)
	for _, it := range items {
		if strings.Contains(strings.ToLower(name(it)), q) {
			out = append(out, it)
		}
	}
	return out
}
