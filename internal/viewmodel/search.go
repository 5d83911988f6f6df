package viewmodel

import "strings"

// Filter keeps the rows whose searchable fields contain query as a
// case-insensitive substring. The query is trimmed and lowercased; an empty
// query returns the input unchanged. Nil or missing fields participate as
// empty strings. Matching is plain substring, no tokenization — the order of
// the input is preserved.
func Filter[T any](query string, rows []T, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		haystack := strings.ToLower(strings.Join(fields(row), " | "))
		if strings.Contains(haystack, q) {
			out = append(out, row)
		}
	}
	return out
}
