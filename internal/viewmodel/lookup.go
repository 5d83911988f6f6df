package viewmodel

// BuildLookup indexes a fetched collection by id. Collections arrive from
// independent requests, so a lookup built from one may miss ids referenced
// by another; callers treat a miss as "unresolved", never as an error.
func BuildLookup[T any](rows []T, id func(T) int64) map[int64]T {
	m := make(map[int64]T, len(rows))
	for _, row := range rows {
		m[id(row)] = row
	}
	return m
}
