package records

import (
	"cmp"
	"slices"
	"time"
)

// Group is the rows sharing one key, in input order.
type Group[K comparable, T any] struct {
	Key  K
	Rows []T
}

// GroupBy partitions rows by key. Groups come out in first-appearance order.
func GroupBy[K comparable, T any](rows []T, key func(T) K) []Group[K, T] {
	pos := make(map[K]int)
	var groups []Group[K, T]
	for _, r := range rows {
		k := key(r)
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// FirstBy indexes the first row per key.
func FirstBy[K comparable, T any](rows []T, key func(T) K) map[K]T {
	out := make(map[K]T, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := out[k]; !ok {
			out[k] = r
		}
	}
	return out
}

// Dedup keeps the first row for every key. Applying it twice is a no-op.
func Dedup[T any](rows []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortByDateDesc stably sorts a copy of rows most recent first. Null dates
// go last.
func SortByDateDesc[T any](rows []T, date func(T) time.Time) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		da, db := date(a), date(b)
		switch {
		case da.IsZero() && db.IsZero():
			return 0
		case da.IsZero():
			return 1
		case db.IsZero():
			return -1
		}
		return db.Compare(da)
	})
	return out
}

// SortedKeys returns map keys in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// InRange reports whether t lies in [start, end]. Zero bounds are open.
func InRange(t, start, end time.Time) bool {
	if t.IsZero() {
		return false
	}
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}
