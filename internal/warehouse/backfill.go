package warehouse

// BackfillUnknown fills DESCONOCIDO labels for clients whose other rows all
// agree on a single warehouse. It returns a new slice and the number of rows
// changed; the input is left untouched.
func BackfillUnknown[T any](rows []T, client func(T) string, get func(T) Label, set func(*T, Label)) ([]T, int) {
	seen := make(map[string]map[Label]struct{})
	for _, r := range rows {
		l := get(r)
		if l.Is(Unknown) {
			continue
		}
		c := client(r)
		if seen[c] == nil {
			seen[c] = make(map[Label]struct{})
		}
		seen[c][l] = struct{}{}
	}

	replacement := make(map[string]Label, len(seen))
	for c, labels := range seen {
		if len(labels) != 1 {
			continue
		}
		for l := range labels {
			if l.Valid {
				replacement[c] = l
			}
		}
	}

	out := make([]T, len(rows))
	copy(out, rows)
	filled := 0
	for i := range out {
		if !get(out[i]).Is(Unknown) {
			continue
		}
		if l, ok := replacement[client(out[i])]; ok {
			set(&out[i], l)
			filled++
		}
	}
	return out, filled
}
