package warehouse

import "strings"

// Resolve reconciles two independently derived labels for the same row.
// x and idX come from the left side of the join, y and idY from the right
// side. The right side is preferred when both are known and disagree, so
// Resolve(a, b) and Resolve(b, a) can differ.
func Resolve(x, y Label, idX, idY string) Warehouse {
	idX = strings.ToUpper(strings.TrimSpace(idX))
	idY = strings.ToUpper(strings.TrimSpace(idY))

	// 1. One side unknown, the other known: trust the known side only if its
	// location code is real.
	if x.Is(Unknown) && y.Valid && y.Value != Unknown {
		if isRealCode(idY) {
			return y.Value
		}
		return Incoherent
	}
	if y.Is(Unknown) && x.Valid && x.Value != Unknown {
		if isRealCode(idX) {
			return x.Value
		}
		return Incoherent
	}

	// 2. Generic floor against a known warehouse.
	if x.Is(Piso) && y.Valid && y.Value != Piso {
		if idY != "" {
			return y.Value
		}
		return Incoherent
	}
	if y.Is(Piso) && x.Valid && x.Value != Piso {
		if idX != "" {
			return x.Value
		}
		return Incoherent
	}

	// 3. Null and unknown combinations.
	switch {
	case !x.Valid && !y.Valid:
		return Incoherent
	case x.Is(Unknown) && !y.Valid, !x.Valid && y.Is(Unknown):
		return Incoherent
	case x.Is(Unknown) && y.Is(Unknown):
		return Unknown
	}

	// 4. Coalesce.
	switch {
	case !x.Valid:
		return y.Value
	case !y.Valid:
		return x.Value
	case x.Value == y.Value:
		return x.Value
	}

	// 5. Both known and different.
	if isRealCode(idY) {
		return y.Value
	}
	return Incoherent
}

func isRealCode(id string) bool {
	return id != "" && id != string(Unknown) && id != StoreCode
}
