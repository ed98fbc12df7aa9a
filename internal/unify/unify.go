// Package unify merges the per-warehouse export sets into one table per role.
package unify

import (
	"fmt"

	"github.com/andresuchdata/warehouse-recon/internal/source"
)

// IdentifierColumns receive the warehouse suffix in non-primary exports.
var IdentifierColumns = []string{
	"idingreso", "idcontacto", "idcentro", "retnum", "trannum",
	"numero", "idmodelo", "referencia", "idcentro1",
}

// productIDPrefixLen is the length of the intake id embedded in idproducto.
const productIDPrefixLen = 10

// Unified holds one table per role after suffixing and concatenation.
// DispatchedStock and UnfilteredStock are independent copies of Stock.
type Unified struct {
	Tables          map[source.Role]*source.Table
	DispatchedStock *source.Table
	UnfilteredStock *source.Table
}

// Table returns the unified table for role, never nil.
func (u *Unified) Table(role source.Role) *source.Table {
	if t, ok := u.Tables[role]; ok && t != nil {
		return t
	}
	return source.NewTable(string(role), nil)
}

// Unify suffixes identifiers of every warehouse after the first and stacks
// the role tables. The input sets are not modified.
func Unify(sets []*source.WarehouseSet) *Unified {
	perRole := make(map[source.Role][]*source.Table, len(source.Roles))
	for _, set := range sets {
		for _, role := range source.Roles {
			t := set.Tables[role].Clone()
			if t == nil {
				continue
			}
			prepare(role, t)
			applySuffix(t, set.Source.Suffix)
			perRole[role] = append(perRole[role], t)
		}
	}

	u := &Unified{Tables: make(map[source.Role]*source.Table, len(source.Roles))}
	for _, role := range source.Roles {
		u.Tables[role] = source.Concat(string(role), perRole[role]...)
	}
	u.DispatchedStock = u.Table(source.RoleStock).Clone()
	u.UnfilteredStock = u.Table(source.RoleStock).Clone()
	return u
}

// prepare applies the per-role fixes that must happen before suffixing.
func prepare(role source.Role, t *source.Table) {
	switch role {
	case source.RoleProductLines:
		prod := t.Col("idproducto")
		t.AddColumn("idingreso", func(row []string) string {
			id := source.Get(row, prod)
			if len(id) > productIDPrefixLen {
				return id[:productIDPrefixLen]
			}
			return id
		})
	case source.RoleClients:
		if t.Has("codigo") && t.Has("nombre") {
			t.Rename("codigo", "idcontacto")
			t.Rename("nombre", "descrip")
		}
	}
}

func applySuffix(t *source.Table, suffix string) {
	if suffix == "" {
		return
	}
	for _, col := range IdentifierColumns {
		idx := t.Col(col)
		if idx < 0 {
			continue
		}
		for _, row := range t.Rows {
			if v := source.Get(row, idx); v != "" {
				row[idx] = v + suffix
			}
		}
	}
}

// DuplicateKeys returns natural keys that occur more than once in t,
// together with their counts. Rows with a blank key are ignored.
func DuplicateKeys(t *source.Table, columns ...string) (map[string]int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.Col(c)
		if idx[i] < 0 {
			return nil, fmt.Errorf("table %s has no column %s", t.Name, c)
		}
	}

	counts := make(map[string]int)
	for _, row := range t.Rows {
		key := ""
		blank := true
		for _, i := range idx {
			v := source.Get(row, i)
			if v != "" {
				blank = false
			}
			key += v + "\x1f"
		}
		if !blank {
			counts[key]++
		}
	}
	for k, n := range counts {
		if n < 2 {
			delete(counts, k)
		}
	}
	return counts, nil
}
