package warehouse

import "strings"

var intemperieCodes = setOf("C2PD", "C2PE", "C2PF", "C2PG", "C2PL", "C1PA", "C2PN", "C2PA", "C2P0", "C2PK", "C2PJ", "C2PI")

// Codes that belong to BODJ. Every entry starts with C and is therefore
// matched by the BODC prefix rule first; the list is kept so the rule table
// stays complete.
var bodjCodes = setOf("C1PA", "C2PJ", "C2PA", "C2P0", "C2PN", "C2PO", "C1PE", "C1PF", "C1PG", "C1PL", "C1PJ", "C1PK", "C1PI", "C2PK", "C2PI")

type rule struct {
	match  func(code string) bool
	result Warehouse
}

func exact(v string) func(string) bool { return func(c string) bool { return c == v } }
func prefix(p ...string) func(string) bool {
	return func(c string) bool {
		for _, x := range p {
			if strings.HasPrefix(c, x) {
				return true
			}
		}
		return false
	}
}
func inSet(s map[string]struct{}) func(string) bool {
	return func(c string) bool {
		_, ok := s[c]
		return ok
	}
}

// rules are evaluated top to bottom, first match wins.
var rules = []rule{
	{exact("P00000"), Piso},
	{prefix("E"), BODE},
	{exact("PE0000"), BODE},
	{inSet(intemperieCodes), Intemperie},
	{prefix("A"), BODA},
	{exact("PA0000"), BODA},
	{prefix("C"), BODC},
	{exact("PC0000"), BODC},
	{prefix("G"), BODG},
	{exact("PG0000"), BODG},
	{inSet(bodjCodes), BODJ},
	{exact("PN0000"), BODJ},
	{prefix("P", "B", "M", "V"), BODJ},
}

// Classify maps a raw location code to a warehouse. Codes matching no rule
// are DESCONOCIDO.
func Classify(code string) Warehouse {
	for _, r := range rules {
		if r.match(code) {
			return r.result
		}
	}
	return Unknown
}

func setOf(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
