package model

import "strings"

// Renown levels, lowest to highest. Item requirements and player ranks
// are compared by position in this order.
const (
	RenownNone          = "None"
	RenownRespected     = "Respected"
	RenownDistinguished = "Distinguished"
	RenownFamed         = "Famed"
	RenownHero          = "Hero"
)

// RenownOrder is the fixed rank order used for purchase gating
var RenownOrder = []string{
	RenownNone,
	RenownRespected,
	RenownDistinguished,
	RenownFamed,
	RenownHero,
}

// renownIndex is the case-insensitive canonicalization table, built once.
// Shared by the normalizer and the requisition engine so the two never
// disagree on what a renown string means.
var renownIndex = func() map[string]int {
	m := make(map[string]int, len(RenownOrder))
	for i, r := range RenownOrder {
		m[strings.ToLower(r)] = i
	}
	return m
}()

// RenownRank returns the rank of a renown string, matched
// case-insensitively after trimming. Unknown values rank 0 (lowest),
// never an error.
func RenownRank(s string) int {
	if i, ok := renownIndex[strings.ToLower(strings.TrimSpace(s))]; ok {
		return i
	}
	return 0
}

// CanonicalRenown returns the canonical spelling for a renown string.
// The second return reports whether the input matched; unmatched or
// empty input canonicalizes to None.
func CanonicalRenown(s string) (string, bool) {
	if i, ok := renownIndex[strings.ToLower(strings.TrimSpace(s))]; ok {
		return RenownOrder[i], true
	}
	return RenownNone, false
}
