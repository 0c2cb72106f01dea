package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims s and puts it in Unicode NFC.
//
// Bangla names typed on different keyboards can arrive in different
// normalization forms; storing NFC keeps equality and search stable.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// FoldText normalizes s and case-folds it for matching.
func FoldText(s string) string {
	return cases.Fold().String(NormalizeText(s))
}

// MatchesQuery reports whether the folded query is contained in any of the
// candidate strings. An empty query matches everything.
func MatchesQuery(query string, candidates ...string) bool {
	q := FoldText(query)
	if q == "" {
		return true
	}
	for _, c := range candidates {
		if strings.Contains(FoldText(c), q) {
			return true
		}
	}
	return false
}
