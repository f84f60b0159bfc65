package cell

import (
	"unicode"

	"github.com/unilibs/uniwidth"
)

// runeWidth returns r's terminal column width. uniwidth carries O(1) fast
// paths for ASCII, CJK and common emoji; it's the fast path for the large
// majority of cells a view call produces.
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// clusterWidth returns a grapheme cluster's column width. Single-rune
// clusters (the common case) go straight through runeWidth. Multi-rune
// clusters — emoji with skin-tone/variation-selector modifiers, ZWJ
// sequences, base+combining-mark pairs — use the width of the base (first)
// rune, since modifiers and combining marks never add columns of their own,
// except a variation selector (U+FE0E/FE0F) directly after the base, which
// can flip the base character between text and emoji presentation and is
// resolved with the full cluster string.
func clusterWidth(cluster string) int {
	runes := []rune(cluster)
	if len(runes) == 0 {
		return 0
	}
	if len(runes) == 1 {
		return runeWidth(runes[0])
	}
	if isZeroWidth(runes[0]) {
		return 0
	}
	if runes[1] == 0xFE0E || runes[1] == 0xFE0F {
		return uniwidth.StringWidth(cluster)
	}
	return runeWidth(runes[0])
}

func isZeroWidth(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Me, unicode.Mc)
}
