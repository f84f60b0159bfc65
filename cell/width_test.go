package cell

import (
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

// TestClusterWidth_AgreesWithRunewidth cross-checks the uniwidth-backed fast
// path against go-runewidth for the simple (single-rune, non-ambiguous)
// cases where both libraries must agree, the same correctness-cross-check
// idiom used elsewhere in the corpus for this exact concern.
func TestClusterWidth_AgreesWithRunewidth(t *testing.T) {
	cases := []string{"a", "A", "1", " ", "中", "好"}
	for _, s := range cases {
		r := []rune(s)[0]
		assert.Equal(t, runewidth.RuneWidth(r), clusterWidth(s), "mismatch for %q", s)
	}
}

func TestClusterWidth_Emoji(t *testing.T) {
	assert.Equal(t, 2, clusterWidth("\U0001F44B"))                 // wave emoji alone
	assert.Equal(t, 2, clusterWidth("\U0001F44B\U0001F3FB"))       // emoji + skin-tone modifier, one cluster
	assert.Equal(t, 1, clusterWidth("é"))                    // e + combining acute accent, one cluster
}

func TestClusterWidth_ZeroWidthCombiner(t *testing.T) {
	assert.Equal(t, 0, clusterWidth("́"))
}
