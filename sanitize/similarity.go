package sanitize

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/lehigh-university-libraries/legacyjats/helpers"
)

// Similarity compares the text of two fragments. Tags are stripped, the
// text is split on whitespace and the token sequences are aligned with a
// sequence matcher. The ratio is in [0, 1]; two texts without tokens are
// identical.
func Similarity(a, b string) float64 {
	ta := helpers.Tokens(helpers.StripTags(a))
	tb := helpers.Tokens(helpers.StripTags(b))
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	return difflib.NewMatcher(ta, tb).Ratio()
}

// Choose picks between an original fragment and its repaired variant.
// A ratio of 1.0 always keeps the repair, as does any ratio above
// threshold; otherwise the original is kept and ok is false.
func Choose(original, repaired string, threshold float64) (chosen string, ok bool) {
	ratio := Similarity(original, repaired)
	if ratio == 1 || ratio > threshold {
		return repaired, true
	}
	return original, false
}
