package fuzzy

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/set-night/mesabot/internal/textnorm"
)

const (
	tokenScale   = 0.95
	partialScale = 0.90
	// Candidates this much longer than the fragment are also compared
	// window by window.
	partialLengthRatio = 1.5
)

// Score returns the similarity of a and b on a 0-100 scale, 100 meaning the
// normalized strings are identical. It takes the best of a plain edit-distance
// ratio, the ratio of the sorted tokens and, for strings of very different
// length, the best ratio of the shorter one against a window of the longer.
func Score(a, b string) int {
	a = strings.TrimSpace(textnorm.Normalize(a))
	b = strings.TrimSpace(textnorm.Normalize(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	best := ratio(a, b)
	best = math.Max(best, ratio(sortTokens(a), sortTokens(b))*tokenScale)

	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if float64(len(long))/float64(len(short)) >= partialLengthRatio {
		best = math.Max(best, partialRatio(short, long)*partialScale)
	}

	return int(math.Round(best))
}

func ratio(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}

// partialRatio slides short over long; both are ASCII after normalization.
func partialRatio(short, long string) float64 {
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(short, long[i:i+len(short)])
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// BestMatch returns the candidate with the highest Score against fragment.
// Ties keep the earliest candidate. ok is false when candidates is empty.
func BestMatch(fragment string, candidates []string) (match string, score int, ok bool) {
	score = -1
	for _, c := range candidates {
		s := Score(fragment, c)
		if s > score {
			match, score, ok = c, s, true
		}
	}
	if !ok {
		return "", 0, false
	}
	return match, score, true
}
