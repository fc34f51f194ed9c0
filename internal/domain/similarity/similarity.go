// Package similarity compares short display strings (listing titles, service names)
// with a normalized Levenshtein distance.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultMaxRatio is the distance/length ratio under which two titles are near-duplicates.
const DefaultMaxRatio = 0.2

// Normalize lower-cases s, trims it and collapses internal whitespace runs to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Distance returns the edit distance between the normalized forms of a and b.
// Insertions, deletions and substitutions cost 1 each and are counted per rune.
func Distance(a, b string) int {
	return distance(Normalize(a), Normalize(b))
}

func distance(na, nb string) int {
	if na == nb {
		return 0
	}
	return levenshtein.ComputeDistance(na, nb)
}

// Ratio returns Distance(a, b) divided by the longer normalized length.
// Two strings that both normalize to "" have ratio 0.
func Ratio(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 0
	}
	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	if longest == 0 {
		return 0
	}
	return float64(distance(na, nb)) / float64(longest)
}

// AreSimilar reports whether a and b are equal after normalization or their
// distance ratio is strictly below maxRatio.
func AreSimilar(a, b string, maxRatio float64) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return true
	}
	longest := max(utf8.RuneCountInString(na), utf8.RuneCountInString(nb))
	return float64(distance(na, nb))/float64(longest) < maxRatio
}
