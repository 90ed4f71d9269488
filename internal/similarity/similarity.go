package similarity

import (
	"strings"

	"DocSim/internal/freq"
)

// DefaultDelimiters separate tokens in candidate documents.
var DefaultDelimiters = []rune{'\r', '\n', '\t', '\f', '.', ' ', '!'}

// IsDelimiter reports whether r is one of delims.
func IsDelimiter(r rune, delims []rune) bool {
	for _, d := range delims {
		if r == d {
			return true
		}
	}
	return false
}

// Tokenize splits text on delims and case-folds every token. Empty
// tokens are dropped.
func Tokenize(text string, delims []rune) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return IsDelimiter(r, delims)
	})
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}

// Score computes the similarity of doc against ref as a percentage.
//
// Each shared word contributes (countR/distinct(R)) * (countD/distinct(D)) * 100,
// where distinct is the number of unique words in a table, not the token
// count. Only words of ref are visited. Both tables must be frozen.
func Score(doc, ref *freq.Table) float64 {
	distinctD := float64(doc.Distinct())
	distinctR := float64(ref.Distinct())
	if distinctD == 0 || distinctR == 0 {
		return 0
	}

	score := 0.0
	ref.Range(func(word string, countR int) bool {
		countD, ok := doc.Count(word)
		if !ok {
			return true
		}
		freqR := float64(countR) / distinctR
		freqD := float64(countD) / distinctD
		score += freqR * freqD * 100
		return true
	})
	return score
}
