package authorname

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizerFunc defines a single normalization step.
type NormalizerFunc func(string) string

// Normalizer applies a configurable pipeline of normalization steps.
type Normalizer struct {
	steps []NormalizerFunc
}

// KeyNormalizer creates the normalizer used for frequency-table keys.
// Keys are case-folded but keep their accents, so "José" and "Jose" stay distinct.
func KeyNormalizer() *Normalizer {
	return &Normalizer{
		steps: []NormalizerFunc{
			NFCCompose,
			RemoveControlChars,
			TrimPunctuation,
			Lowercase,
		},
	}
}

// RuleNormalizer creates the normalizer used for lexical rule lookups.
// "Júnior", "JUNIOR" and "junior" all normalize to "junior".
func RuleNormalizer() *Normalizer {
	return &Normalizer{
		steps: []NormalizerFunc{
			NFKDDecompose,
			RemoveControlChars,
			TrimSeparators,
			Lowercase,
			ExpandLigatures,
			RemoveCombiningMarks,
		},
	}
}

// NewNormalizerWithSteps creates a normalizer with a custom pipeline.
func NewNormalizerWithSteps(steps ...NormalizerFunc) *Normalizer {
	return &Normalizer{steps: steps}
}

// Normalize applies all configured steps in order.
func (n *Normalizer) Normalize(s string) string {
	for _, step := range n.steps {
		s = step(s)
	}
	return s
}

// NFCCompose applies Unicode NFC normalization.
func NFCCompose(s string) string {
	return norm.NFC.String(s)
}

// NFKDDecompose applies Unicode NFKD normalization.
// Decomposes ú → u + combining acute, ﬁ → fi, etc.
func NFKDDecompose(s string) string {
	return norm.NFKD.String(s)
}

// RemoveControlChars removes Unicode control characters.
func RemoveControlChars(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Lowercase converts to lowercase with language-neutral rules.
// A Caser is stateful, so one is created per call.
func Lowercase(s string) string {
	return cases.Lower(language.Und).String(s)
}

// TrimPunctuation strips leading and trailing runes that are neither letters
// nor digits. Inner hyphens, dots and apostrophes are kept.
func TrimPunctuation(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.Is(unicode.Mn, r)
	})
}

// separators are stripped from token edges before rule lookups.
const separators = ",;:()[]\"'“”‘’"

// TrimSeparators strips list separators and quotes from the edges, keeping
// dots so "Jr." and "Jr" remain distinguishable entries.
func TrimSeparators(s string) string {
	return strings.Trim(s, separators)
}

// ExpandLigatures expands æ→ae, œ→oe.
func ExpandLigatures(s string) string {
	s = strings.ReplaceAll(s, "æ", "ae")
	s = strings.ReplaceAll(s, "Æ", "ae")
	s = strings.ReplaceAll(s, "œ", "oe")
	s = strings.ReplaceAll(s, "Œ", "oe")
	return s
}

// RemoveCombiningMarks removes Unicode combining characters (category Mn).
// Removes accents after NFKD decomposition.
func RemoveCombiningMarks(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if !unicode.Is(unicode.Mn, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
