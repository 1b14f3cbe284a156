// Package phonetic computes phonetic keys for name tokens.
package phonetic

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SoundexLength is the length of a Soundex code.
const SoundexLength = 4

// Soundex returns the American Soundex code of s ("Robert" -> "R163").
// Diacritics are folded first; characters outside a-z are skipped. A string
// with no ASCII letter yields "".
func Soundex(s string) string {
	letters := foldASCII(s)
	if letters == "" {
		return ""
	}
	return matchr.Soundex(letters)
}

// Metaphone returns the primary Double Metaphone key of s ("Smith" -> "SM0"),
// folded and filtered like Soundex.
func Metaphone(s string) string {
	letters := foldASCII(s)
	if letters == "" {
		return ""
	}
	primary, _ := matchr.DoubleMetaphone(letters)
	return primary
}

// Keys returns both codes of s.
func Keys(s string) (soundex, metaphone string) {
	return Soundex(s), Metaphone(s)
}

func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
