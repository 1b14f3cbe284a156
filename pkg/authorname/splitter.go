package authorname

import (
	"unicode"
)

// Token is a whitespace-delimited unit of a raw name string.
// Casing and embedded punctuation (hyphens, dots, apostrophes) are kept.
type Token struct {
	Text  string
	Start int // rune offset
	End   int
}

// SplitTokens splits a raw name string on runs of whitespace.
// Hyphens and dots never split a token. Empty or whitespace-only input
// yields an empty slice.
func SplitTokens(raw string) []Token {
	tokens := []Token{}
	runes := []rune(raw)

	start := -1
	for i := 0; i <= len(runes); i++ {
		space := i == len(runes) || unicode.IsSpace(runes[i])

		switch {
		case space && start >= 0:
			tokens = append(tokens, Token{
				Text:  string(runes[start:i]),
				Start: start,
				End:   i,
			})
			start = -1
		case !space && start < 0:
			start = i
		}
	}

	return tokens
}

// TokensOf wraps already separated texts as tokens, skipping empty ones.
// Offsets are assigned as if the texts were joined by single spaces.
func TokensOf(texts ...string) []Token {
	tokens := make([]Token, 0, len(texts))
	pos := 0
	for _, text := range texts {
		if text == "" {
			continue
		}
		n := len([]rune(text))
		tokens = append(tokens, Token{Text: text, Start: pos, End: pos + n})
		pos += n + 1
	}
	return tokens
}

// Texts returns the text of each token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

// runeLen returns the token length in runes.
func runeLen(s string) int {
	return len([]rune(s))
}
