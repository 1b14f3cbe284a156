package authorname

import (
	"bytes"
	"sort"
	"strings"

	"github.com/blevesearch/vellum"
	"github.com/cockroachdb/errors"
)

// Lexicon is a closed, case-insensitive set of words or word sequences held
// in an FST. Multi-word entries ("de la") are keyed by their space-joined
// normalized words and matched as token windows.
type Lexicon struct {
	fst      *vellum.FST
	entries  []string
	maxWords int
}

var ruleNormalizer = RuleNormalizer()

// NewLexicon builds a lexicon from raw entries. Entries are rule-normalized;
// duplicates collapse. An entry that normalizes to nothing is an error.
func NewLexicon(entries ...string) (*Lexicon, error) {
	set := make(map[string]int, len(entries))
	for _, entry := range entries {
		words := normalizeWords(entry)
		if len(words) == 0 {
			return nil, errors.Newf("lexicon entry %q is empty after normalization", entry)
		}
		set[strings.Join(words, " ")] = len(words)
	}

	l := &Lexicon{entries: make([]string, 0, len(set))}
	for key, n := range set {
		l.entries = append(l.entries, key)
		if n > l.maxWords {
			l.maxWords = n
		}
	}
	sort.Strings(l.entries)

	if len(l.entries) == 0 {
		return l, nil
	}

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create lexicon builder")
	}
	for _, key := range l.entries {
		if err := builder.Insert([]byte(key), uint64(set[key])); err != nil {
			builder.Close()
			return nil, errors.Wrapf(err, "insert lexicon entry %q", key)
		}
	}
	if err := builder.Close(); err != nil {
		return nil, errors.Wrap(err, "close lexicon builder")
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "load lexicon fst")
	}
	l.fst = fst

	return l, nil
}

// MustLexicon is like NewLexicon but panics on error.
func MustLexicon(entries ...string) *Lexicon {
	l, err := NewLexicon(entries...)
	if err != nil {
		panic(err)
	}
	return l
}

// Contains reports whether text, normalized word by word, is an entry.
func (l *Lexicon) Contains(text string) bool {
	return l.containsKey(strings.Join(normalizeWords(text), " "))
}

func (l *Lexicon) containsKey(key string) bool {
	if l == nil || l.fst == nil || key == "" {
		return false
	}
	_, exists, _ := l.fst.Get([]byte(key))
	return exists
}

// MatchAt returns the length of the longest entry matching the normalized
// words starting at index i, or 0 when none matches.
func (l *Lexicon) MatchAt(words []string, i int) int {
	if l == nil || i < 0 || i >= len(words) {
		return 0
	}
	for n := min(l.maxWords, len(words)-i); n >= 1; n-- {
		if l.containsKey(strings.Join(words[i:i+n], " ")) {
			return n
		}
	}
	return 0
}

// Entries returns the normalized entries in sorted order.
func (l *Lexicon) Entries() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// MaxWords returns the word count of the longest entry.
func (l *Lexicon) MaxWords() int {
	if l == nil {
		return 0
	}
	return l.maxWords
}

// Union returns a lexicon holding the entries of both.
func (l *Lexicon) Union(other *Lexicon) (*Lexicon, error) {
	return NewLexicon(append(l.Entries(), other.Entries()...)...)
}

// normalizeWords splits text on whitespace and rule-normalizes each word,
// dropping words that normalize to nothing.
func normalizeWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if w := ruleNormalizer.Normalize(f); w != "" {
			words = append(words, w)
		}
	}
	return words
}
