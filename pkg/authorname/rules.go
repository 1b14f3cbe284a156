package authorname

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rules is the lexical rule table consulted by the filter pipeline.
type Rules struct {
	Particles  *Lexicon
	Suffixes   *Lexicon
	ShortNames *Lexicon

	// Groups maps a naming convention ("france", "germany", ...) to its
	// particles as written in the source table.
	Groups map[string][]string
}

// rulesFile mirrors the YAML layout of a rule table.
type rulesFile struct {
	Particles  map[string][]string `yaml:"particles"`
	Suffixes   []string            `yaml:"suffixes"`
	ShortNames []string            `yaml:"short_names"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *Rules {
	rules, err := LoadRules(bytes.NewReader(defaultRulesYAML))
	if err != nil {
		panic(errors.Wrap(err, "built-in rule table"))
	}
	return rules
}

// LoadRules reads a YAML rule table.
func LoadRules(r io.Reader) (*Rules, error) {
	var file rulesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WithHint(errors.Wrap(err, "decode rule table"),
			"expected top-level keys: particles, suffixes, short_names")
	}
	return file.build()
}

// LoadRulesFile reads a YAML rule table from path.
func LoadRulesFile(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open rule table %s", path)
	}
	defer f.Close()

	rules, err := LoadRules(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load rule table %s", path)
	}
	return rules, nil
}

func (f rulesFile) build() (*Rules, error) {
	groups := make([]string, 0, len(f.Particles))
	for group := range f.Particles {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var particles []string
	for _, group := range groups {
		particles = append(particles, f.Particles[group]...)
	}

	r := &Rules{Groups: f.Particles}
	var err error
	if r.Particles, err = NewLexicon(particles...); err != nil {
		return nil, errors.Wrap(err, "particles")
	}
	if r.Suffixes, err = NewLexicon(f.Suffixes...); err != nil {
		return nil, errors.Wrap(err, "suffixes")
	}
	if r.ShortNames, err = NewLexicon(f.ShortNames...); err != nil {
		return nil, errors.Wrap(err, "short names")
	}
	if r.Groups == nil {
		r.Groups = map[string][]string{}
	}
	return r, nil
}

// Merge returns a rule table extending r with the entries of other.
func (r *Rules) Merge(other *Rules) (*Rules, error) {
	merged := &Rules{Groups: make(map[string][]string, len(r.Groups)+len(other.Groups))}
	for _, src := range []map[string][]string{r.Groups, other.Groups} {
		for group, list := range src {
			merged.Groups[group] = append(merged.Groups[group], list...)
		}
	}

	var err error
	if merged.Particles, err = r.Particles.Union(other.Particles); err != nil {
		return nil, errors.Wrap(err, "merge particles")
	}
	if merged.Suffixes, err = r.Suffixes.Union(other.Suffixes); err != nil {
		return nil, errors.Wrap(err, "merge suffixes")
	}
	if merged.ShortNames, err = r.ShortNames.Union(other.ShortNames); err != nil {
		return nil, errors.Wrap(err, "merge short names")
	}
	return merged, nil
}

// IsParticle reports whether text is a nobiliary particle.
func (r *Rules) IsParticle(text string) bool {
	return r.Particles.Contains(text)
}

// IsSuffix reports whether text is a generational or ordinal suffix.
func (r *Rules) IsSuffix(text string) bool {
	return r.Suffixes.Contains(text)
}

// IsShortName reports whether text is a two-letter name that is always kept.
func (r *Rules) IsShortName(text string) bool {
	return r.ShortNames.Contains(text)
}
