package authorname

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// Mode selects which side of a name a pipeline filters.
type Mode int

const (
	// GivenMode applies every rule, including particle truncation and
	// suffix removal.
	GivenMode Mode = iota
	// FamilyMode keeps particles as family-name content and leaves
	// suffixes to the assembler.
	FamilyMode
)

// ParticleMode selects how a nobiliary particle inside a given-name field
// is treated.
//
// ParticleTruncate drops given names that coincide with a particle
// ("Dai", "Van" as in "Van Anh"). ParticleLenient lets a family name leak
// into the given names when the source put it there starting with a
// particle ("Van Der Berg" survives whole). ParticleReject gives up on the
// whole field, losing genuine given names that precede the particle.
type ParticleMode int

const (
	ParticleTruncate ParticleMode = iota
	ParticleLenient
	ParticleReject
)

// String returns the configuration name of the mode.
func (m ParticleMode) String() string {
	switch m {
	case ParticleLenient:
		return "lenient"
	case ParticleReject:
		return "reject"
	default:
		return "truncate"
	}
}

// ParseParticleMode parses "truncate", "lenient" or "reject".
func ParseParticleMode(s string) (ParticleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncate", "strict":
		return ParticleTruncate, nil
	case "lenient":
		return ParticleLenient, nil
	case "reject":
		return ParticleReject, nil
	}
	return ParticleTruncate, errors.WithHint(
		errors.Newf("unknown particle mode %q", s),
		"use one of: truncate, lenient, reject")
}

// Reason records which rule decided a token's fate.
type Reason int

const (
	Kept Reason = iota
	DroppedInitials
	DroppedSingleChar
	DroppedShortToken
	DroppedParticle
	DroppedSuffix
)

// String returns a short label for the reason.
func (r Reason) String() string {
	switch r {
	case DroppedInitials:
		return "initials"
	case DroppedSingleChar:
		return "single-char"
	case DroppedShortToken:
		return "short-token"
	case DroppedParticle:
		return "particle"
	case DroppedSuffix:
		return "suffix"
	default:
		return "kept"
	}
}

// Decision is the pipeline's verdict on one token.
type Decision struct {
	Token  Token
	Role   Role
	Reason Reason
}

// dotInitials matches one-letter segments separated by dots, with an
// optional hyphen after a dot and an optional trailing dot: "R.N.J.M.A.",
// "J.-B.", "J.". At least one dot is required; a bare letter is a single
// character, not an initial.
var dotInitials = regexp.MustCompile(`^\pL(?:\.-?\pL)+\.?$|^\pL\.$`)

// Pipeline filters a token sequence down to the name components it keeps.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	rules     *Rules
	mode      Mode
	particles ParticleMode
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithParticleMode sets how particles truncate a given-name field.
func WithParticleMode(m ParticleMode) PipelineOption {
	return func(p *Pipeline) { p.particles = m }
}

// NewPipeline creates a pipeline over rules. A nil rules table uses the
// built-in one.
func NewPipeline(rules *Rules, mode Mode, opts ...PipelineOption) *Pipeline {
	if rules == nil {
		rules = DefaultRules()
	}
	p := &Pipeline{rules: rules, mode: mode}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the side of the name this pipeline filters.
func (p *Pipeline) Mode() Mode { return p.mode }

// ParticleMode returns the configured particle handling.
func (p *Pipeline) ParticleMode() ParticleMode { return p.particles }

// Rules returns the rule table in use.
func (p *Pipeline) Rules() *Rules { return p.rules }

// Filter returns the surviving tokens in order, tagged with the pipeline's role.
func (p *Pipeline) Filter(tokens []Token) []Component {
	role := p.role()
	out := make([]Component, 0, len(tokens))
	for _, d := range p.Explain(tokens) {
		if d.Reason == Kept {
			out = append(out, Component{Text: d.Token.Text, Role: role, Confidence: 1})
		}
	}
	return out
}

// FilterString splits raw and filters the result.
func (p *Pipeline) FilterString(raw string) []Component {
	return p.Filter(SplitTokens(raw))
}

// Strings splits raw, filters it and returns the surviving texts.
func (p *Pipeline) Strings(raw string) []string {
	return ComponentTexts(p.FilterString(raw))
}

// Explain returns a decision for every token, in input order.
func (p *Pipeline) Explain(tokens []Token) []Decision {
	decisions := make([]Decision, len(tokens))
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		decisions[i] = Decision{Token: tok, Role: p.role()}
		words[i] = ruleNormalizer.Normalize(tok.Text)
	}

	drop := func(i int, reason Reason) {
		decisions[i].Role = RoleDiscarded
		decisions[i].Reason = reason
	}
	alive := func() []int {
		idx := make([]int, 0, len(decisions))
		for i, d := range decisions {
			if d.Reason == Kept {
				idx = append(idx, i)
			}
		}
		return idx
	}

	// Dot-separated initials go whole, hyphenated or not.
	for i, tok := range tokens {
		if dotInitials.MatchString(tok.Text) {
			drop(i, DroppedInitials)
		}
	}

	// Single characters, and tokens with no letters at all.
	for _, i := range alive() {
		text := tokens[i].Text
		if !hasLetter(text) || (runeLen(text) == 1 && !isHyphenated(text)) {
			drop(i, DroppedSingleChar)
		}
	}

	// Two-character tokens, unless excepted or part of a particle run.
	live := alive()
	inParticle := p.particleCover(live, words)
	allShort := true
	for _, i := range live {
		if runeLen(tokens[i].Text) > 2 {
			allShort = false
			break
		}
	}
	for _, i := range live {
		text := tokens[i].Text
		if isHyphenated(text) || inParticle[i] || runeLen(text) != 2 {
			continue
		}
		if p.rules.ShortNames.containsKey(words[i]) {
			continue
		}
		if allShort && consonantVowel(text, words[i]) {
			continue
		}
		drop(i, DroppedShortToken)
	}

	if p.mode != GivenMode {
		return decisions
	}

	p.truncateAtParticle(alive(), words, drop)

	for _, i := range alive() {
		if p.rules.Suffixes.containsKey(words[i]) {
			drop(i, DroppedSuffix)
		}
	}

	return decisions
}

// particleCover marks the token indices that belong to a particle window.
func (p *Pipeline) particleCover(live []int, words []string) map[int]bool {
	seq := pick(words, live)
	cover := make(map[int]bool)
	for j := 0; j < len(seq); {
		n := p.rules.Particles.MatchAt(seq, j)
		if n == 0 {
			j++
			continue
		}
		for k := j; k < j+n; k++ {
			cover[live[k]] = true
		}
		j += n
	}
	return cover
}

func (p *Pipeline) truncateAtParticle(live []int, words []string, drop func(int, Reason)) {
	seq := pick(words, live)
	for j := 0; j < len(seq); {
		n := p.rules.Particles.MatchAt(seq, j)
		if n == 0 {
			j++
			continue
		}
		if j == 0 && p.particles == ParticleLenient {
			j += n
			continue
		}
		from := j
		if p.particles == ParticleReject {
			from = 0
		}
		for _, i := range live[from:] {
			drop(i, DroppedParticle)
		}
		return
	}
}

func (p *Pipeline) role() Role {
	if p.mode == FamilyMode {
		return RoleFamily
	}
	return RoleGiven
}

// StripSuffixes removes suffix components ("Júnior", "III") wherever they occur.
func (r *Rules) StripSuffixes(components []Component) []Component {
	out := components[:0:0]
	for _, c := range components {
		if !r.Suffixes.Contains(c.Text) {
			out = append(out, c)
		}
	}
	return out
}

func pick(words []string, idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = words[i]
	}
	return out
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func isHyphenated(s string) bool {
	return strings.ContainsRune(s, '-')
}

// consonantVowel reports whether a two-letter token reads as consonant then
// vowel ("Xi", "Wu"). An upper-case second letter marks initials ("MA").
func consonantVowel(raw, normalized string) bool {
	rr := []rune(raw)
	nr := []rune(normalized)
	if len(rr) != 2 || len(nr) != 2 || unicode.IsUpper(rr[1]) {
		return false
	}
	return unicode.IsLetter(nr[0]) && !strings.ContainsRune("aeiou", nr[0]) &&
		strings.ContainsRune("aeiouy", nr[1])
}
