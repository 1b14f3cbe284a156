package authorname

import (
	"strings"
)

// ParsedName is the structured result of one parse call.
type ParsedName struct {
	RawGiven   string      `json:"raw_given,omitempty"`
	RawFamily  string      `json:"raw_family,omitempty"`
	Given      []Component `json:"given"`
	Family     []Component `json:"family"`
	Unresolved []Component `json:"unresolved,omitempty"`
	// Confidence is the lowest per-token confidence; 1 when every role was
	// fixed by position, 0 for an empty name or when a token stayed unknown.
	Confidence float64 `json:"confidence"`
}

// GivenNames returns the given-name texts in order.
func (n ParsedName) GivenNames() []string { return ComponentTexts(n.Given) }

// FamilyNames returns the family-name texts in order.
func (n ParsedName) FamilyNames() []string { return ComponentTexts(n.Family) }

// Empty reports whether no component survived.
func (n ParsedName) Empty() bool {
	return len(n.Given) == 0 && len(n.Family) == 0 && len(n.Unresolved) == 0
}

// FallbackPolicy decides the role of a token the classifier left unknown.
// index counts the classified tokens of the string, starting at 0.
type FallbackPolicy func(index int, c Classification) Role

// FirstTokenGiven is the legacy policy for strings without a comma: an
// unknown first token is taken as a given name, others stay unknown.
func FirstTokenGiven(index int, _ Classification) Role {
	if index == 0 {
		return RoleGiven
	}
	return RoleUnknown
}

// Assembler composes filtered components into a ParsedName.
type Assembler struct {
	given         *Pipeline
	family        *Pipeline
	classifier    *Classifier
	commaSplit    bool
	stripSuffixes bool
	fallback      FallbackPolicy
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithCommaSplit enables reading "Family, Given" author strings positionally.
func WithCommaSplit(enabled bool) AssemblerOption {
	return func(a *Assembler) { a.commaSplit = enabled }
}

// WithFamilySuffixStripping removes "Jr.", "Júnior", "III" and the like from
// family-name fields.
func WithFamilySuffixStripping(enabled bool) AssemblerOption {
	return func(a *Assembler) { a.stripSuffixes = enabled }
}

// WithFallback sets the policy applied to tokens the classifier cannot decide.
func WithFallback(policy FallbackPolicy) AssemblerOption {
	return func(a *Assembler) { a.fallback = policy }
}

// NewAssembler creates an assembler. classifier may be nil, in which case
// every token of an undelimited author string stays unresolved.
func NewAssembler(given, family *Pipeline, classifier *Classifier, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		given:         given,
		family:        family,
		classifier:    classifier,
		commaSplit:    true,
		stripSuffixes: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds a name from separate given-name and family-name fields.
func (a *Assembler) Assemble(rawGiven, rawFamily string) ParsedName {
	return a.assemble(rawGiven, rawFamily, a.given.FilterString(rawGiven))
}

func (a *Assembler) assemble(rawGiven, rawFamily string, given []Component) ParsedName {
	family := a.FamilyComponents(rawFamily)
	name := ParsedName{
		RawGiven:  rawGiven,
		RawFamily: rawFamily,
		Given:     given,
		Family:    family,
	}
	if !name.Empty() {
		name.Confidence = 1
	}
	return name
}

// FamilyComponents filters a family-name field. Particles are kept.
func (a *Assembler) FamilyComponents(rawFamily string) []Component {
	family := a.family.FilterString(rawFamily)
	if a.stripSuffixes {
		family = a.family.Rules().StripSuffixes(family)
	}
	return family
}

// AssembleAuthor builds a name from a single author string. With comma
// splitting enabled, "Family, Given" is read positionally; otherwise each
// token's role comes from the classifier and particles join the family name.
func (a *Assembler) AssembleAuthor(raw string) ParsedName {
	if a.commaSplit {
		if family, given, ok := strings.Cut(raw, ","); ok {
			return a.Assemble(given, family)
		}
	}

	name := ParsedName{RawGiven: raw}
	rules := a.family.Rules()
	components := a.family.FilterString(raw)
	if a.stripSuffixes {
		components = rules.StripSuffixes(components)
	}

	words := make([]string, len(components))
	for i, c := range components {
		words[i] = ruleNormalizer.Normalize(c.Text)
	}

	confidence := 1.0
	index := 0
	for i := 0; i < len(components); {
		if n := rules.Particles.MatchAt(words, i); n > 0 {
			for _, c := range components[i : i+n] {
				c.Role = RoleFamily
				name.Family = append(name.Family, c)
			}
			i += n
			continue
		}

		c := a.classify(components[i].Text, index)
		confidence = min(confidence, c.Confidence)
		switch c.Role {
		case RoleGiven:
			name.Given = append(name.Given, c)
		case RoleFamily:
			name.Family = append(name.Family, c)
		default:
			name.Unresolved = append(name.Unresolved, c)
		}
		index++
		i++
	}

	if !name.Empty() {
		name.Confidence = confidence
	}
	return name
}

func (a *Assembler) classify(text string, index int) Component {
	var cls Classification
	if a.classifier != nil {
		cls = a.classifier.Classify(text)
	} else {
		cls = Classification{Token: text, Role: RoleUnknown}
	}

	role := cls.Role
	if role == RoleUnknown && a.fallback != nil {
		role = a.fallback(index, cls)
	}
	return Component{
		Text:       text,
		Role:       role,
		Confidence: cls.Confidence,
		Classified: true,
	}
}
