package authorname

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// CacheSize is the default maximum number of cached given-name filter results.
const CacheSize = 100_000

// Config configures a Parser.
type Config struct {
	// Rules is the lexical rule table; nil uses DefaultRules.
	Rules *Rules
	// Store is the frequency table; nil uses an empty MemoryStore.
	Store Store

	ParticleMode ParticleMode
	Scoring      Scoring

	// Cache memoizes given-name filtering per raw string.
	Cache     bool
	CacheSize int

	CommaSplit          bool
	StripFamilySuffixes bool
	Fallback            FallbackPolicy

	// Logger receives debug output; nil keeps the parser silent.
	Logger *zap.SugaredLogger
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Cache:               true,
		CacheSize:           CacheSize,
		CommaSplit:          true,
		StripFamilySuffixes: true,
	}
}

// Parser is the entry point: it splits, filters, classifies and assembles
// author names, and trains its frequency store from labeled names.
// All methods are safe for concurrent use.
type Parser struct {
	rules      *Rules
	store      Store
	given      *Pipeline
	family     *Pipeline
	classifier *Classifier
	assembler  *Assembler
	cache      *lru.Cache[string, []Component]
	logger     *zap.SugaredLogger
}

// New creates a parser.
func New(cfg Config) (*Parser, error) {
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}

	p := &Parser{
		rules:  rules,
		store:  store,
		given:  NewPipeline(rules, GivenMode, WithParticleMode(cfg.ParticleMode)),
		family: NewPipeline(rules, FamilyMode),
		logger: cfg.Logger,
	}
	p.classifier = NewClassifier(store, cfg.Scoring)
	p.assembler = NewAssembler(p.given, p.family, p.classifier,
		WithCommaSplit(cfg.CommaSplit),
		WithFamilySuffixStripping(cfg.StripFamilySuffixes),
		WithFallback(cfg.Fallback),
	)

	if cfg.Cache {
		size := cfg.CacheSize
		if size <= 0 {
			size = CacheSize
		}
		cache, err := lru.New[string, []Component](size)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}

	if p.logger != nil {
		p.logger.Debugw("Parser ready",
			"particles", rules.Particles.Len(),
			"suffixes", rules.Suffixes.Len(),
			"short_names", rules.ShortNames.Len(),
			"particle_mode", cfg.ParticleMode.String(),
			"scoring", cfg.Scoring.String(),
			"cache", p.cache != nil,
		)
	}
	return p, nil
}

// GivenComponents filters a given-name field.
func (p *Parser) GivenComponents(rawGiven string) []Component {
	if p.cache == nil {
		return p.given.FilterString(rawGiven)
	}

	// LRU is thread-safe; callers get their own copy.
	if result, ok := p.cache.Get(rawGiven); ok {
		return append([]Component(nil), result...)
	}
	result := p.given.FilterString(rawGiven)
	p.cache.Add(rawGiven, result)
	return append([]Component(nil), result...)
}

// GivenNames returns the given names kept from a given-name field.
func (p *Parser) GivenNames(rawGiven string) []string {
	return ComponentTexts(p.GivenComponents(rawGiven))
}

// FamilyNames returns the family-name tokens kept from a family-name field.
func (p *Parser) FamilyNames(rawFamily string) []string {
	return ComponentTexts(p.assembler.FamilyComponents(rawFamily))
}

// Parse builds a name from separate given-name and family-name fields.
func (p *Parser) Parse(rawGiven, rawFamily string) ParsedName {
	return p.assembler.assemble(rawGiven, rawFamily, p.GivenComponents(rawGiven))
}

// ParseAuthor builds a name from a single author string.
func (p *Parser) ParseAuthor(raw string) ParsedName {
	return p.assembler.AssembleAuthor(raw)
}

// Explain reports the pipeline's decision for every token of a field.
func (p *Parser) Explain(raw string, mode Mode) []Decision {
	if mode == FamilyMode {
		return p.family.Explain(SplitTokens(raw))
	}
	return p.given.Explain(SplitTokens(raw))
}

// Classify returns the most likely role of a single token.
func (p *Parser) Classify(token string) Classification {
	return p.classifier.Classify(token)
}

// Train records one labeled observation in the store.
func (p *Parser) Train(token string, role Role) error {
	return p.store.Train(token, role)
}

// TrainName trains the store with every component of a labeled name and
// returns the number of observations recorded.
func (p *Parser) TrainName(rawGiven, rawFamily string) (int, error) {
	name := p.Parse(rawGiven, rawFamily)
	n := 0
	for _, group := range [][]Component{name.Given, name.Family} {
		for _, c := range group {
			if err := p.store.Train(c.Text, c.Role); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// TallyName counts the components of a labeled name into t without
// touching the store, so workers can train in parallel and merge later.
func (p *Parser) TallyName(t *Tally, rawGiven, rawFamily string) int {
	name := p.Parse(rawGiven, rawFamily)
	n := 0
	for _, group := range [][]Component{name.Given, name.Family} {
		for _, c := range group {
			if t.Observe(c.Text, c.Role) {
				n++
			}
		}
	}
	return n
}

// Store returns the frequency store.
func (p *Parser) Store() Store { return p.store }

// Rules returns the rule table.
func (p *Parser) Rules() *Rules { return p.rules }

// CacheSize returns the number of cached entries (0 if cache is disabled).
func (p *Parser) CacheSize() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

// ClearCache clears the filter cache.
func (p *Parser) ClearCache() {
	if p.cache != nil {
		p.cache.Purge()
	}
}

// CacheEnabled returns true if caching is enabled.
func (p *Parser) CacheEnabled() bool {
	return p.cache != nil
}
