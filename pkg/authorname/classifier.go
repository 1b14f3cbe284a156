package authorname

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Scoring selects how counts turn into probabilities.
type Scoring int

const (
	// ScoreLikelihood divides each count by its role's total across the
	// table: P(token | given) against P(token | family). It corrects for a
	// table that has seen far more family names than given names.
	ScoreLikelihood Scoring = iota
	// ScoreShare divides each count by the token's own observations.
	ScoreShare
)

// String returns the configuration name of the scoring.
func (s Scoring) String() string {
	if s == ScoreShare {
		return "share"
	}
	return "likelihood"
}

// ParseScoring parses "likelihood" or "share".
func ParseScoring(s string) (Scoring, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "likelihood":
		return ScoreLikelihood, nil
	case "share":
		return ScoreShare, nil
	}
	return ScoreLikelihood, errors.WithHint(
		errors.Newf("unknown scoring %q", s),
		"use one of: likelihood, share")
}

// Probabilities returns P(given) and P(family) for the counts. Zero
// denominators yield zero.
func (c Counts) Probabilities(scoring Scoring) (pGiven, pFamily float64) {
	if scoring == ScoreShare {
		n := c.Observations()
		if n == 0 {
			return 0, 0
		}
		return float64(c.Given) / float64(n), float64(c.Family) / float64(n)
	}
	return ratio(c.Given, c.TotalGiven), ratio(c.Family, c.TotalFamily)
}

func ratio(n, d uint64) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Classification is the classifier's verdict on one token.
type Classification struct {
	Token        string  `json:"token"`
	Role         Role    `json:"-"`
	Confidence   float64 `json:"confidence"`
	PGiven       float64 `json:"p_given"`
	PFamily      float64 `json:"p_family"`
	Observations uint64  `json:"observations"`
}

// Known reports whether the token was ever observed.
func (c Classification) Known() bool {
	return c.Observations > 0
}

// Classifier assigns the more probable role to a token using a frequency
// store. Probabilities are computed from the store's counts on every call.
type Classifier struct {
	store   Store
	scoring Scoring
}

// NewClassifier creates a classifier over store.
func NewClassifier(store Store, scoring Scoring) *Classifier {
	return &Classifier{store: store, scoring: scoring}
}

// Classify returns the most likely role of token. Unobserved tokens and
// ties are RoleUnknown; Confidence is the winning probability.
func (c *Classifier) Classify(token string) Classification {
	result := Classification{Token: token, Role: RoleUnknown}
	if c.store == nil {
		return result
	}

	counts := c.store.Query(token)
	result.Observations = counts.Observations()
	if result.Observations == 0 {
		return result
	}

	result.PGiven, result.PFamily = counts.Probabilities(c.scoring)
	switch {
	case result.PGiven > result.PFamily:
		result.Role = RoleGiven
		result.Confidence = result.PGiven
	case result.PFamily > result.PGiven:
		result.Role = RoleFamily
		result.Confidence = result.PFamily
	}
	return result
}

// Scoring returns the configured scoring.
func (c *Classifier) Scoring() Scoring {
	return c.scoring
}
