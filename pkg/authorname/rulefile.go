package authorname

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// RuleKind names a list in a rule table.
type RuleKind string

const (
	KindParticle  RuleKind = "particle"
	KindSuffix    RuleKind = "suffix"
	KindShortName RuleKind = "short_name"
)

// ParseRuleKind accepts the singular or plural list name.
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "particle", "particles":
		return KindParticle, nil
	case "suffix", "suffixes":
		return KindSuffix, nil
	case "short_name", "short_names", "short":
		return KindShortName, nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown rule kind %q", s),
		"use one of: particle, suffix, short_name")
}

// RuleFile is an editable YAML rule table on disk. Every change is
// validated by rebuilding the table and then written back.
type RuleFile struct {
	mu    sync.RWMutex
	path  string
	doc   rulesFile
	rules *Rules
}

// OpenRuleFile loads path, or starts an empty table if it does not exist.
func OpenRuleFile(path string) (*RuleFile, error) {
	f := &RuleFile{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "read rule table %s", path)
	default:
		if err := yaml.Unmarshal(data, &f.doc); err != nil {
			return nil, errors.Wrapf(err, "decode rule table %s", path)
		}
	}
	if f.rules, err = f.doc.build(); err != nil {
		return nil, errors.Wrapf(err, "load rule table %s", path)
	}
	return f, nil
}

// Rules returns the table as currently saved.
func (f *RuleFile) Rules() *Rules {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rules
}

// Add appends entries to a list; particles go to group, "custom" when
// empty. Entries already present are ignored.
func (f *RuleFile) Add(kind RuleKind, group string, entries ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if kind == KindParticle && group == "" {
		group = "custom"
	}
	doc := f.doc.clone()
	list := doc.get(kind, group)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry != "" && !slices.Contains(list, entry) {
			list = append(list, entry)
		}
	}
	doc.set(kind, group, list)
	return f.commit(doc)
}

// Remove deletes entries from a list, from every particle group for
// particles, and returns how many were removed. Matching is by rule
// normalization, so "JR." removes "jr.".
func (f *RuleFile) Remove(kind RuleKind, entries ...string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	drop := make(map[string]bool, len(entries))
	for _, entry := range entries {
		drop[ruleNormalizer.Normalize(entry)] = true
	}

	doc := f.doc.clone()
	removed := 0
	filter := func(list []string) []string {
		out := list[:0]
		for _, entry := range list {
			if drop[ruleNormalizer.Normalize(entry)] {
				removed++
				continue
			}
			out = append(out, entry)
		}
		return out
	}

	switch kind {
	case KindParticle:
		for group, list := range doc.Particles {
			if kept := filter(list); len(kept) > 0 {
				doc.Particles[group] = kept
			} else {
				delete(doc.Particles, group)
			}
		}
	default:
		doc.set(kind, "", filter(doc.get(kind, "")))
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, f.commit(doc)
}

// commit validates doc and saves it (caller must hold lock).
func (f *RuleFile) commit(doc rulesFile) error {
	rules, err := doc.build()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode rule table")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".rules-*.yaml")
	if err != nil {
		return errors.Wrap(err, "create temp rule table")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write rule table")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close rule table")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "replace %s", f.path)
	}

	f.doc = doc
	f.rules = rules
	return nil
}

func (d rulesFile) clone() rulesFile {
	out := rulesFile{
		Particles:  make(map[string][]string, len(d.Particles)),
		Suffixes:   slices.Clone(d.Suffixes),
		ShortNames: slices.Clone(d.ShortNames),
	}
	for group, list := range d.Particles {
		out.Particles[group] = slices.Clone(list)
	}
	return out
}

func (d rulesFile) get(kind RuleKind, group string) []string {
	switch kind {
	case KindParticle:
		return d.Particles[group]
	case KindSuffix:
		return d.Suffixes
	default:
		return d.ShortNames
	}
}

func (d *rulesFile) set(kind RuleKind, group string, list []string) {
	switch kind {
	case KindParticle:
		d.Particles[group] = list
	case KindSuffix:
		d.Suffixes = list
	default:
		d.ShortNames = list
	}
}
