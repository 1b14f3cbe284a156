package authorname

import (
	"iter"
	"sort"
)

// Tally accumulates partial counts for one worker. It is not safe for
// concurrent use; each worker owns its own and a single writer merges them
// into a store. Merging is commutative and associative.
type Tally struct {
	records map[string]*Record
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{records: make(map[string]*Record)}
}

// Observe counts one observation of token in role. Empty tokens and roles
// other than given or family are ignored.
func (t *Tally) Observe(token string, role Role) bool {
	key := NormalizeKey(token)
	if key == "" {
		return false
	}
	switch role {
	case RoleGiven:
		t.record(key).Given++
	case RoleFamily:
		t.record(key).Family++
	default:
		return false
	}
	return true
}

// Add merges other into t.
func (t *Tally) Add(other *Tally) {
	for key, rec := range other.records {
		r := t.record(key)
		r.Given += rec.Given
		r.Family += rec.Family
	}
}

// Len returns the number of distinct tokens seen.
func (t *Tally) Len() int {
	return len(t.records)
}

// Rows yields the tally's counts ordered by token.
func (t *Tally) Rows() iter.Seq[Record] {
	rows := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		rows = append(rows, *rec)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Token < rows[j].Token })
	return RecordsOf(rows...)
}

func (t *Tally) record(key string) *Record {
	rec, ok := t.records[key]
	if !ok {
		rec = &Record{Token: key}
		t.records[key] = rec
	}
	return rec
}
