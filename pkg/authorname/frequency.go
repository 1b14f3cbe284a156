package authorname

import (
	"iter"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrEmptyToken is returned when a token normalizes to nothing.
	ErrEmptyToken = errors.New("token is empty after normalization")
	// ErrReadOnly is returned by stores that cannot be trained.
	ErrReadOnly = errors.New("frequency store is read-only")
	// ErrInvalidRole is returned when training with a role other than given or family.
	ErrInvalidRole = errors.New("training role must be given or family")
)

// Record is one row of the frequency table.
type Record struct {
	Token  string
	Given  uint64
	Family uint64
}

// Total returns the number of observations of the token.
func (r Record) Total() uint64 {
	return r.Given + r.Family
}

// Counts is a consistent view of one token's record and the table totals.
type Counts struct {
	Given       uint64
	Family      uint64
	TotalGiven  uint64
	TotalFamily uint64
}

// Observations returns how often the token was seen in either role.
func (c Counts) Observations() uint64 {
	return c.Given + c.Family
}

// Store is a frequency table of name tokens.
type Store interface {
	// Train records one observation of token acting in role.
	Train(token string, role Role) error
	// Query returns the token's counts and the table totals.
	Query(token string) Counts
	// Load adds rows to the table; counts for a token already present are summed.
	Load(rows iter.Seq[Record]) error
	// Export yields every row, ordered by token.
	Export() iter.Seq[Record]
	// Len returns the number of distinct tokens.
	Len() int
}

var keyNormalizer = KeyNormalizer()

// NormalizeKey returns the frequency-table key of a token.
func NormalizeKey(token string) string {
	return keyNormalizer.Normalize(token)
}

// MemoryStore is an in-memory Store. Training is serialized under a write
// lock; queries read a consistent snapshot under the read lock.
type MemoryStore struct {
	mu          sync.RWMutex
	records     map[string]*Record
	totalGiven  uint64
	totalFamily uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Train increments the given or family count of token.
func (s *MemoryStore) Train(token string, role Role) error {
	key := NormalizeKey(token)
	if key == "" {
		return ErrEmptyToken
	}
	var given, family uint64
	switch role {
	case RoleGiven:
		given = 1
	case RoleFamily:
		family = 1
	default:
		return errors.Wrapf(ErrInvalidRole, "train %q as %s", token, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(key, given, family)
	return nil
}

// add applies counts without locking (caller must hold lock).
func (s *MemoryStore) add(key string, given, family uint64) {
	rec, ok := s.records[key]
	if !ok {
		rec = &Record{Token: key}
		s.records[key] = rec
	}
	rec.Given += given
	rec.Family += family
	s.totalGiven += given
	s.totalFamily += family
}

// Query returns the counts of token. Unknown tokens have zero counts.
func (s *MemoryStore) Query(token string) Counts {
	key := NormalizeKey(token)

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := Counts{TotalGiven: s.totalGiven, TotalFamily: s.totalFamily}
	if rec, ok := s.records[key]; ok {
		c.Given = rec.Given
		c.Family = rec.Family
	}
	return c
}

// Load adds rows under a single write lock. Rows whose token normalizes to
// nothing are skipped.
func (s *MemoryStore) Load(rows iter.Seq[Record]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for row := range rows {
		key := NormalizeKey(row.Token)
		if key == "" || row.Total() == 0 {
			continue
		}
		s.add(key, row.Given, row.Family)
	}
	return nil
}

// Merge applies a worker's partial counts under a single write lock.
func (s *MemoryStore) Merge(t *Tally) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range t.records {
		s.add(key, rec.Given, rec.Family)
	}
}

// Export yields a copy of every row ordered by token. The copy is taken
// when iteration starts.
func (s *MemoryStore) Export() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, rec := range s.rows() {
			if !yield(rec) {
				return
			}
		}
	}
}

func (s *MemoryStore) rows() []Record {
	s.mu.RLock()
	rows := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		rows = append(rows, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].Token < rows[j].Token })
	return rows
}

// Len returns the number of distinct tokens.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Totals returns the summed given and family counts.
func (s *MemoryStore) Totals() (given, family uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalGiven, s.totalFamily
}

// Records collects an export into a slice.
func Records(rows iter.Seq[Record]) []Record {
	var out []Record
	for row := range rows {
		out = append(out, row)
	}
	return out
}

// RecordsOf yields the given rows.
func RecordsOf(rows ...Record) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}
