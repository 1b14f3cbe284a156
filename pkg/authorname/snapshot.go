package authorname

import (
	"bytes"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/blevesearch/vellum"
	"github.com/cockroachdb/errors"
)

// ErrCountOverflow is returned when a count does not fit a snapshot.
var ErrCountOverflow = errors.New("count exceeds snapshot capacity")

// Snapshot is a read-only frequency table held in an FST. Each key maps to
// its given count in the high 32 bits and its family count in the low 32
// bits. Built once from a trained store, it serves any number of concurrent
// readers.
type Snapshot struct {
	fst         *vellum.FST
	totalGiven  uint64
	totalFamily uint64
	mu          sync.RWMutex
}

// BuildSnapshot builds an in-memory snapshot from rows.
func BuildSnapshot(rows iter.Seq[Record]) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := WriteSnapshotTo(&buf, rows); err != nil {
		return nil, err
	}
	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "load snapshot fst")
	}
	return newSnapshot(fst)
}

// WriteSnapshot builds a snapshot file at path from rows. The file is
// replaced only once the whole FST has been written.
func WriteSnapshot(path string, rows iter.Seq[Record]) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.fst")
	if err != nil {
		return errors.Wrapf(err, "create snapshot %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshotTo(tmp, rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close snapshot %s", path)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replace snapshot %s", path)
}

// WriteSnapshotTo encodes rows as an FST. Duplicate keys are summed.
func WriteSnapshotTo(w io.Writer, rows iter.Seq[Record]) error {
	merged := make(map[string]Record)
	for row := range rows {
		key := NormalizeKey(row.Token)
		if key == "" || row.Total() == 0 {
			continue
		}
		rec := merged[key]
		rec.Token = key
		rec.Given += row.Given
		rec.Family += row.Family
		merged[key] = rec
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	builder, err := vellum.New(w, nil)
	if err != nil {
		return errors.Wrap(err, "create snapshot builder")
	}
	for _, key := range keys {
		rec := merged[key]
		if rec.Given > math.MaxUint32 || rec.Family > math.MaxUint32 {
			builder.Close()
			return errors.Wrapf(ErrCountOverflow, "token %q (%d, %d)", key, rec.Given, rec.Family)
		}
		if err := builder.Insert([]byte(key), rec.Given<<32|rec.Family); err != nil {
			builder.Close()
			return errors.Wrapf(err, "insert %q", key)
		}
	}
	return errors.Wrap(builder.Close(), "close snapshot builder")
}

// OpenSnapshot memory-maps a snapshot file.
func OpenSnapshot(path string) (*Snapshot, error) {
	fst, err := vellum.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot %s", path)
	}
	return newSnapshot(fst)
}

func newSnapshot(fst *vellum.FST) (*Snapshot, error) {
	s := &Snapshot{fst: fst}
	for rec := range s.Export() {
		s.totalGiven += rec.Given
		s.totalFamily += rec.Family
	}
	return s, nil
}

// Train always fails: snapshots are read-only.
func (s *Snapshot) Train(string, Role) error {
	return ErrReadOnly
}

// Load always fails: snapshots are read-only.
func (s *Snapshot) Load(iter.Seq[Record]) error {
	return ErrReadOnly
}

// Query returns the counts of token.
func (s *Snapshot) Query(token string) Counts {
	c := Counts{TotalGiven: s.totalGiven, TotalFamily: s.totalFamily}
	key := NormalizeKey(token)
	if key == "" {
		return c
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fst == nil {
		return c
	}
	if packed, ok, _ := s.fst.Get([]byte(key)); ok {
		c.Given, c.Family = unpack(packed)
	}
	return c
}

// Export yields every row ordered by token.
func (s *Snapshot) Export() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.fst == nil {
			return
		}

		itr, err := s.fst.Iterator(nil, nil)
		for err == nil {
			key, packed := itr.Current()
			given, family := unpack(packed)
			if !yield(Record{Token: string(key), Given: given, Family: family}) {
				return
			}
			err = itr.Next()
		}
	}
}

// Len returns the number of distinct tokens.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fst == nil {
		return 0
	}
	return s.fst.Len()
}

// Close releases FST resources.
func (s *Snapshot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fst != nil {
		err := s.fst.Close()
		s.fst = nil
		return err
	}
	return nil
}

func unpack(packed uint64) (given, family uint64) {
	return packed >> 32, packed & math.MaxUint32
}
