package authorname

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func trainedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.Load(RecordsOf(
		Record{Token: "Martin", Given: 40, Family: 12},
		Record{Token: "Müller", Family: 77},
		Record{Token: "Anna", Given: 90},
	))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return s
}

func TestSnapshot_MatchesStore(t *testing.T) {
	store := trainedStore(t)
	snap, err := BuildSnapshot(store.Export())
	if err != nil {
		t.Fatalf("BuildSnapshot error: %v", err)
	}
	defer snap.Close()

	for _, token := range []string{"Martin", "MÜLLER", "anna", "Nobody"} {
		if got, want := snap.Query(token), store.Query(token); got != want {
			t.Errorf("Query(%q) = %+v, want %+v", token, got, want)
		}
	}
	if snap.Len() != store.Len() {
		t.Errorf("Len() = %d, want %d", snap.Len(), store.Len())
	}
	if got, want := Records(snap.Export()), Records(store.Export()); !reflect.DeepEqual(got, want) {
		t.Errorf("Export() = %+v, want %+v", got, want)
	}
}

func TestSnapshot_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.fst")
	if err := WriteSnapshot(path, trainedStore(t).Export()); err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}

	snap, err := OpenSnapshot(path)
	if err != nil {
		t.Fatalf("OpenSnapshot error: %v", err)
	}
	defer snap.Close()

	c := snap.Query("martin")
	if c.Given != 40 || c.Family != 12 || c.TotalGiven != 130 || c.TotalFamily != 89 {
		t.Errorf("Query(martin) = %+v", c)
	}

	result := NewClassifier(snap, ScoreShare).Classify("Müller")
	if result.Role != RoleFamily || result.Confidence != 1 {
		t.Errorf("Classify(Müller) = %+v, want family with confidence 1", result)
	}
}

func TestSnapshot_ReadOnly(t *testing.T) {
	snap, err := BuildSnapshot(trainedStore(t).Export())
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()

	if err := snap.Train("Anna", RoleGiven); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Train error = %v, want ErrReadOnly", err)
	}
	if err := snap.Load(RecordsOf(Record{Token: "x", Given: 1})); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Load error = %v, want ErrReadOnly", err)
	}
}

func TestSnapshot_Overflow(t *testing.T) {
	_, err := BuildSnapshot(RecordsOf(Record{Token: "Huge", Given: 1 << 33}))
	if !errors.Is(err, ErrCountOverflow) {
		t.Errorf("BuildSnapshot error = %v, want ErrCountOverflow", err)
	}
}

func TestWriteSnapshot_OverflowLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "names.fst")
	err := WriteSnapshot(path, RecordsOf(Record{Token: "Huge", Given: 1 << 33}))
	if !errors.Is(err, ErrCountOverflow) {
		t.Fatalf("WriteSnapshot error = %v, want ErrCountOverflow", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("WriteSnapshot left %d files behind, want none", len(entries))
	}
}

func TestWriteSnapshot_FailureKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.fst")
	if err := WriteSnapshot(path, trainedStore(t).Export()); err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}
	if err := WriteSnapshot(path, RecordsOf(Record{Token: "Huge", Family: 1 << 33})); err == nil {
		t.Fatal("WriteSnapshot with overflowing count succeeded")
	}

	snap, err := OpenSnapshot(path)
	if err != nil {
		t.Fatalf("OpenSnapshot error: %v", err)
	}
	defer snap.Close()
	if snap.Len() != 3 {
		t.Errorf("Len() = %d, want 3", snap.Len())
	}
}

func TestSnapshot_Closed(t *testing.T) {
	snap, err := BuildSnapshot(trainedStore(t).Export())
	if err != nil {
		t.Fatal(err)
	}
	if err := snap.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if snap.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", snap.Len())
	}
	if c := snap.Query("Anna"); c.Given != 0 {
		t.Errorf("Query after Close = %+v, want zero counts", c)
	}
}
