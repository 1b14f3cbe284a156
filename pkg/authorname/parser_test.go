package authorname

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestParser(t *testing.T, cfg Config) *Parser {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	return p
}

func TestParser_Parse(t *testing.T) {
	p := newTestParser(t, DefaultConfig())

	name := p.Parse("Bryanne Brissian de Souza", "Langhi Júnior")
	if !reflect.DeepEqual(name.GivenNames(), []string{"Bryanne", "Brissian"}) {
		t.Errorf("given = %v, want [Bryanne Brissian]", name.GivenNames())
	}
	if !reflect.DeepEqual(name.FamilyNames(), []string{"Langhi"}) {
		t.Errorf("family = %v, want [Langhi]", name.FamilyNames())
	}
}

func TestParser_GivenAndFamilyNames(t *testing.T) {
	p := newTestParser(t, DefaultConfig())

	if got := p.GivenNames("A. J. Ng"); !reflect.DeepEqual(got, []string{"Ng"}) {
		t.Errorf("GivenNames = %v, want [Ng]", got)
	}
	if got := p.FamilyNames("van der Berg Jr."); !reflect.DeepEqual(got, []string{"van", "der", "Berg"}) {
		t.Errorf("FamilyNames = %v, want [van der Berg]", got)
	}
}

func TestParser_ParticleModeFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ParticleMode = ParticleReject
	p := newTestParser(t, cfg)

	if got := p.GivenNames("Maria da Silva"); len(got) != 0 {
		t.Errorf("GivenNames with reject mode = %v, want none", got)
	}
	if got := p.GivenNames("Maria Clara"); !reflect.DeepEqual(got, []string{"Maria", "Clara"}) {
		t.Errorf("GivenNames = %v, want [Maria Clara]", got)
	}
}

func TestParser_Cache(t *testing.T) {
	p := newTestParser(t, DefaultConfig())

	if !p.CacheEnabled() {
		t.Fatal("Expected cache to be enabled")
	}

	first := p.GivenComponents("Anna de Souza")
	if p.CacheSize() != 1 {
		t.Errorf("CacheSize = %d, want 1", p.CacheSize())
	}

	// Callers own the returned slice.
	first[0].Text = "changed"
	second := p.GivenComponents("Anna de Souza")
	if second[0].Text != "Anna" {
		t.Errorf("cached result was mutated: %v", second)
	}
	if p.CacheSize() != 1 {
		t.Errorf("CacheSize after hit = %d, want 1", p.CacheSize())
	}

	p.ClearCache()
	if p.CacheSize() != 0 {
		t.Errorf("CacheSize after clear = %d, want 0", p.CacheSize())
	}
}

func TestParser_WithoutCache(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache = false
	p := newTestParser(t, cfg)

	if p.CacheEnabled() {
		t.Error("Expected cache to be disabled")
	}
	p.GivenNames("Anna")
	if p.CacheSize() != 0 {
		t.Errorf("CacheSize = %d, want 0", p.CacheSize())
	}
	p.ClearCache()
}

func TestParser_TrainName(t *testing.T) {
	p := newTestParser(t, DefaultConfig())

	n, err := p.TrainName("Bryanne Brissian de Souza", "Langhi Júnior")
	if err != nil {
		t.Fatalf("TrainName error: %v", err)
	}
	if n != 3 {
		t.Errorf("TrainName recorded %d observations, want 3", n)
	}
	if c := p.Store().Query("Bryanne"); c.Given != 1 || c.Family != 0 {
		t.Errorf("Query(Bryanne) = %+v, want one given observation", c)
	}
	if c := p.Store().Query("langhi"); c.Family != 1 {
		t.Errorf("Query(langhi) = %+v, want one family observation", c)
	}
	if c := p.Store().Query("júnior"); c.Observations() != 0 {
		t.Errorf("suffix was trained: %+v", c)
	}

	if got := p.Classify("Bryanne"); got.Role != RoleGiven {
		t.Errorf("Classify(Bryanne) = %v, want given", got.Role)
	}
	if got := p.ParseAuthor("Bryanne Langhi"); !reflect.DeepEqual(got.FamilyNames(), []string{"Langhi"}) {
		t.Errorf("ParseAuthor family = %v, want [Langhi]", got.FamilyNames())
	}
}

func TestParser_TrainReadOnlyStore(t *testing.T) {
	snap, err := BuildSnapshot(RecordsOf(Record{Token: "anna", Given: 1}))
	if err != nil {
		t.Fatalf("BuildSnapshot error: %v", err)
	}
	defer snap.Close()

	cfg := DefaultConfig()
	cfg.Store = snap
	p := newTestParser(t, cfg)

	if _, err := p.TrainName("Anna", "Souza"); err == nil {
		t.Error("TrainName on a snapshot should fail")
	}
	if err := p.Train("Anna", RoleGiven); err != ErrReadOnly {
		t.Errorf("Train error = %v, want ErrReadOnly", err)
	}
}

func TestParser_TallyName(t *testing.T) {
	p := newTestParser(t, DefaultConfig())
	tally := NewTally()

	if n := p.TallyName(tally, "Maria Clara", "dos Santos"); n != 4 {
		t.Errorf("TallyName counted %d, want 4", n)
	}
	if n := p.TallyName(tally, "Maria", ""); n != 1 {
		t.Errorf("TallyName counted %d, want 1", n)
	}
	if tally.Len() != 4 {
		t.Errorf("tally has %d tokens, want 4", tally.Len())
	}
	if p.Store().Len() != 0 {
		t.Error("TallyName should not touch the store")
	}

	store := NewMemoryStore()
	store.Merge(tally)
	if c := store.Query("maria"); c.Given != 2 {
		t.Errorf("Query(maria) = %+v, want two given observations", c)
	}
}

func TestParser_Explain(t *testing.T) {
	p := newTestParser(t, DefaultConfig())

	decisions := p.Explain("J. Smith Jr.", GivenMode)
	want := []Reason{DroppedInitials, Kept, DroppedSuffix}
	if len(decisions) != len(want) {
		t.Fatalf("Explain returned %d decisions, want %d", len(decisions), len(want))
	}
	for i, d := range decisions {
		if d.Reason != want[i] {
			t.Errorf("decision %d (%q) = %v, want %v", i, d.Token.Text, d.Reason, want[i])
		}
	}

	family := p.Explain("de la Cruz", FamilyMode)
	for _, d := range family {
		if d.Reason != Kept {
			t.Errorf("family decision for %q = %v, want kept", d.Token.Text, d.Reason)
		}
	}
}

func TestParser_Logger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = zap.New(core).Sugar()
	newTestParser(t, cfg)

	entries := logs.FilterMessage("Parser ready").All()
	if len(entries) != 1 {
		t.Fatalf("got %d ready entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["particle_mode"] != "truncate" {
		t.Errorf("particle_mode = %v, want truncate", fields["particle_mode"])
	}
	if fields["cache"] != true {
		t.Errorf("cache = %v, want true", fields["cache"])
	}
}
