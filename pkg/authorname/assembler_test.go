package authorname

import (
	"math"
	"reflect"
	"testing"
)

func namesStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	err := s.Load(RecordsOf(
		Record{Token: "John", Given: 100, Family: 2},
		Record{Token: "Ludwig", Given: 30},
		Record{Token: "Smith", Given: 1, Family: 200},
	))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return s
}

func newTestAssembler(store Store, opts ...AssemblerOption) *Assembler {
	rules := DefaultRules()
	var classifier *Classifier
	if store != nil {
		classifier = NewClassifier(store, ScoreLikelihood)
	}
	return NewAssembler(
		NewPipeline(rules, GivenMode),
		NewPipeline(rules, FamilyMode),
		classifier,
		opts...,
	)
}

func TestAssembler_Assemble(t *testing.T) {
	a := newTestAssembler(nil)

	tests := []struct {
		given, family string
		wantGiven     []string
		wantFamily    []string
	}{
		{"Bryanne Brissian de", "Souza", []string{"Bryanne", "Brissian"}, []string{"Souza"}},
		{"Pedro", "Langhi Júnior", []string{"Pedro"}, []string{"Langhi"}},
		{"Ludwig", "van Beethoven", []string{"Ludwig"}, []string{"van", "Beethoven"}},
		{"J.-B.", "Da Silva", []string{}, []string{"Da", "Silva"}},
	}

	for _, tt := range tests {
		name := a.Assemble(tt.given, tt.family)
		if !reflect.DeepEqual(name.GivenNames(), tt.wantGiven) {
			t.Errorf("Assemble(%q, %q) given = %v, want %v", tt.given, tt.family, name.GivenNames(), tt.wantGiven)
		}
		if !reflect.DeepEqual(name.FamilyNames(), tt.wantFamily) {
			t.Errorf("Assemble(%q, %q) family = %v, want %v", tt.given, tt.family, name.FamilyNames(), tt.wantFamily)
		}
		if name.Confidence != 1 {
			t.Errorf("Assemble(%q, %q) confidence = %f, want 1", tt.given, tt.family, name.Confidence)
		}
		if name.RawGiven != tt.given || name.RawFamily != tt.family {
			t.Errorf("raw fields not kept: %+v", name)
		}
	}
}

func TestAssembler_Empty(t *testing.T) {
	name := newTestAssembler(nil).Assemble("  ", "")
	if !name.Empty() || name.Confidence != 0 {
		t.Errorf("Assemble(blank) = %+v, want empty name with confidence 0", name)
	}
}

func TestAssembler_KeepFamilySuffixes(t *testing.T) {
	a := newTestAssembler(nil, WithFamilySuffixStripping(false))
	got := a.Assemble("Pedro", "Langhi Júnior").FamilyNames()
	if !reflect.DeepEqual(got, []string{"Langhi", "Júnior"}) {
		t.Errorf("family = %v, want [Langhi Júnior]", got)
	}
}

func TestAssembler_AuthorWithComma(t *testing.T) {
	name := newTestAssembler(nil).AssembleAuthor("Smith, John Maynard W")

	if !reflect.DeepEqual(name.GivenNames(), []string{"John", "Maynard"}) {
		t.Errorf("given = %v, want [John Maynard]", name.GivenNames())
	}
	if !reflect.DeepEqual(name.FamilyNames(), []string{"Smith"}) {
		t.Errorf("family = %v, want [Smith]", name.FamilyNames())
	}
	if name.Confidence != 1 {
		t.Errorf("confidence = %f, want 1", name.Confidence)
	}
}

func TestAssembler_AuthorClassified(t *testing.T) {
	a := newTestAssembler(namesStore(t))
	name := a.AssembleAuthor("John Smith")

	if !reflect.DeepEqual(name.GivenNames(), []string{"John"}) {
		t.Errorf("given = %v, want [John]", name.GivenNames())
	}
	if !reflect.DeepEqual(name.FamilyNames(), []string{"Smith"}) {
		t.Errorf("family = %v, want [Smith]", name.FamilyNames())
	}

	pJohn := 100.0 / 131.0
	pSmith := 200.0 / 202.0
	want := math.Min(pJohn, pSmith)
	if math.Abs(name.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", name.Confidence, want)
	}
	for _, c := range append(name.Given, name.Family...) {
		if !c.Classified {
			t.Errorf("component %q not marked classified", c.Text)
		}
	}
}

func TestAssembler_AuthorParticlesAndUnknowns(t *testing.T) {
	a := newTestAssembler(namesStore(t))
	name := a.AssembleAuthor("Ludwig van Beethoven")

	if !reflect.DeepEqual(name.GivenNames(), []string{"Ludwig"}) {
		t.Errorf("given = %v, want [Ludwig]", name.GivenNames())
	}
	if !reflect.DeepEqual(name.FamilyNames(), []string{"van"}) {
		t.Errorf("family = %v, want [van]", name.FamilyNames())
	}
	if got := ComponentTexts(name.Unresolved); !reflect.DeepEqual(got, []string{"Beethoven"}) {
		t.Errorf("unresolved = %v, want [Beethoven]", got)
	}
	if name.Confidence != 0 {
		t.Errorf("confidence = %f, want 0 with an unknown token", name.Confidence)
	}
	if name.Family[0].Classified {
		t.Error("particle should not be marked classified")
	}
}

func TestAssembler_Fallback(t *testing.T) {
	a := newTestAssembler(namesStore(t), WithFallback(FirstTokenGiven))
	name := a.AssembleAuthor("Zebulon Quixley Smith")

	if !reflect.DeepEqual(name.GivenNames(), []string{"Zebulon"}) {
		t.Errorf("given = %v, want [Zebulon]", name.GivenNames())
	}
	if got := ComponentTexts(name.Unresolved); !reflect.DeepEqual(got, []string{"Quixley"}) {
		t.Errorf("unresolved = %v, want [Quixley]", got)
	}
	if !reflect.DeepEqual(name.FamilyNames(), []string{"Smith"}) {
		t.Errorf("family = %v, want [Smith]", name.FamilyNames())
	}
}

func TestAssembler_CommaSplitDisabled(t *testing.T) {
	a := newTestAssembler(namesStore(t), WithCommaSplit(false))
	name := a.AssembleAuthor("Smith, John")

	if !reflect.DeepEqual(name.FamilyNames(), []string{"Smith,"}) {
		t.Errorf("family = %v, want [Smith,]", name.FamilyNames())
	}
	if !reflect.DeepEqual(name.GivenNames(), []string{"John"}) {
		t.Errorf("given = %v, want [John]", name.GivenNames())
	}
}

func TestAssembler_NoClassifier(t *testing.T) {
	name := newTestAssembler(nil).AssembleAuthor("John Smith")
	if len(name.Unresolved) != 2 || len(name.Given) != 0 || len(name.Family) != 0 {
		t.Errorf("AssembleAuthor without classifier = %+v, want two unresolved tokens", name)
	}
}
