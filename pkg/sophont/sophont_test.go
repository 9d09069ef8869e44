package sophont_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/genotype"
	"github.com/MrWong99/sophont/pkg/ledger"
	"github.com/MrWong99/sophont/pkg/sophont"
)

var (
	strength  = definition.CharacteristicKey{UPPIndex: 1}
	dexterity = definition.CharacteristicKey{UPPIndex: 2}
	psionics  = definition.CharacteristicKey{UPPIndex: 7}
)

// humaniti returns a species with default strength and dexterity genes.
func humaniti(t *testing.T, reg *definition.Registry) *genotype.Species {
	t.Helper()
	g, err := genotype.New(reg, []*definition.Gene{
		reg.Gene(definition.DefaultGeneKey(strength)),
		reg.Gene(definition.DefaultGeneKey(dexterity)),
	}, nil)
	if err != nil {
		t.Fatalf("genotype.New: %v", err)
	}
	return genotype.NewSpecies("Humaniti", g)
}

func TestNew(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	id := uuid.New()
	s, err := sophont.New(humaniti(t, reg), sophont.WithID(id), sophont.WithName("Jamison"), sophont.WithAge(18))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.ID != id || s.Name != "Jamison" || s.Age != 18 {
		t.Errorf("got id=%v name=%q age=%d", s.ID, s.Name, s.Age)
	}
	if s.Dirty() {
		t.Error("new character must be clean")
	}
	if len(s.Aptitudes.Collation()) != 0 || len(s.Epigenetics.Collation()) != 0 {
		t.Error("new character must have empty collations")
	}

	// Default genes have two inheritance contributors: self plus two parents.
	if n := len(s.Epigenetics.ParentIDs); n != 3 {
		t.Fatalf("got %d parent ids, want 3", n)
	}
	if s.Epigenetics.ParentIDs[0] != id {
		t.Error("first parent id must be the character's own id")
	}
	if g := s.Epigenetics.Gender; g.Selected != -1 || g.Contributors != 2 {
		t.Errorf("Gender = %+v, want {-1 2}", g)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	s, err := sophont.New(humaniti(t, reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Name != sophont.DefaultName || s.Age != -1 || s.ID == uuid.Nil {
		t.Errorf("got name=%q age=%d id=%v", s.Name, s.Age, s.ID)
	}
	if s.Epigenetics.Strict() {
		t.Error("strict expression must be off by default")
	}

	if _, err := sophont.New(nil); !errors.Is(err, sophont.ErrNoSpecies) {
		t.Errorf("expected ErrNoSpecies, got %v", err)
	}
}

func TestScenario_GeneAcquisitionsBackdated(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	s, err := sophont.New(humaniti(t, reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	str := reg.Gene(definition.DefaultGeneKey(strength))
	for _, age := range []int64{100, 50} {
		pkg, err := ledger.NewCharacteristicPackage(reg, str, 1, "growth")
		if err != nil {
			t.Fatalf("NewCharacteristicPackage: %v", err)
		}
		if _, err := s.Epigenetics.Acquire(pkg, age, ""); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	}
	if !s.Dirty() {
		t.Fatal("character must be dirty after acquisitions")
	}

	s.Collate(context.Background())

	if s.Dirty() {
		t.Error("character must be clean after Collate")
	}
	if lvl, ok := s.Epigenetics.Level(reg.Characteristic(strength)); !ok || lvl != 2 {
		t.Errorf("strength = %d (present %v), want 2", lvl, ok)
	}
	if _, ok := s.Epigenetics.Level(reg.Characteristic(dexterity)); ok {
		t.Error("dexterity has no records and must not be collated")
	}
	if n := len(s.Epigenetics.Collation()); n != 1 {
		t.Errorf("got %d characteristic entries, want 1", n)
	}
}

func TestScenario_SkillBuffThenInjury(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	s, err := sophont.New(humaniti(t, reg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pilot := reg.Skill(38)
	buff, _ := ledger.NewAptitudePackage(reg, pilot, +1, "Basic Training")
	injury, _ := ledger.NewAptitudePackage(reg, pilot, -1, "Injury")
	s.Aptitudes.Acquire(buff, 10, "")
	s.Aptitudes.Acquire(injury, 20, "")

	if s.Epigenetics.Dirty() {
		t.Error("aptitude acquisitions must not dirty the epigenetic profile")
	}

	s.Collate(context.Background())

	got := s.Aptitudes.Collation()
	if len(got) != 1 || got[0].Level != 0 {
		t.Fatalf("collation = %+v, want one entry at level 0", got)
	}
	if s.Aptitudes.Dirty() {
		t.Error("dirty flag must be false after collation")
	}
}

func TestEpigenetics_StrictExpression(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	species := humaniti(t, reg)
	psi := reg.Gene(definition.DefaultGeneKey(psionics))
	pkg, err := ledger.NewCharacteristicPackage(reg, psi, 3, "mutation")
	if err != nil {
		t.Fatalf("NewCharacteristicPackage: %v", err)
	}

	t.Run("strict rejects", func(t *testing.T) {
		t.Parallel()
		s, _ := sophont.New(species, sophont.WithStrictExpression())
		if _, err := s.Epigenetics.Acquire(pkg, 1, ""); !errors.Is(err, sophont.ErrNotExpressed) {
			t.Fatalf("expected ErrNotExpressed, got %v", err)
		}
		if s.Epigenetics.Len() != 0 || s.Dirty() {
			t.Error("rejected acquisition must leave the ledger untouched")
		}
	})

	t.Run("permissive accepts", func(t *testing.T) {
		t.Parallel()
		s, _ := sophont.New(species)
		if _, err := s.Epigenetics.Acquire(pkg, 1, ""); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		if s.Epigenetics.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Epigenetics.Len())
		}
	})
}

func TestSheet(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	s, err := sophont.New(humaniti(t, reg), sophont.WithName("Jamison"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pkg, _ := ledger.NewAptitudePackage(reg, reg.Skill(38), 2, "Academy")
	s.Aptitudes.Acquire(pkg, 1, "")

	if sh := s.Sheet(reg); !sh.Stale || len(sh.Aptitudes) != 0 {
		t.Errorf("uncollated sheet = %+v, want stale and empty", sh)
	}

	s.Collate(context.Background())
	sh := s.Sheet(reg)
	if sh.Stale || sh.Species != "Humaniti" {
		t.Errorf("sheet = %+v", sh)
	}
	if len(sh.Aptitudes) != 1 || sh.Aptitudes[0].Name != "skill(38)" || sh.Aptitudes[0].Level != 2 {
		t.Errorf("aptitudes = %+v", sh.Aptitudes)
	}
}
