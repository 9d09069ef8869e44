package genotype_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/genotype"
)

type characteristicNames map[string]definition.CharacteristicKey

func (n characteristicNames) Resolve(kind definition.Kind, name string) (any, error) {
	if kind == definition.KindCharacteristic {
		if key, ok := n[strings.ToLower(name)]; ok {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", definition.ErrUnknownName, name)
}

var catalog = characteristicNames{
	"strength":  {UPPIndex: 1},
	"dexterity": {UPPIndex: 2},
	"endurance": {UPPIndex: 3},
}

func gene(reg *definition.Registry, upp int) *definition.Gene {
	return reg.Gene(definition.DefaultGeneKey(definition.CharacteristicKey{UPPIndex: upp}))
}

func upps(genes []*definition.Gene) []int {
	out := make([]int, len(genes))
	for i, g := range genes {
		out[i] = g.Expresses().UPPIndex()
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	other := definition.NewRegistry()

	tests := []struct {
		name    string
		genes   []*definition.Gene
		phenes  []*definition.Phene
		wantErr error
	}{
		{name: "no genes", wantErr: genotype.ErrEmptyGenotype},
		{
			name:    "foreign gene",
			genes:   []*definition.Gene{gene(reg, 1), gene(other, 2)},
			wantErr: definition.ErrInvalidReference,
		},
		{
			name:    "zero value phene",
			genes:   []*definition.Gene{gene(reg, 1)},
			phenes:  []*definition.Phene{{}},
			wantErr: definition.ErrInvalidReference,
		},
		{
			name:    "two genes at one UPP index",
			genes:   []*definition.Gene{gene(reg, 1), reg.Gene(definition.GeneKey{Characteristic: definition.CharacteristicKey{UPPIndex: 1}, DieMult: 3})},
			wantErr: genotype.ErrConflictingUPP,
		},
		{
			name:  "valid",
			genes: []*definition.Gene{gene(reg, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := genotype.New(reg, tt.genes, tt.phenes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || g == nil {
				t.Fatalf("New: %v", err)
			}
		})
	}
}

func TestNilRegistry(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry(definition.WithNameTable(catalog))

	tests := []struct {
		name  string
		build func() (*genotype.Genotype, error)
	}{
		{
			name:  "New",
			build: func() (*genotype.Genotype, error) { return genotype.New(nil, []*definition.Gene{gene(reg, 1)}, nil) },
		},
		{
			name:  "New without genes",
			build: func() (*genotype.Genotype, error) { return genotype.New(nil, nil, nil) },
		},
		{
			name: "ByCharacteristicNames",
			build: func() (*genotype.Genotype, error) {
				return genotype.ByCharacteristicNames(nil, []string{"strength"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := tt.build()
			if !errors.Is(err, definition.ErrInvalidReference) {
				t.Fatalf("expected ErrInvalidReference, got %v", err)
			}
			if g != nil {
				t.Error("expected nil genotype")
			}
		})
	}
}

func TestNew_SortsByUPPIndexAndCopies(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	in := []*definition.Gene{gene(reg, 3), gene(reg, 1), gene(reg, 2)}
	g, err := genotype.New(reg, in, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := upps(g.Genes())
	if fmt.Sprint(got) != "[1 2 3]" {
		t.Errorf("gene order = %v, want [1 2 3]", got)
	}
	if in[0] != gene(reg, 3) {
		t.Error("New must not reorder the caller's slice")
	}

	genes := g.Genes()
	genes[0] = nil
	if g.Genes()[0] == nil {
		t.Error("Genes must return a copy")
	}
	if g.Phenes() != nil {
		t.Error("Phenes must be nil without phenes")
	}
}

func TestExpresses(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	wings := reg.Phene(definition.DefaultPheneKey(definition.CharacteristicKey{UPPIndex: 9}))
	g, err := genotype.New(reg, []*definition.Gene{gene(reg, 1), gene(reg, 2)}, []*definition.Phene{wings})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !g.Expresses(reg.Characteristic(definition.CharacteristicKey{UPPIndex: 1})) {
		t.Error("gene characteristic must be expressed")
	}
	if !g.Expresses(wings.Expresses()) {
		t.Error("phene characteristic must be expressed")
	}
	if g.Expresses(reg.Characteristic(definition.CharacteristicKey{UPPIndex: 3})) {
		t.Error("characteristic outside the genotype must not be expressed")
	}
	if n := len(g.Characteristics()); n != 3 {
		t.Errorf("Characteristics() has %d entries, want 3", n)
	}
}

func TestMaxInheritanceContributors(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	hive := definition.DefaultGeneKey(definition.CharacteristicKey{UPPIndex: 2})
	hive.InheritanceContributors = 4

	g, err := genotype.New(reg, []*definition.Gene{gene(reg, 1), reg.Gene(hive)}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := g.MaxInheritanceContributors(); got != 4 {
		t.Errorf("MaxInheritanceContributors() = %d, want 4", got)
	}
}

func TestPhenotype(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	str, dex := gene(reg, 1), gene(reg, 2)
	dominant := reg.Phene(definition.DefaultPheneKey(definition.CharacteristicKey{UPPIndex: 2}))

	g, err := genotype.New(reg, []*definition.Gene{str, dex}, []*definition.Phene{dominant})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := g.Phenotype(reg)
	if len(p) != 2 {
		t.Fatalf("got %d expressions, want 2", len(p))
	}
	if p[1].Gene != str || p[1].Phene == nil || p[1].Phene.ExpressionPrecedence() != 0 {
		t.Errorf("UPP 1 = %+v, want strength gene with zero-precedence phene", p[1])
	}
	if p[2].Gene != dex || p[2].Phene != dominant {
		t.Errorf("UPP 2 = %+v, want dexterity gene with explicit phene", p[2])
	}
}

func TestByCharacteristicNames(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry(definition.WithNameTable(catalog))

	g, err := genotype.ByCharacteristicNames(reg, []string{"Endurance", "strength"}, []string{"dexterity"})
	if err != nil {
		t.Fatalf("ByCharacteristicNames: %v", err)
	}
	if got := fmt.Sprint(upps(g.Genes())); got != "[1 3]" {
		t.Errorf("genes = %s, want [1 3]", got)
	}
	if g.Genes()[0] != gene(reg, 1) {
		t.Error("genes must be the default interned genes")
	}
	if len(g.Phenes()) != 1 || g.Phenes()[0].Expresses().UPPIndex() != 2 {
		t.Errorf("phenes = %v, want one dexterity phene", g.Phenes())
	}

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := genotype.ByCharacteristicNames(reg, []string{"psionics"}, nil)
		if !errors.Is(err, definition.ErrUnknownName) {
			t.Fatalf("expected ErrUnknownName, got %v", err)
		}
	})

	t.Run("no name table", func(t *testing.T) {
		t.Parallel()
		_, err := genotype.ByCharacteristicNames(definition.NewRegistry(), []string{"strength"}, nil)
		if !errors.Is(err, definition.ErrNoNameTable) {
			t.Fatalf("expected ErrNoNameTable, got %v", err)
		}
	})
}

func TestNewSpecies(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	g, err := genotype.New(reg, []*definition.Gene{gene(reg, 1)}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, b := genotype.NewSpecies("Vargr", g), genotype.NewSpecies("Vargr", g)
	if a.ID == b.ID {
		t.Error("species ids must be unique")
	}
	if a.Genotype != g || a.Name != "Vargr" {
		t.Errorf("species = %+v", a)
	}
}
