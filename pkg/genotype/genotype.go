// Package genotype provides the composite definitions a species is built
// from: an immutable, ordered set of genes (and optional phenes) that decides
// which characteristics a Sophont can ever express.
//
// A [Genotype] only holds references to interned definitions, so it can be
// shared read-only by every character built from the same [Species].
package genotype

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/MrWong99/sophont/pkg/definition"
)

var (
	// ErrEmptyGenotype is returned by [New] when no genes are given.
	ErrEmptyGenotype = errors.New("genotype: at least one gene is required")

	// ErrConflictingUPP is returned by [New] when two genes express
	// characteristics at the same UPP index.
	ErrConflictingUPP = errors.New("genotype: conflicting UPP index")
)

// Genotype is an immutable, ordered collection of genes and phenes. Genes are
// sorted by the UPP index of the characteristic they express; so are phenes.
type Genotype struct {
	genes  []*definition.Gene
	phenes []*definition.Phene
}

// New validates and builds a [Genotype]. Every gene and phene must be
// interned in reg. At most one gene per UPP index is allowed. phenes may be
// nil.
func New(reg *definition.Registry, genes []*definition.Gene, phenes []*definition.Phene) (*Genotype, error) {
	if reg == nil {
		return nil, fmt.Errorf("genotype: nil registry: %w", definition.ErrInvalidReference)
	}
	if len(genes) == 0 {
		return nil, ErrEmptyGenotype
	}

	var errs []error
	seen := make(map[int]int, len(genes))
	for i, g := range genes {
		if !reg.Contains(g) {
			errs = append(errs, fmt.Errorf("genes[%d]: %w", i, definition.ErrInvalidReference))
			continue
		}
		upp := g.Expresses().UPPIndex()
		if prev, ok := seen[upp]; ok {
			errs = append(errs, fmt.Errorf("genes[%d]: %w %d (also genes[%d])", i, ErrConflictingUPP, upp, prev))
			continue
		}
		seen[upp] = i
	}
	for i, p := range phenes {
		if !reg.Contains(p) {
			errs = append(errs, fmt.Errorf("phenes[%d]: %w", i, definition.ErrInvalidReference))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	g := &Genotype{
		genes:  slices.Clone(genes),
		phenes: slices.Clone(phenes),
	}
	slices.SortStableFunc(g.genes, func(a, b *definition.Gene) int {
		return cmp.Compare(a.Expresses().UPPIndex(), b.Expresses().UPPIndex())
	})
	slices.SortStableFunc(g.phenes, func(a, b *definition.Phene) int {
		return cmp.Compare(a.Expresses().UPPIndex(), b.Expresses().UPPIndex())
	})
	return g, nil
}

// ByCharacteristicNames builds a genotype of default genes (and default
// phenes) for the named characteristics, resolving names through reg's
// name table.
func ByCharacteristicNames(reg *definition.Registry, geneNames, pheneNames []string) (*Genotype, error) {
	if reg == nil {
		return nil, fmt.Errorf("genotype: nil registry: %w", definition.ErrInvalidReference)
	}
	genes := make([]*definition.Gene, 0, len(geneNames))
	for _, name := range geneNames {
		c, err := characteristic(reg, name)
		if err != nil {
			return nil, err
		}
		genes = append(genes, reg.Gene(definition.DefaultGeneKey(c.CharacteristicKey())))
	}

	var phenes []*definition.Phene
	for _, name := range pheneNames {
		c, err := characteristic(reg, name)
		if err != nil {
			return nil, err
		}
		phenes = append(phenes, reg.Phene(definition.DefaultPheneKey(c.CharacteristicKey())))
	}
	return New(reg, genes, phenes)
}

func characteristic(reg *definition.Registry, name string) (*definition.Characteristic, error) {
	d, err := reg.LookupByName(definition.KindCharacteristic, name)
	if err != nil {
		return nil, fmt.Errorf("genotype: %w", err)
	}
	return d.(*definition.Characteristic), nil
}

// Genes returns the genes ordered by UPP index. The returned slice is a copy.
func (g *Genotype) Genes() []*definition.Gene { return slices.Clone(g.genes) }

// Phenes returns the phenes ordered by UPP index. The returned slice is a
// copy and is nil when the genotype has no phenes.
func (g *Genotype) Phenes() []*definition.Phene { return slices.Clone(g.phenes) }

// Characteristics returns every characteristic reachable from the genotype,
// genes first, without duplicates.
func (g *Genotype) Characteristics() []*definition.Characteristic {
	out := make([]*definition.Characteristic, 0, len(g.genes)+len(g.phenes))
	for _, gene := range g.genes {
		out = append(out, gene.Expresses())
	}
	for _, p := range g.phenes {
		if !slices.Contains(out, p.Expresses()) {
			out = append(out, p.Expresses())
		}
	}
	return out
}

// Expresses reports whether c is reachable from one of the genotype's genes
// or phenes.
func (g *Genotype) Expresses(c *definition.Characteristic) bool {
	for _, gene := range g.genes {
		if gene.Expresses() == c {
			return true
		}
	}
	for _, p := range g.phenes {
		if p.Expresses() == c {
			return true
		}
	}
	return false
}

// MaxInheritanceContributors returns the largest number of inheritance
// contributors across the genotype's genes.
func (g *Genotype) MaxInheritanceContributors() int {
	n := 0
	for _, gene := range g.genes {
		n = max(n, gene.InheritanceContributors())
	}
	return n
}

// Expression pairs the gene and phene that determine one UPP position. Either
// may be nil but never both.
type Expression struct {
	Gene  *definition.Gene
	Phene *definition.Phene
}

// Phenotype returns the expression per UPP index. A gene without an explicit
// phene is paired with the zero-precedence phene of its characteristic,
// interned in reg. An explicit phene replaces that default.
func (g *Genotype) Phenotype(reg *definition.Registry) map[int]Expression {
	out := make(map[int]Expression, len(g.genes)+len(g.phenes))
	for _, gene := range g.genes {
		key := definition.PheneKey{Characteristic: gene.Expresses().CharacteristicKey()}
		out[gene.Expresses().UPPIndex()] = Expression{Gene: gene, Phene: reg.Phene(key)}
	}
	for _, p := range g.phenes {
		upp := p.Expresses().UPPIndex()
		e := out[upp]
		e.Phene = p
		out[upp] = e
	}
	return out
}

// Species is a named template characters are instantiated from.
type Species struct {
	ID       uuid.UUID
	Name     string
	Genotype *Genotype
}

// NewSpecies returns a species with a fresh random id.
func NewSpecies(name string, g *Genotype) *Species {
	return &Species{ID: uuid.New(), Name: name, Genotype: g}
}
