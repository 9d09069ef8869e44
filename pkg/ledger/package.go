// Package ledger records what a Sophont acquired and when.
//
// A [Package] is an immutable delta against one interned definition. A
// [Ledger] is an append-only sequence of acquisition [Record]s kept in
// character-age order, so a backdated acquisition lands before records that
// were inserted earlier but happened later.
//
// A Ledger is not safe for concurrent mutation; it is owned by a single
// character. Packages are immutable and may be shared between ledgers.
package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MrWong99/sophont/pkg/definition"
)

// Package is an immutable level delta against one definition, with a free
// text label describing where it came from (e.g. "Basic Training").
type Package[T definition.Definition] struct {
	item    T
	level   int
	context string
}

// AptitudePackage is a package against a skill or knowledge.
type AptitudePackage = Package[definition.Aptitude]

// CharacteristicPackage is a package against a gene or phene.
type CharacteristicPackage = Package[definition.Expressive]

// NewPackage returns a package for item. item must be interned in a non-nil
// reg, otherwise [definition.ErrInvalidReference] is returned. level may be
// negative. An empty context is replaced by a fresh random id.
func NewPackage[T definition.Definition](reg *definition.Registry, item T, level int, context string) (*Package[T], error) {
	if reg == nil || !reg.Contains(item) {
		return nil, fmt.Errorf("ledger: package item %v: %w", any(item), definition.ErrInvalidReference)
	}
	if context == "" {
		context = uuid.NewString()
	}
	return &Package[T]{item: item, level: level, context: context}, nil
}

// NewAptitudePackage is [NewPackage] for skills and knowledges.
func NewAptitudePackage(reg *definition.Registry, item definition.Aptitude, level int, context string) (*AptitudePackage, error) {
	return NewPackage(reg, item, level, context)
}

// NewCharacteristicPackage is [NewPackage] for genes and phenes.
func NewCharacteristicPackage(reg *definition.Registry, item definition.Expressive, level int, context string) (*CharacteristicPackage, error) {
	return NewPackage(reg, item, level, context)
}

// Item returns the definition the package applies to.
func (p *Package[T]) Item() T { return p.item }

// Level returns the signed level delta.
func (p *Package[T]) Level() int { return p.level }

// Context returns the provenance label.
func (p *Package[T]) Context() string { return p.context }

// Compensate returns a package against the same item with the negated level.
// It is how an acquisition is retracted without rewriting history.
func (p *Package[T]) Compensate(context string) *Package[T] {
	if context == "" {
		context = "retract: " + p.context
	}
	return &Package[T]{item: p.item, level: -p.level, context: context}
}

func (p *Package[T]) String() string {
	return fmt.Sprintf("%v%+d (%s)", any(p.item), p.level, p.context)
}
