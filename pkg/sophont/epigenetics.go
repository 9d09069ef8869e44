package sophont

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrWong99/sophont/pkg/collate"
	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/genotype"
	"github.com/MrWong99/sophont/pkg/ledger"
)

// ErrNotExpressed is returned by [EpigeneticProfile.Acquire] in strict mode
// when a gene or phene expresses a characteristic the genotype cannot reach.
var ErrNotExpressed = errors.New("sophont: characteristic not expressed by genotype")

// CharacteristicState is the collation state behind [EpigeneticProfile].
type CharacteristicState = collate.State[definition.Expressive, *definition.Characteristic]

// CharacteristicEntry is one collated characteristic.
type CharacteristicEntry = collate.Entry[*definition.Characteristic]

// Gender is the selected gender index and the number of inheritance
// contributors it is chosen from. Selected is -1 until chosen.
type Gender struct {
	Selected     int
	Contributors int
}

// EpigeneticProfile holds a character's gene and phene acquisitions, grouped
// by the characteristic each one expresses, together with the species
// genotype they are acquired against.
type EpigeneticProfile struct {
	*CharacteristicState

	genotype *genotype.Genotype
	strict   bool

	Gender    Gender
	ParentIDs []uuid.UUID
}

func newEpigeneticProfile(g *genotype.Genotype, strict bool, opts ...collate.Option) *EpigeneticProfile {
	return &EpigeneticProfile{
		CharacteristicState: collate.NewState("characteristics", collate.ByCharacteristic, opts...),
		genotype:            g,
		strict:              strict,
		Gender:              Gender{Selected: -1},
	}
}

// Genotype returns the species genotype the profile was built from.
func (p *EpigeneticProfile) Genotype() *genotype.Genotype { return p.genotype }

// Strict reports whether acquisitions are checked against the genotype.
func (p *EpigeneticProfile) Strict() bool { return p.strict }

// Acquire records pkg at age. In strict mode a package whose item expresses a
// characteristic outside the genotype is rejected with [ErrNotExpressed] and
// the ledger is left unchanged.
func (p *EpigeneticProfile) Acquire(pkg *ledger.CharacteristicPackage, age int64, memo string) (ledger.Record[definition.Expressive], error) {
	if p.strict {
		if c := pkg.Item().Expresses(); !p.genotype.Expresses(c) {
			return ledger.Record[definition.Expressive]{}, fmt.Errorf("%w: %s", ErrNotExpressed, c)
		}
	}
	return p.CharacteristicState.Acquire(pkg, age, memo), nil
}

// Level returns the collated level of c and whether it has an entry. The
// cached collation is used as is.
func (p *EpigeneticProfile) Level(c *definition.Characteristic) (int, bool) {
	e, ok := p.Lookup(c)
	return e.Level, ok
}
