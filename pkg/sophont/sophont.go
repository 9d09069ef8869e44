// Package sophont provides the character aggregate: a Sophont owns two
// independent acquisition states, one for aptitudes (skills and knowledges)
// and one for its epigenetic profile (genes and phenes), and is built from a
// shared [genotype.Species].
//
// A Sophont has a single writer. Collations are published immutably, so any
// number of readers may inspect them while the writer acquires.
package sophont

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MrWong99/sophont/pkg/collate"
	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/genotype"
)

// ErrNoSpecies is returned by [New] when the species or its genotype is nil.
var ErrNoSpecies = errors.New("sophont: species with genotype is required")

// DefaultName is the name of a character built without [WithName].
const DefaultName = "Unnamed"

// Sophont is a character instance.
type Sophont struct {
	ID      uuid.UUID
	Name    string
	Age     int64
	Species *genotype.Species

	Aptitudes   *Aptitudes
	Epigenetics *EpigeneticProfile
}

// Option is a functional option for [New].
type Option func(*options)

type options struct {
	id       uuid.UUID
	name     string
	age      int64
	strict   bool
	observer collate.Observer
}

// WithID sets the character id. A random id is used otherwise.
func WithID(id uuid.UUID) Option {
	return func(o *options) { o.id = id }
}

// WithName sets the character name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithAge sets the current character age. The default is -1 (unset).
func WithAge(age int64) Option {
	return func(o *options) { o.age = age }
}

// WithStrictExpression makes the epigenetic profile reject genes and phenes
// that express characteristics outside the species genotype.
func WithStrictExpression() Option {
	return func(o *options) { o.strict = true }
}

// WithObserver sets an observer for both acquisition states.
func WithObserver(obs collate.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// New builds a character of species with empty ledgers.
//
// The parent id list starts with the character's own id and is filled with
// random ids until it holds one more entry than the genotype's maximum
// number of inheritance contributors. Gender starts unselected.
func New(species *genotype.Species, opts ...Option) (*Sophont, error) {
	if species == nil || species.Genotype == nil {
		return nil, ErrNoSpecies
	}

	o := options{name: DefaultName, age: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}

	var stateOpts []collate.Option
	if o.observer != nil {
		stateOpts = append(stateOpts, collate.WithObserver(o.observer))
	}

	maxContributors := species.Genotype.MaxInheritanceContributors()
	epi := newEpigeneticProfile(species.Genotype, o.strict, stateOpts...)
	epi.Gender.Contributors = maxContributors
	epi.ParentIDs = make([]uuid.UUID, 0, maxContributors+1)
	epi.ParentIDs = append(epi.ParentIDs, o.id)
	for len(epi.ParentIDs) <= maxContributors {
		epi.ParentIDs = append(epi.ParentIDs, uuid.New())
	}

	return &Sophont{
		ID:          o.id,
		Name:        o.name,
		Age:         o.age,
		Species:     species,
		Aptitudes:   NewAptitudes(stateOpts...),
		Epigenetics: epi,
	}, nil
}

// Collate recomputes whichever of the two states is dirty.
func (s *Sophont) Collate(ctx context.Context) {
	s.Aptitudes.Collate(ctx)
	s.Epigenetics.Collate(ctx)
}

// Dirty reports whether either state has acquisitions not yet collated.
func (s *Sophont) Dirty() bool {
	return s.Aptitudes.Dirty() || s.Epigenetics.Dirty()
}

// ─────────────────────────────────────────────────────────────────────────────
// Sheet
// ─────────────────────────────────────────────────────────────────────────────

// Line is one named row of a [Sheet].
type Line struct {
	Name             string  `json:"name"`
	Level            int     `json:"level"`
	TrainingProgress float64 `json:"training_progress,omitempty"`
}

// Sheet is a display snapshot of a character's cached collations with
// definitions resolved to names.
type Sheet struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Species         string    `json:"species"`
	Age             int64     `json:"age"`
	Stale           bool      `json:"stale"`
	Aptitudes       []Line    `json:"aptitudes"`
	Characteristics []Line    `json:"characteristics"`
}

// Sheet returns the character's cached collations, naming definitions via
// reg. It does not recompute; Stale reports whether either state is dirty.
func (s *Sophont) Sheet(reg *definition.Registry) Sheet {
	sh := Sheet{
		ID:      s.ID,
		Name:    s.Name,
		Species: s.Species.Name,
		Age:     s.Age,
		Stale:   s.Dirty(),
	}
	for _, e := range s.Aptitudes.Collation() {
		sh.Aptitudes = append(sh.Aptitudes, Line{Name: reg.Name(e.Key), Level: e.Level, TrainingProgress: e.TrainingProgress})
	}
	for _, e := range s.Epigenetics.Collation() {
		sh.Characteristics = append(sh.Characteristics, Line{Name: reg.Name(e.Key), Level: e.Level, TrainingProgress: e.TrainingProgress})
	}
	return sh
}
