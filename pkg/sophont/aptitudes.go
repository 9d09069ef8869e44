package sophont

import (
	"github.com/MrWong99/sophont/pkg/collate"
	"github.com/MrWong99/sophont/pkg/definition"
)

// AptitudeState is the collation state behind [Aptitudes].
type AptitudeState = collate.State[definition.Aptitude, definition.Aptitude]

// AptitudeEntry is one collated skill or knowledge.
type AptitudeEntry = collate.Entry[definition.Aptitude]

// Aptitudes holds a character's skill and knowledge acquisitions. Entries are
// grouped by the skill or knowledge definition itself.
type Aptitudes struct {
	*AptitudeState
}

// NewAptitudes returns an empty, clean aptitude state.
func NewAptitudes(opts ...collate.Option) *Aptitudes {
	return &Aptitudes{AptitudeState: collate.NewState("aptitudes", collate.Identity, opts...)}
}

// Level returns the collated level of item and whether it has an entry. The
// cached collation is used as is.
func (a *Aptitudes) Level(item definition.Aptitude) (int, bool) {
	e, ok := a.Lookup(item)
	return e.Level, ok
}
