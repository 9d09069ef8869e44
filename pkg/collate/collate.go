// Package collate folds an acquisition ledger into its effective state.
//
// [Recompute] is a pure, single-pass fold: it groups records by a key
// extracted from each package's item, sums the level deltas per key and
// carries training progress forward from the previous collation. The same
// fold serves aptitudes (grouped by the skill or knowledge itself) and
// characteristics (grouped by the characteristic a gene or phene expresses);
// only the [KeyFunc] differs.
//
// [State] owns one ledger plus the cached collation and the dirty flag that
// marks the cache stale.
package collate

import (
	"iter"

	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/ledger"
)

// Entry is the collated state of one key.
type Entry[K comparable] struct {
	// Key is the grouping identity.
	Key K

	// Level is the sum of the level deltas of every record grouped under Key.
	// It is not clamped and may be negative.
	Level int

	// TrainingProgress is carried forward between collations by key. It is
	// not derived from Level.
	TrainingProgress float64
}

// KeyFunc extracts the grouping key from a package item.
type KeyFunc[T definition.Definition, K comparable] func(item T) K

// Identity groups aptitudes by the definition itself.
func Identity(item definition.Aptitude) definition.Aptitude { return item }

// ByCharacteristic groups genes and phenes by the characteristic they
// express.
func ByCharacteristic(item definition.Expressive) *definition.Characteristic {
	return item.Expresses()
}

// Recompute folds records into one entry per distinct key, in the order keys
// are first encountered. Levels are summed without clamping. Training
// progress is copied from prior by key; new keys start at zero and keys
// absent from records are dropped.
//
// Recompute is deterministic: the same records in the same order always
// produce equal output.
func Recompute[T definition.Definition, K comparable](records iter.Seq[ledger.Record[T]], prior []Entry[K], key KeyFunc[T, K]) []Entry[K] {
	progress := make(map[K]float64, len(prior))
	for _, e := range prior {
		progress[e.Key] = e.TrainingProgress
	}

	index := make(map[K]int)
	var out []Entry[K]
	for r := range records {
		k := key(r.Package.Item())
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Entry[K]{Key: k, TrainingProgress: progress[k]})
		}
		out[i].Level += r.Package.Level()
	}
	return out
}

// Find returns the entry for key in entries.
func Find[K comparable](entries []Entry[K], key K) (Entry[K], bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry[K]{}, false
}
