package ledger

import (
	"iter"

	"github.com/google/btree"

	"github.com/MrWong99/sophont/pkg/definition"
)

// degree is the B-tree branching factor. Ledgers are small to medium sized,
// so a low degree keeps nodes cache friendly.
const degree = 8

// Record is one acquisition event.
type Record[T definition.Definition] struct {
	// Package is the acquired delta.
	Package *Package[T]

	// Age is the character age at acquisition. It is an ordering key in
	// character time (seconds in the default clock), not a wall clock.
	Age int64

	// Memo is an optional free-text note, e.g. a unique acquisition id.
	Memo string

	// Seq is the ledger-local insertion number. It breaks ties between
	// records with equal Age so that arrival order is preserved.
	Seq uint64
}

func less[T definition.Definition](a, b Record[T]) bool {
	if a.Age != b.Age {
		return a.Age < b.Age
	}
	return a.Seq < b.Seq
}

// Ledger is an append-only, age-ordered sequence of records.
type Ledger[T definition.Definition] struct {
	tree *btree.BTreeG[Record[T]]
	seq  uint64
}

// AptitudeLedger records skill and knowledge acquisitions.
type AptitudeLedger = Ledger[definition.Aptitude]

// CharacteristicLedger records gene and phene acquisitions.
type CharacteristicLedger = Ledger[definition.Expressive]

// New returns an empty ledger.
func New[T definition.Definition]() *Ledger[T] {
	return &Ledger[T]{tree: btree.NewG(degree, less[T])}
}

// Insert records pkg as acquired at age and returns the stored record.
// Records are kept sorted by age regardless of call order; records with
// equal age keep their insertion order. Insertion is O(log n).
func (l *Ledger[T]) Insert(pkg *Package[T], age int64, memo string) Record[T] {
	l.seq++
	r := Record[T]{Package: pkg, Age: age, Memo: memo, Seq: l.seq}
	l.tree.ReplaceOrInsert(r)
	return r
}

// Len returns the number of records.
func (l *Ledger[T]) Len() int { return l.tree.Len() }

// All returns the records in chronological order. The sequence is lazy and
// can be ranged over any number of times; it must not be ranged over while
// the ledger is being mutated.
func (l *Ledger[T]) All() iter.Seq[Record[T]] {
	return func(yield func(Record[T]) bool) {
		l.tree.Ascend(func(r Record[T]) bool {
			return yield(r)
		})
	}
}

// Until returns, in chronological order, the records acquired at or before
// age.
func (l *Ledger[T]) Until(age int64) iter.Seq[Record[T]] {
	return func(yield func(Record[T]) bool) {
		l.tree.Ascend(func(r Record[T]) bool {
			if r.Age > age {
				return false
			}
			return yield(r)
		})
	}
}

// Find returns the record with the given insertion number.
func (l *Ledger[T]) Find(seq uint64) (Record[T], bool) {
	for r := range l.All() {
		if r.Seq == seq {
			return r, true
		}
	}
	return Record[T]{}, false
}

// Packages returns the acquired packages in chronological order.
func (l *Ledger[T]) Packages() []*Package[T] {
	out := make([]*Package[T], 0, l.Len())
	for r := range l.All() {
		out = append(out, r.Package)
	}
	return out
}
