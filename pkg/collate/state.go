package collate

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/ledger"
)

const tracerName = "github.com/MrWong99/sophont/pkg/collate"

var (
	// ErrStale is returned by [State.Fresh] when records were acquired since
	// the last collation.
	ErrStale = errors.New("collate: collation is stale")

	// ErrUnknownKey is returned when a key has no entry in the collation.
	ErrUnknownKey = errors.New("collate: key not in collation")

	// ErrUnknownRecord is returned by [State.Retract] for a sequence number
	// the ledger does not hold.
	ErrUnknownRecord = errors.New("collate: record not in ledger")
)

// Observer receives ledger and collation events. name is the state's name
// (for example "aptitudes").
type Observer interface {
	Acquired(name string)
	Collated(ctx context.Context, name string, records, entries int, took time.Duration)
}

// State owns a ledger, the cached collation of that ledger and the dirty
// flag that marks the cache stale.
//
// A State has a single writer. The published collation is immutable, so any
// number of goroutines may read it (and the dirty flag) while the writer
// acquires or recomputes; a reader holding an old slice keeps a valid view.
type State[T definition.Definition, K comparable] struct {
	name     string
	key      KeyFunc[T, K]
	ledger   *ledger.Ledger[T]
	observer Observer

	cache atomic.Pointer[[]Entry[K]]
	dirty atomic.Bool
}

// Option is a functional option for [NewState].
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver sets an observer for acquisitions and collations.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// NewState returns a state with an empty ledger that groups records with
// key. The state starts clean with an empty collation.
func NewState[T definition.Definition, K comparable](name string, key KeyFunc[T, K], opts ...Option) *State[T, K] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &State[T, K]{
		name:     name,
		key:      key,
		ledger:   ledger.New[T](),
		observer: o.observer,
	}
}

// Name returns the state's name.
func (s *State[T, K]) Name() string { return s.name }

// Acquire inserts pkg into the ledger at age and marks the state dirty.
func (s *State[T, K]) Acquire(pkg *ledger.Package[T], age int64, memo string) ledger.Record[T] {
	r := s.ledger.Insert(pkg, age, memo)
	s.dirty.Store(true)
	if s.observer != nil {
		s.observer.Acquired(s.name)
	}
	return r
}

// Retract records a compensating acquisition at age for the record with the
// given sequence number. An empty label defaults to "retract: <context>".
// History is never rewritten.
func (s *State[T, K]) Retract(seq uint64, age int64, label string) (ledger.Record[T], error) {
	r, ok := s.ledger.Find(seq)
	if !ok {
		return ledger.Record[T]{}, fmt.Errorf("%w: seq %d", ErrUnknownRecord, seq)
	}
	return s.Acquire(r.Package.Compensate(label), age, fmt.Sprintf("retracts #%d", seq)), nil
}

// Records returns the ledger records in chronological order.
func (s *State[T, K]) Records() iter.Seq[ledger.Record[T]] { return s.ledger.All() }

// Len returns the number of ledger records.
func (s *State[T, K]) Len() int { return s.ledger.Len() }

// Packages returns the acquired packages in chronological order.
func (s *State[T, K]) Packages() []*ledger.Package[T] { return s.ledger.Packages() }

// Dirty reports whether records were acquired since the last collation.
func (s *State[T, K]) Dirty() bool { return s.dirty.Load() }

// Collate recomputes the collation from the full ledger if the state is
// dirty, publishes it and clears the dirty flag. It returns the published
// collation; on a clean state that is the cached slice, unchanged. The
// returned slice must not be modified.
func (s *State[T, K]) Collate(ctx context.Context) []Entry[K] {
	if !s.dirty.Load() {
		return s.Collation()
	}

	_, span := otel.Tracer(tracerName).Start(ctx, "collate."+s.name,
		trace.WithAttributes(attribute.Int("records", s.ledger.Len())))
	defer span.End()

	start := time.Now()
	next := Recompute(s.ledger.All(), s.Collation(), s.key)
	s.cache.Store(&next)
	s.dirty.Store(false)

	span.SetAttributes(attribute.Int("entries", len(next)))
	if s.observer != nil {
		s.observer.Collated(ctx, s.name, s.ledger.Len(), len(next), time.Since(start))
	}
	return next
}

// Collation returns the cached collation without recomputing. While
// [State.Dirty] is true the result may not reflect the latest records. The
// returned slice must not be modified.
func (s *State[T, K]) Collation() []Entry[K] {
	if p := s.cache.Load(); p != nil {
		return *p
	}
	return nil
}

// Fresh returns the cached collation, or [ErrStale] if the state is dirty.
func (s *State[T, K]) Fresh() ([]Entry[K], error) {
	if s.dirty.Load() {
		return nil, ErrStale
	}
	return s.Collation(), nil
}

// Current collates if needed and returns the up-to-date collation.
func (s *State[T, K]) Current(ctx context.Context) []Entry[K] {
	return s.Collate(ctx)
}

// Lookup returns the cached entry for key.
func (s *State[T, K]) Lookup(key K) (Entry[K], bool) {
	return Find(s.Collation(), key)
}

// Train sets the training progress of key and republishes the collation.
// The previously published slice is left untouched.
func (s *State[T, K]) Train(key K, progress float64) error {
	cur := s.Collation()
	i := slices.IndexFunc(cur, func(e Entry[K]) bool { return e.Key == key })
	if i < 0 {
		return ErrUnknownKey
	}
	next := slices.Clone(cur)
	next[i].TrainingProgress = progress
	s.cache.Store(&next)
	return nil
}

// SnapshotAt folds the records acquired at or before age, carrying training
// progress from the cached collation. The cache and dirty flag are left
// untouched.
func (s *State[T, K]) SnapshotAt(age int64) []Entry[K] {
	return Recompute(s.ledger.Until(age), s.Collation(), s.key)
}
