package definition

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalidReference is returned when a definition that was not interned
	// by the expected [Registry] is used to build a package or genotype.
	ErrInvalidReference = errors.New("definition: reference is not interned in this registry")

	// ErrKeyType is returned by [Registry.Intern] when the key's dynamic type
	// does not match the requested kind.
	ErrKeyType = errors.New("definition: key type does not match kind")

	// ErrUnknownKind is returned for a [Kind] that is not recognised.
	ErrUnknownKind = errors.New("definition: unknown kind")

	// ErrUnknownName is returned by [Registry.LookupByName] when the name
	// table has no entry for the name.
	ErrUnknownName = errors.New("definition: unknown name")

	// ErrNoNameTable is returned by [Registry.LookupByName] when the registry
	// was built without a [NameTable].
	ErrNoNameTable = errors.New("definition: no name table configured")
)

// NameTable resolves human-readable names to identity keys. It is the
// external catalog the registry delegates name lookups to. Resolve must
// return a key of the dynamic type [Registry.Intern] expects for kind, and
// an error wrapping [ErrUnknownName] when the name is not mapped.
//
// Implementations must be safe for concurrent use.
type NameTable interface {
	Resolve(kind Kind, name string) (any, error)
}

// Namer is optionally implemented by a [NameTable] that can map identity
// keys back to display names.
type Namer interface {
	Name(kind Kind, key any) (string, bool)
}

// Observer receives interning outcomes. hit is true when the instance
// already existed.
type Observer interface {
	Interned(kind Kind, hit bool)
}

// Registry interns definitions. Equal keys always yield the same instance
// for the lifetime of the registry; there is no eviction.
//
// Registry is safe for concurrent use.
type Registry struct {
	skills          table[int, Skill]
	knowledges      table[KnowledgeKey, Knowledge]
	characteristics table[CharacteristicKey, Characteristic]
	genes           table[GeneKey, Gene]
	phenes          table[PheneKey, Phene]

	names    NameTable
	observer Observer
}

// Option is a functional option for [NewRegistry].
type Option func(*Registry)

// WithNameTable sets the table used by [Registry.LookupByName].
func WithNameTable(t NameTable) Option {
	return func(r *Registry) { r.names = t }
}

// WithObserver sets an observer notified on every intern call.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Skill returns the interned skill for code.
func (r *Registry) Skill(code int) *Skill {
	s, hit := r.skills.intern(code, func() *Skill { return &Skill{code: code} })
	r.observe(KindSkill, hit)
	return s
}

// Knowledge returns the interned knowledge for key.
func (r *Registry) Knowledge(key KnowledgeKey) *Knowledge {
	k, hit := r.knowledges.intern(key, func() *Knowledge { return &Knowledge{key: key} })
	r.observe(KindKnowledge, hit)
	return k
}

// Characteristic returns the interned characteristic for key.
func (r *Registry) Characteristic(key CharacteristicKey) *Characteristic {
	c, hit := r.characteristics.intern(key, func() *Characteristic { return &Characteristic{key: key} })
	r.observe(KindCharacteristic, hit)
	return c
}

// Gene returns the interned gene for key. The characteristic it expresses is
// interned as well.
func (r *Registry) Gene(key GeneKey) *Gene {
	if g, ok := r.genes.get(key); ok {
		r.observe(KindGene, true)
		return g
	}
	c := r.Characteristic(key.Characteristic)
	g, hit := r.genes.intern(key, func() *Gene { return &Gene{key: key, characteristic: c} })
	r.observe(KindGene, hit)
	return g
}

// Phene returns the interned phene for key. The characteristic it expresses
// is interned as well.
func (r *Registry) Phene(key PheneKey) *Phene {
	if p, ok := r.phenes.get(key); ok {
		r.observe(KindPhene, true)
		return p
	}
	c := r.Characteristic(key.Characteristic)
	p, hit := r.phenes.intern(key, func() *Phene { return &Phene{key: key, characteristic: c} })
	r.observe(KindPhene, hit)
	return p
}

// Intern returns the interned definition of the given kind for key. The
// key's dynamic type must match kind: int for [KindSkill], [KnowledgeKey],
// [CharacteristicKey], [GeneKey] or [PheneKey]. Otherwise [ErrKeyType] is
// returned.
func (r *Registry) Intern(kind Kind, key any) (Definition, error) {
	switch kind {
	case KindSkill:
		if k, ok := key.(int); ok {
			return r.Skill(k), nil
		}
	case KindKnowledge:
		if k, ok := key.(KnowledgeKey); ok {
			return r.Knowledge(k), nil
		}
	case KindCharacteristic:
		if k, ok := key.(CharacteristicKey); ok {
			return r.Characteristic(k), nil
		}
	case KindGene:
		if k, ok := key.(GeneKey); ok {
			return r.Gene(k), nil
		}
	case KindPhene:
		if k, ok := key.(PheneKey); ok {
			return r.Phene(k), nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil, fmt.Errorf("%w: %s key of type %T", ErrKeyType, kind, key)
}

// LookupByName resolves name through the configured [NameTable] and interns
// the resulting key.
func (r *Registry) LookupByName(kind Kind, name string) (Definition, error) {
	if r.names == nil {
		return nil, ErrNoNameTable
	}
	key, err := r.names.Resolve(kind, name)
	if err != nil {
		return nil, fmt.Errorf("definition: lookup %s %q: %w", kind, name, err)
	}
	return r.Intern(kind, key)
}

// Name returns the display name of def from the name table, if the table
// implements [Namer]. Otherwise it falls back to def.String().
func (r *Registry) Name(def Definition) string {
	if n, ok := r.names.(Namer); ok && def != nil {
		if name, ok := n.Name(def.Kind(), def.Key()); ok {
			return name
		}
	}
	if def == nil {
		return "<nil>"
	}
	return def.String()
}

// Contains reports whether def is the instance this registry interned for
// def's key. Definitions from another registry, zero-value literals and nil
// pointers are not contained.
func (r *Registry) Contains(def Definition) bool {
	switch d := def.(type) {
	case *Skill:
		return d != nil && r.skills.holds(d.code, d)
	case *Knowledge:
		return d != nil && r.knowledges.holds(d.key, d)
	case *Characteristic:
		return d != nil && r.characteristics.holds(d.key, d)
	case *Gene:
		return d != nil && r.genes.holds(d.key, d)
	case *Phene:
		return d != nil && r.phenes.holds(d.key, d)
	}
	return false
}

// Len returns the number of interned definitions of kind.
func (r *Registry) Len(kind Kind) int {
	switch kind {
	case KindSkill:
		return r.skills.len()
	case KindKnowledge:
		return r.knowledges.len()
	case KindCharacteristic:
		return r.characteristics.len()
	case KindGene:
		return r.genes.len()
	case KindPhene:
		return r.phenes.len()
	}
	return 0
}

func (r *Registry) observe(kind Kind, hit bool) {
	if r.observer != nil {
		r.observer.Interned(kind, hit)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// table
// ─────────────────────────────────────────────────────────────────────────────

// table is a check-then-insert map guarded by a read-write mutex. The zero
// value is ready to use.
type table[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]*V
}

func (t *table[K, V]) get(key K) (*V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.m[key]
	return v, ok
}

// intern returns the stored value for key, building and storing it under the
// write lock when absent. The re-check under the write lock guarantees a
// single instance per key even when callers race.
func (t *table[K, V]) intern(key K, build func() *V) (*V, bool) {
	if v, ok := t.get(key); ok {
		return v, true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if v, ok := t.m[key]; ok {
		return v, true
	}
	if t.m == nil {
		t.m = make(map[K]*V)
	}
	v := build()
	t.m[key] = v
	return v, false
}

func (t *table[K, V]) holds(key K, v *V) bool {
	stored, ok := t.get(key)
	return ok && stored == v
}

func (t *table[K, V]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}
