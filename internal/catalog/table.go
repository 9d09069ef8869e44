package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MrWong99/sophont/pkg/definition"
)

// ErrDuplicateName is returned by [Table.Add] when a name or alias is already
// mapped to a different key of the same kind.
var ErrDuplicateName = errors.New("catalog: name already mapped")

// Compile-time assertions that Table satisfies the registry's name lookup
// interfaces.
var (
	_ definition.NameTable = (*Table)(nil)
	_ definition.Namer     = (*Table)(nil)
)

// Table is a thread-safe, in-memory name table. It maps normalised names and
// aliases to identity keys and canonical names back from keys.
type Table struct {
	mu        sync.RWMutex
	keys      map[definition.Kind]map[string]any
	canonical map[definition.Kind]map[any]string
}

// NewTable returns an empty [Table].
func NewTable() *Table {
	return &Table{
		keys:      make(map[definition.Kind]map[string]any),
		canonical: make(map[definition.Kind]map[any]string),
	}
}

// FromFile builds a [Table] from a validated catalog file.
func FromFile(f *File) (*Table, error) {
	t := NewTable()
	for _, s := range f.Skills {
		if err := t.Add(definition.KindSkill, s.Code, s.Name, s.Aliases...); err != nil {
			return nil, err
		}
	}
	for _, k := range f.Knowledges {
		key := definition.KnowledgeKey{Code: k.Code, AssociatedSkill: orNoCode(k.Skill), Focus: orNoCode(k.Focus)}
		if err := t.Add(definition.KindKnowledge, key, k.Name, k.Aliases...); err != nil {
			return nil, err
		}
	}
	for _, c := range f.Characteristics {
		base := definition.CharacteristicKey{UPPIndex: c.UPP, Category: c.Category}
		if err := t.Add(definition.KindCharacteristic, base, c.Name, c.Aliases...); err != nil {
			return nil, err
		}
		for _, st := range c.Subtypes {
			key := base
			key.Subtype = st.Code
			if err := t.Add(definition.KindCharacteristic, key, st.Name, st.Aliases...); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func orNoCode(code int) int {
	if code == 0 {
		return definition.NoCode
	}
	return code
}

// Add maps name and its aliases to key. The first call for a key sets its
// canonical name. Re-adding a name for the same key is a no-op.
func (t *Table) Add(kind definition.Kind, key any, name string, aliases ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := append([]string{name}, aliases...)
	byName := t.keys[kind]
	for _, n := range names {
		if prev, ok := byName[Normalize(n)]; ok && prev != key {
			return fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, n)
		}
	}

	if byName == nil {
		byName = make(map[string]any)
		t.keys[kind] = byName
	}
	for _, n := range names {
		if norm := Normalize(n); norm != "" {
			byName[norm] = key
		}
	}

	byKey := t.canonical[kind]
	if byKey == nil {
		byKey = make(map[any]string)
		t.canonical[kind] = byKey
	}
	if _, ok := byKey[key]; !ok {
		byKey[key] = name
	}
	return nil
}

// Resolve implements [definition.NameTable]. Gene and phene names resolve to
// the default key of the characteristic with that name.
func (t *Table) Resolve(kind definition.Kind, name string) (any, error) {
	switch kind {
	case definition.KindGene:
		c, err := t.characteristic(name)
		if err != nil {
			return nil, err
		}
		return definition.DefaultGeneKey(c), nil
	case definition.KindPhene:
		c, err := t.characteristic(name)
		if err != nil {
			return nil, err
		}
		return definition.DefaultPheneKey(c), nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if key, ok := t.keys[kind][Normalize(name)]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s %q", definition.ErrUnknownName, kind, name)
}

func (t *Table) characteristic(name string) (definition.CharacteristicKey, error) {
	key, err := t.Resolve(definition.KindCharacteristic, name)
	if err != nil {
		return definition.CharacteristicKey{}, err
	}
	return key.(definition.CharacteristicKey), nil
}

// Name implements [definition.Namer]. Genes and phenes are named after the
// characteristic they express.
func (t *Table) Name(kind definition.Kind, key any) (string, bool) {
	switch k := key.(type) {
	case definition.GeneKey:
		return t.Name(definition.KindCharacteristic, k.Characteristic)
	case definition.PheneKey:
		return t.Name(definition.KindCharacteristic, k.Characteristic)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	name, ok := t.canonical[kind][key]
	return name, ok
}

// Names returns the canonical names of kind in sorted order.
func (t *Table) Names(kind definition.Kind) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.canonical[kind]))
	for _, name := range t.canonical[kind] {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Normalize folds case and collapses runs of whitespace, so "Social  Standing"
// and "social standing" name the same entry.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
