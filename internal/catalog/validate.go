package catalog

import (
	"errors"
	"fmt"
)

// Validate checks a [File] for required fields and collisions.
//
// Rules:
//   - Every entry must have a non-empty name.
//   - Characteristic UPP indexes must be positive.
//   - Within a kind, a normalised name or alias maps to one key only.
//   - Within a kind, a key is defined once.
func Validate(f *File) error {
	var errs []error

	skillNames := newNameSet("skills")
	skillCodes := make(map[int]int)
	for i, s := range f.Skills {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("skills[%d]: name must not be empty", i))
		}
		if prev, ok := skillCodes[s.Code]; ok {
			errs = append(errs, fmt.Errorf("skills[%d]: code %d already defined by skills[%d]", i, s.Code, prev))
		}
		skillCodes[s.Code] = i
		errs = append(errs, skillNames.add(i, s.Name, s.Aliases)...)
	}

	knowledgeNames := newNameSet("knowledges")
	knowledgeKeys := make(map[[3]int]int)
	for i, k := range f.Knowledges {
		if k.Name == "" {
			errs = append(errs, fmt.Errorf("knowledges[%d]: name must not be empty", i))
		}
		key := [3]int{k.Code, k.Skill, k.Focus}
		if prev, ok := knowledgeKeys[key]; ok {
			errs = append(errs, fmt.Errorf("knowledges[%d]: key %v already defined by knowledges[%d]", i, key, prev))
		}
		knowledgeKeys[key] = i
		errs = append(errs, knowledgeNames.add(i, k.Name, k.Aliases)...)
	}

	charNames := newNameSet("characteristics")
	upps := make(map[int]int)
	for i, c := range f.Characteristics {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("characteristics[%d]: name must not be empty", i))
		}
		if c.UPP < 1 {
			errs = append(errs, fmt.Errorf("characteristics[%d]: upp must be positive, got %d", i, c.UPP))
		}
		if prev, ok := upps[c.UPP]; ok {
			errs = append(errs, fmt.Errorf("characteristics[%d]: upp %d already defined by characteristics[%d]", i, c.UPP, prev))
		}
		upps[c.UPP] = i
		errs = append(errs, charNames.add(i, c.Name, c.Aliases)...)

		subtypes := make(map[int]bool)
		for j, st := range c.Subtypes {
			if st.Name == "" {
				errs = append(errs, fmt.Errorf("characteristics[%d].subtypes[%d]: name must not be empty", i, j))
			}
			if st.Code == 0 || subtypes[st.Code] {
				errs = append(errs, fmt.Errorf("characteristics[%d].subtypes[%d]: code %d is zero or duplicated", i, j, st.Code))
			}
			subtypes[st.Code] = true
			errs = append(errs, charNames.add(i, st.Name, st.Aliases)...)
		}
	}

	return errors.Join(errs...)
}

type nameSet struct {
	section string
	seen    map[string]int
}

func newNameSet(section string) *nameSet {
	return &nameSet{section: section, seen: make(map[string]int)}
}

func (s *nameSet) add(i int, name string, aliases []string) []error {
	var errs []error
	for _, n := range append([]string{name}, aliases...) {
		norm := Normalize(n)
		if norm == "" {
			continue
		}
		if prev, ok := s.seen[norm]; ok && prev != i {
			errs = append(errs, fmt.Errorf("%s[%d]: name %q already used by %s[%d]", s.section, i, n, s.section, prev))
			continue
		}
		s.seen[norm] = i
	}
	return errs
}
