// Package worldgen builds populations of characters from a declarative
// scenario file.
//
// A scenario names species by the characteristics their genes express and
// lists characters with their aptitude and characteristic acquisitions. The
// [Builder] resolves every name through a shared definition registry and
// builds characters concurrently, so the registry sees many interning calls
// in parallel.
package worldgen

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrWong99/sophont/pkg/definition"
)

// ErrUnknownSpecies is returned by [Builder.Build] when a character names a
// species the scenario does not declare.
var ErrUnknownSpecies = errors.New("worldgen: species not declared")

// Scenario is the top-level structure of a scenario YAML file.
//
// Example:
//
//	species:
//	  - name: Humaniti
//	    genes: [strength, dexterity, endurance]
//	characters:
//	  - name: Jamison
//	    species: Humaniti
//	    age: 34
//	    aptitudes:
//	      - {kind: skill, name: pilot, level: 1, age: 18, context: "Basic Training"}
//	    characteristics:
//	      - {kind: gene, name: strength, level: 7}
type Scenario struct {
	Species    []SpeciesDef   `yaml:"species"`
	Characters []CharacterDef `yaml:"characters"`
}

// SpeciesDef declares a species by characteristic names.
type SpeciesDef struct {
	Name   string   `yaml:"name"`
	Genes  []string `yaml:"genes"`
	Phenes []string `yaml:"phenes,omitempty"`
}

// CharacterDef declares one character, or Count identical characters.
type CharacterDef struct {
	Name    string `yaml:"name"`
	Species string `yaml:"species"`
	Age     int64  `yaml:"age"`

	// Count builds this many copies, named "<name> #<n>". Zero means one.
	Count int `yaml:"count,omitempty"`

	Aptitudes       []AcquisitionDef `yaml:"aptitudes,omitempty"`
	Characteristics []AcquisitionDef `yaml:"characteristics,omitempty"`
	Training        []TrainingDef    `yaml:"training,omitempty"`
}

// AcquisitionDef is one acquisition. Kind is skill or knowledge for
// aptitudes and gene or phene for characteristics.
type AcquisitionDef struct {
	Kind    definition.Kind `yaml:"kind"`
	Name    string          `yaml:"name"`
	Level   int             `yaml:"level"`
	Age     int64           `yaml:"age"`
	Context string          `yaml:"context,omitempty"`
	Memo    string          `yaml:"memo,omitempty"`
}

// TrainingDef sets the training progress of a collated aptitude.
type TrainingDef struct {
	Kind     definition.Kind `yaml:"kind"`
	Name     string          `yaml:"name"`
	Progress float64         `yaml:"progress"`
}

// LoadFile reads, parses and validates a scenario YAML file from disk.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("worldgen: open scenario %q: %w", path, err)
	}
	defer f.Close()

	sc, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("worldgen: parse scenario %q: %w", path, err)
	}
	return sc, nil
}

// LoadFromReader parses and validates scenario YAML from an [io.Reader].
func LoadFromReader(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("worldgen: decode scenario yaml: %w", err)
	}
	if err := Validate(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks structural rules that do not need the catalog: names are
// present, species are unique and referenced species exist, and acquisition
// kinds fit their section. Name resolution happens at build time.
func Validate(sc *Scenario) error {
	var errs []error

	species := make(map[string]int, len(sc.Species))
	for i, sp := range sc.Species {
		prefix := fmt.Sprintf("species[%d]", i)
		if sp.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else if prev, ok := species[sp.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of species[%d]", prefix, sp.Name, prev))
		}
		species[sp.Name] = i
		if len(sp.Genes) == 0 {
			errs = append(errs, fmt.Errorf("%s.genes must not be empty", prefix))
		}
	}

	for i, c := range sc.Characters {
		prefix := fmt.Sprintf("characters[%d]", i)
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if _, ok := species[c.Species]; !ok {
			errs = append(errs, fmt.Errorf("%s.species %q is not declared", prefix, c.Species))
		}
		if c.Count < 0 {
			errs = append(errs, fmt.Errorf("%s.count %d must not be negative", prefix, c.Count))
		}
		for j, a := range c.Aptitudes {
			if a.Kind != definition.KindSkill && a.Kind != definition.KindKnowledge {
				errs = append(errs, fmt.Errorf("%s.aptitudes[%d].kind %q is invalid; valid values: skill, knowledge", prefix, j, a.Kind))
			}
		}
		for j, a := range c.Characteristics {
			if a.Kind != definition.KindGene && a.Kind != definition.KindPhene {
				errs = append(errs, fmt.Errorf("%s.characteristics[%d].kind %q is invalid; valid values: gene, phene", prefix, j, a.Kind))
			}
		}
		for j, tr := range c.Training {
			if tr.Kind != definition.KindSkill && tr.Kind != definition.KindKnowledge {
				errs = append(errs, fmt.Errorf("%s.training[%d].kind %q is invalid; valid values: skill, knowledge", prefix, j, tr.Kind))
			}
			if tr.Progress < 0 || tr.Progress > 1 {
				errs = append(errs, fmt.Errorf("%s.training[%d].progress %.2f is out of range [0, 1]", prefix, j, tr.Progress))
			}
		}
	}

	return errors.Join(errs...)
}
