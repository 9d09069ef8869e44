// Package catalog provides the human-readable name tables that the
// definition registry resolves names through.
//
// A catalog maps canonical names and aliases of skills, knowledges and
// characteristics to their identity keys. Genes and phenes have no names of
// their own: a gene or phene name resolves to the default gene or phene key
// of the characteristic with that name.
//
// Supported input formats:
//   - Native YAML catalog files ([LoadFile], [LoadFromReader])
//   - The embedded default catalog ([Default])
//
// All [Table] operations are safe for concurrent use.
package catalog

// File is the top-level structure of a catalog YAML file.
//
// Example:
//
//	catalog:
//	  name: "Core"
//	characteristics:
//	  - name: strength
//	    aliases: [str]
//	    upp: 1
//	    category: 1
//	skills:
//	  - name: pilot
//	    code: 38
type File struct {
	Catalog         Meta                `yaml:"catalog"`
	Skills          []SkillDef          `yaml:"skills"`
	Knowledges      []KnowledgeDef      `yaml:"knowledges"`
	Characteristics []CharacteristicDef `yaml:"characteristics"`
}

// Meta holds top-level metadata for a catalog.
type Meta struct {
	// Name is the catalog's display name.
	Name string `yaml:"name"`

	// Description is a free-text summary.
	Description string `yaml:"description"`
}

// SkillDef names a skill code.
type SkillDef struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Code    int      `yaml:"code"`

	// Category and SubCategory are descriptive only and not part of the
	// skill's identity.
	Category    int `yaml:"category,omitempty"`
	SubCategory int `yaml:"sub_category,omitempty"`
}

// KnowledgeDef names a knowledge key.
type KnowledgeDef struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Code    int      `yaml:"code"`

	// Skill is the associated skill code. Zero means no association.
	Skill int `yaml:"skill,omitempty"`
	Focus int `yaml:"focus,omitempty"`
}

// CharacteristicDef names a characteristic key. Subtypes share the UPP index
// of their base characteristic.
type CharacteristicDef struct {
	Name     string       `yaml:"name"`
	Aliases  []string     `yaml:"aliases,omitempty"`
	UPP      int          `yaml:"upp"`
	Category int          `yaml:"category,omitempty"`
	Subtypes []SubtypeDef `yaml:"subtypes,omitempty"`
}

// SubtypeDef names a characteristic subtype.
type SubtypeDef struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Code    int      `yaml:"code"`
}
