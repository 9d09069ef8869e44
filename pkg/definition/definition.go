// Package definition provides the shared, interned definition objects that a
// Sophont's history refers to: skills, knowledges, characteristics, genes and
// phenes.
//
// Definitions are flyweights. They are never constructed directly; a
// [Registry] hands out exactly one instance per identity key, so pointer
// equality is identity equality:
//
//	reg := definition.NewRegistry()
//	a := reg.Skill(38)
//	b := reg.Skill(38)
//	// a == b
//
// Descriptive data such as display names lives in an external [NameTable]
// and is never part of a definition's identity.
//
// All [Registry] operations are safe for concurrent use. Definitions are
// immutable and may be shared freely across goroutines.
package definition

import "fmt"

// Kind identifies the variant of a [Definition].
type Kind string

const (
	// KindSkill is a trained skill such as "Pilot".
	KindSkill Kind = "skill"

	// KindKnowledge is a specialised knowledge, optionally tied to a skill.
	KindKnowledge Kind = "knowledge"

	// KindCharacteristic is a UPP characteristic such as "Strength".
	KindCharacteristic Kind = "characteristic"

	// KindGene is an inherited expression of a characteristic.
	KindGene Kind = "gene"

	// KindPhene is an expressed (possibly grafted) form of a characteristic.
	KindPhene Kind = "phene"
)

// IsValid reports whether k is a recognised definition kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindSkill, KindKnowledge, KindCharacteristic, KindGene, KindPhene:
		return true
	}
	return false
}

// Definition is implemented by every interned definition type.
type Definition interface {
	// Kind returns the variant of the definition.
	Kind() Kind

	// Key returns the identity key the definition was interned under. The
	// dynamic type of the key depends on Kind: int for skills,
	// [KnowledgeKey], [CharacteristicKey], [GeneKey] or [PheneKey].
	Key() any

	fmt.Stringer
}

// Aptitude is a definition that can be trained: a [*Skill] or a [*Knowledge].
type Aptitude interface {
	Definition
	aptitude()
}

// Expressive is a definition that expresses exactly one [*Characteristic]:
// a [*Gene] or a [*Phene].
type Expressive interface {
	Definition
	Expresses() *Characteristic
}

// Compile-time interface assertions.
var (
	_ Aptitude   = (*Skill)(nil)
	_ Aptitude   = (*Knowledge)(nil)
	_ Definition = (*Characteristic)(nil)
	_ Expressive = (*Gene)(nil)
	_ Expressive = (*Phene)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Skill
// ─────────────────────────────────────────────────────────────────────────────

// Skill is an interned skill identified by its base skill code.
type Skill struct {
	code int
}

// Code returns the base skill code.
func (s *Skill) Code() int { return s.code }

// Kind implements [Definition].
func (s *Skill) Kind() Kind { return KindSkill }

// Key implements [Definition]. The key is the skill code.
func (s *Skill) Key() any { return s.code }

func (s *Skill) String() string { return fmt.Sprintf("skill(%d)", s.code) }

func (s *Skill) aptitude() {}

// ─────────────────────────────────────────────────────────────────────────────
// Knowledge
// ─────────────────────────────────────────────────────────────────────────────

// NoCode marks an absent code in composite keys (for example a knowledge
// without an associated skill).
const NoCode = -99

// KnowledgeKey identifies a [Knowledge].
type KnowledgeKey struct {
	// Code is the base knowledge code.
	Code int

	// AssociatedSkill is the code of the skill this knowledge specialises,
	// or [NoCode].
	AssociatedSkill int

	// Focus narrows the knowledge further, or [NoCode].
	Focus int
}

// Knowledge is an interned knowledge.
type Knowledge struct {
	key KnowledgeKey
}

// Code returns the base knowledge code.
func (k *Knowledge) Code() int { return k.key.Code }

// AssociatedSkill returns the associated skill code, or [NoCode].
func (k *Knowledge) AssociatedSkill() int { return k.key.AssociatedSkill }

// Focus returns the focus code, or [NoCode].
func (k *Knowledge) Focus() int { return k.key.Focus }

// Kind implements [Definition].
func (k *Knowledge) Kind() Kind { return KindKnowledge }

// Key implements [Definition]. The key is a [KnowledgeKey].
func (k *Knowledge) Key() any { return k.key }

func (k *Knowledge) String() string {
	return fmt.Sprintf("knowledge(%d/%d/%d)", k.key.Code, k.key.AssociatedSkill, k.key.Focus)
}

func (k *Knowledge) aptitude() {}

// ─────────────────────────────────────────────────────────────────────────────
// Characteristic
// ─────────────────────────────────────────────────────────────────────────────

// CharacteristicKey identifies a [Characteristic].
type CharacteristicKey struct {
	// UPPIndex is the position of the characteristic in the Universal
	// Personality Profile (1-based).
	UPPIndex int

	// Subtype distinguishes alternatives sharing a UPP position
	// (e.g. Dexterity, Agility and Grace).
	Subtype int

	// Category is the master category code.
	Category int
}

// Characteristic is an interned characteristic.
type Characteristic struct {
	key CharacteristicKey
}

// UPPIndex returns the UPP position.
func (c *Characteristic) UPPIndex() int { return c.key.UPPIndex }

// Subtype returns the subtype code.
func (c *Characteristic) Subtype() int { return c.key.Subtype }

// Category returns the master category code.
func (c *Characteristic) Category() int { return c.key.Category }

// Kind implements [Definition].
func (c *Characteristic) Kind() Kind { return KindCharacteristic }

// Key implements [Definition]. The key is a [CharacteristicKey].
func (c *Characteristic) Key() any { return c.key }

// CharacteristicKey returns the typed identity key.
func (c *Characteristic) CharacteristicKey() CharacteristicKey { return c.key }

func (c *Characteristic) String() string {
	return fmt.Sprintf("characteristic(%d/%d/%d)", c.key.UPPIndex, c.key.Subtype, c.key.Category)
}

// ─────────────────────────────────────────────────────────────────────────────
// Gene
// ─────────────────────────────────────────────────────────────────────────────

// GeneKey identifies a [Gene].
type GeneKey struct {
	Characteristic          CharacteristicKey
	DieMult                 int
	Precedence              int
	GenderLink              int
	CasteLink               int
	InheritanceContributors int
}

// DefaultGeneKey returns the key of the plain gene for c: one die, no
// precedence, no gender or caste link, two inheritance contributors.
func DefaultGeneKey(c CharacteristicKey) GeneKey {
	return GeneKey{
		Characteristic:          c,
		DieMult:                 1,
		Precedence:              0,
		GenderLink:              -1,
		CasteLink:               -1,
		InheritanceContributors: 2,
	}
}

// Gene is an interned gene. Its characteristic is fixed at construction.
type Gene struct {
	key            GeneKey
	characteristic *Characteristic
}

// Expresses implements [Expressive].
func (g *Gene) Expresses() *Characteristic { return g.characteristic }

// DieMult returns the number of dice the gene contributes.
func (g *Gene) DieMult() int { return g.key.DieMult }

// Precedence returns the gene's precedence.
func (g *Gene) Precedence() int { return g.key.Precedence }

// GenderLink returns the linked gender code, or -1.
func (g *Gene) GenderLink() int { return g.key.GenderLink }

// CasteLink returns the linked caste code, or -1.
func (g *Gene) CasteLink() int { return g.key.CasteLink }

// InheritanceContributors returns how many parents contribute to the gene.
func (g *Gene) InheritanceContributors() int { return g.key.InheritanceContributors }

// Kind implements [Definition].
func (g *Gene) Kind() Kind { return KindGene }

// Key implements [Definition]. The key is a [GeneKey].
func (g *Gene) Key() any { return g.key }

func (g *Gene) String() string {
	return fmt.Sprintf("gene(%s x%d)", g.characteristic, g.key.DieMult)
}

// ─────────────────────────────────────────────────────────────────────────────
// Phene
// ─────────────────────────────────────────────────────────────────────────────

// PheneKey identifies a [Phene].
type PheneKey struct {
	Characteristic       CharacteristicKey
	ExpressionPrecedence int
	Contributor          [16]byte
	Grafted              bool
}

// DefaultPheneKey returns the key of the plain phene for c: precedence one,
// no contributor, not grafted.
func DefaultPheneKey(c CharacteristicKey) PheneKey {
	return PheneKey{Characteristic: c, ExpressionPrecedence: 1}
}

// Phene is an interned phene. Its characteristic is fixed at construction.
type Phene struct {
	key            PheneKey
	characteristic *Characteristic
}

// Expresses implements [Expressive].
func (p *Phene) Expresses() *Characteristic { return p.characteristic }

// ExpressionPrecedence returns the phene's expression precedence.
func (p *Phene) ExpressionPrecedence() int { return p.key.ExpressionPrecedence }

// Contributor returns the id of the contributor of the phene. The zero
// value means no contributor.
func (p *Phene) Contributor() [16]byte { return p.key.Contributor }

// Grafted reports whether the phene was grafted rather than inherited.
func (p *Phene) Grafted() bool { return p.key.Grafted }

// Kind implements [Definition].
func (p *Phene) Kind() Kind { return KindPhene }

// Key implements [Definition]. The key is a [PheneKey].
func (p *Phene) Key() any { return p.key }

func (p *Phene) String() string {
	if p.key.Grafted {
		return fmt.Sprintf("phene(%s grafted)", p.characteristic)
	}
	return fmt.Sprintf("phene(%s)", p.characteristic)
}
