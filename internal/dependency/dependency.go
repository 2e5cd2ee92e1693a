// Package dependency extracts and classifies cross-module references.
package dependency

import (
	"fmt"

	"modguard/internal/universe"
)

// Kind classifies why one module references another
type Kind string

const (
	// KindUsesComponent for injection-point references
	KindUsesComponent Kind = "uses-component"
	// KindEntity for references to persistence entities
	KindEntity Kind = "entity"
	// KindEventListener for event-listener callback references
	KindEventListener Kind = "event-listener"
	// KindDefault for plain references
	KindDefault Kind = "default"
)

// AllKinds lists every kind in display order
var AllKinds = []Kind{KindUsesComponent, KindEntity, KindEventListener, KindDefault}

// ParseKind converts a string to a Kind, with ok reporting whether it matched
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindUsesComponent, KindEntity, KindEventListener, KindDefault:
		return Kind(s), true
	}
	return "", false
}

// DescribeKind renders a kind as the verb phrase used in reports
func DescribeKind(k Kind) string {
	switch k {
	case KindUsesComponent:
		return "uses component"
	case KindEntity:
		return "references entity"
	case KindEventListener:
		return "listens to events of"
	default:
		return "depends on"
	}
}

// Dependency is one extracted cross-module reference. Equality is defined by
// (source, target, kind); the description is provenance only.
type Dependency struct {
	Source       *universe.Type `json:"-"`
	Target       *universe.Type `json:"-"`
	SourceModule string         `json:"sourceModule"`
	TargetModule string         `json:"targetModule"`
	Kind         Kind           `json:"kind"`

	// Description is a human-readable provenance of the reference, e.g.
	// "OrderService declares constructor parameter of type StockChecker"
	Description string `json:"description"`
}

// Key returns the deduplication key (source, target, kind)
func (d Dependency) Key() string {
	return d.Source.QualifiedName + "|" + d.Target.QualifiedName + "|" + string(d.Kind)
}

// String renders the dependency for reports
func (d Dependency) String() string {
	return fmt.Sprintf("%s %s %s (%s)",
		d.Source.QualifiedName, DescribeKind(d.Kind), d.Target.QualifiedName, d.Description)
}

// FieldInjection records one annotated injected field, kept separately from
// dependencies so the verifier can apply the field-injection policy even when
// the injected collaborator never crosses a module boundary.
type FieldInjection struct {
	// Type is the declaring type
	Type *universe.Type
	// Module is the declaring type's module
	Module string
	// Field is the injected field name
	Field string
	// TargetType is the qualified name of the injected type
	TargetType string
	// Configuration is true when the declaring type is a configuration or
	// factory type, for which field injection is tolerated
	Configuration bool
}

// Extraction is the result of extracting one module
type Extraction struct {
	Dependencies    []Dependency
	FieldInjections []FieldInjection
}
