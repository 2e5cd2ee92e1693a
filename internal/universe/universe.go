// Package universe holds the read-only model of types, members, annotations
// and supertypes that the analysis runs against. The model is produced by an
// external indexer (SCIP adapter, snapshot loader) and is immutable for the
// duration of a run.
package universe

import (
	"sort"
	"strings"
)

// Visibility represents the declared visibility of a type
type Visibility string

const (
	// VisibilityPublic for types visible outside their package
	VisibilityPublic Visibility = "public"
	// VisibilityPackage for package-private types
	VisibilityPackage Visibility = "package"
	// VisibilityPrivate for nested private types
	VisibilityPrivate Visibility = "private"
)

// Annotation represents a single annotation with its attribute values
type Annotation struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values,omitempty"`
}

// Value returns an attribute value, with ok reporting presence
func (a Annotation) Value(key string) (string, bool) {
	v, ok := a.Values[key]
	return v, ok
}

// Parameter represents a constructor or method parameter
type Parameter struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// Field represents a declared field
type Field struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Constructor represents a declared constructor
type Constructor struct {
	Parameters  []Parameter  `json:"parameters,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Method represents a declared or inherited method
type Method struct {
	Name        string       `json:"name"`
	Parameters  []Parameter  `json:"parameters,omitempty"`
	Returns     []string     `json:"returns,omitempty"`
	Throws      []string     `json:"throws,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`

	// Inherited marks methods pulled in from a supertype. Methods declared on
	// the universal root type are never part of the model.
	Inherited bool `json:"inherited,omitempty"`
}

// CallSite records one location that instantiates a type, used as provenance
// for published-event reporting
type CallSite struct {
	// Caller is the qualified name of the type containing the call
	Caller string `json:"caller"`
	// Member describes the calling member (constructor, factory method, ...)
	Member string `json:"member,omitempty"`
}

// Type is one code element in the universe. Identity is the qualified name.
type Type struct {
	QualifiedName string       `json:"qualifiedName"`
	Visibility    Visibility   `json:"visibility"`
	Annotations   []Annotation `json:"annotations,omitempty"`

	// Supertypes are the qualified names of direct supertypes (class and
	// interfaces alike)
	Supertypes []string `json:"supertypes,omitempty"`

	// TypeBounds are qualified names referenced as generic bounds, not
	// captured by any member signature
	TypeBounds []string `json:"typeBounds,omitempty"`

	Fields       []Field       `json:"fields,omitempty"`
	Constructors []Constructor `json:"constructors,omitempty"`
	Methods      []Method      `json:"methods,omitempty"`

	// Instantiations are call sites constructing this type, supplied by the
	// indexer for event-provenance reporting
	Instantiations []CallSite `json:"instantiations,omitempty"`
}

// SimpleName returns the last segment of the qualified name
func (t *Type) SimpleName() string {
	idx := strings.LastIndex(t.QualifiedName, ".")
	if idx < 0 {
		return t.QualifiedName
	}
	return t.QualifiedName[idx+1:]
}

// Package returns the package portion of the qualified name
func (t *Type) Package() string {
	idx := strings.LastIndex(t.QualifiedName, ".")
	if idx < 0 {
		return ""
	}
	return t.QualifiedName[:idx]
}

// IsPublic returns true for public types
func (t *Type) IsPublic() bool {
	return t.Visibility == VisibilityPublic
}

// HasAnnotation reports whether the type carries the named annotation
func (t *Type) HasAnnotation(name string) bool {
	_, ok := t.Annotation(name)
	return ok
}

// Annotation returns the first annotation with the given name
func (t *Type) Annotation(name string) (Annotation, bool) {
	for _, a := range t.Annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// AnnotationsNamed returns every annotation with the given name, preserving
// declaration order. Repeated annotations are how named interfaces stack on a
// package descriptor.
func (t *Type) AnnotationsNamed(name string) []Annotation {
	var out []Annotation
	for _, a := range t.Annotations {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// PackageDescriptor carries package-level annotations (module declarations,
// named interfaces)
type PackageDescriptor struct {
	Name        string       `json:"name"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// AnnotationsNamed returns every package-level annotation with the given name
func (p *PackageDescriptor) AnnotationsNamed(name string) []Annotation {
	var out []Annotation
	for _, a := range p.Annotations {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// Annotation returns the first package-level annotation with the given name
func (p *PackageDescriptor) Annotation(name string) (Annotation, bool) {
	for _, a := range p.Annotations {
		if a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Universe is the immutable set of all indexed types and packages
type Universe struct {
	types    map[string]*Type
	packages map[string]*PackageDescriptor
	ordered  []string // qualified names, sorted for deterministic iteration
}

// Type looks up a type by qualified name
func (u *Universe) Type(qualifiedName string) (*Type, bool) {
	t, ok := u.types[qualifiedName]
	return t, ok
}

// Types returns all types in deterministic (sorted) order
func (u *Universe) Types() []*Type {
	out := make([]*Type, 0, len(u.ordered))
	for _, name := range u.ordered {
		out = append(out, u.types[name])
	}
	return out
}

// Size returns the number of types in the universe
func (u *Universe) Size() int {
	return len(u.types)
}

// Package returns the descriptor for a package, if the indexer recorded one
func (u *Universe) Package(name string) (*PackageDescriptor, bool) {
	p, ok := u.packages[name]
	return p, ok
}

// TypesIn returns every type residing in pkg or one of its sub-packages
func (u *Universe) TypesIn(pkg string) []*Type {
	var out []*Type
	for _, name := range u.ordered {
		t := u.types[name]
		if ResidesIn(t.Package(), pkg) {
			out = append(out, t)
		}
	}
	return out
}

// DirectSubpackages returns the immediate sub-packages of root that contain
// at least one type (directly or transitively), sorted
func (u *Universe) DirectSubpackages(root string) []string {
	seen := make(map[string]bool)
	prefix := root + "."
	for _, name := range u.ordered {
		pkg := u.types[name].Package()
		if !strings.HasPrefix(pkg, prefix) {
			continue
		}
		rest := pkg[len(prefix):]
		first := rest
		if idx := strings.Index(rest, "."); idx >= 0 {
			first = rest[:idx]
		}
		seen[prefix+first] = true
	}
	out := make([]string, 0, len(seen))
	for pkg := range seen {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// ContainsAnnotationNamespace reports whether any annotation in the universe
// uses the given name prefix. Used for the one-time convention probe.
func (u *Universe) ContainsAnnotationNamespace(prefix string) bool {
	for _, name := range u.ordered {
		t := u.types[name]
		for _, a := range t.Annotations {
			if strings.HasPrefix(a.Name, prefix) {
				return true
			}
		}
	}
	for _, p := range u.packages {
		for _, a := range p.Annotations {
			if strings.HasPrefix(a.Name, prefix) {
				return true
			}
		}
	}
	return false
}

// ResidesIn reports whether pkg equals base or is nested below it
func ResidesIn(pkg, base string) bool {
	return pkg == base || strings.HasPrefix(pkg, base+".")
}

// Builder accumulates types and packages and produces an immutable Universe
type Builder struct {
	types    map[string]*Type
	packages map[string]*PackageDescriptor
}

// NewBuilder creates an empty Builder
func NewBuilder() *Builder {
	return &Builder{
		types:    make(map[string]*Type),
		packages: make(map[string]*PackageDescriptor),
	}
}

// AddType registers a type, replacing any previous type with the same
// qualified name
func (b *Builder) AddType(t *Type) *Builder {
	b.types[t.QualifiedName] = t
	return b
}

// AddPackage registers a package descriptor
func (b *Builder) AddPackage(p *PackageDescriptor) *Builder {
	b.packages[p.Name] = p
	return b
}

// Build produces the immutable Universe
func (b *Builder) Build() *Universe {
	ordered := make([]string, 0, len(b.types))
	for name := range b.types {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	types := make(map[string]*Type, len(b.types))
	for name, t := range b.types {
		types[name] = t
	}
	packages := make(map[string]*PackageDescriptor, len(b.packages))
	for name, p := range b.packages {
		packages[name] = p
	}

	return &Universe{
		types:    types,
		packages: packages,
		ordered:  ordered,
	}
}
