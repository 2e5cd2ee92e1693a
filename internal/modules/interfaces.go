package modules

import (
	"sort"

	"modguard/internal/errors"
	"modguard/internal/universe"
)

// NamedInterface is a declared subset of a module's types. The interface with
// an empty name is the module's unnamed (default) interface.
type NamedInterface struct {
	name           string
	types          map[string]*universe.Type
	includeRelated bool
}

// Name returns the interface name; empty for the unnamed interface
func (n *NamedInterface) Name() string {
	return n.name
}

// IsUnnamed reports whether this is the default interface
func (n *NamedInterface) IsUnnamed() bool {
	return n.name == ""
}

// Contains reports whether the type with the given qualified name is a member
func (n *NamedInterface) Contains(qualifiedName string) bool {
	_, ok := n.types[qualifiedName]
	return ok
}

// Types returns the member types in deterministic order
func (n *NamedInterface) Types() []*universe.Type {
	names := make([]string, 0, len(n.types))
	for name := range n.types {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*universe.Type, 0, len(names))
	for _, name := range names {
		out = append(out, n.types[name])
	}
	return out
}

// NamedInterfaces is the full exposed-surface model of one module
type NamedInterfaces struct {
	unnamed *NamedInterface
	named   []*NamedInterface // sorted by name

	// customized is true when at least one explicit declaration exists.
	// A module with no declarations exposes all public types; once any
	// declaration exists, only explicitly included types are exposed.
	customized bool

	// explicit is the union of explicitly declared members across the
	// unnamed and named interfaces
	explicit map[string]bool
}

// Unnamed returns the default interface
func (ni *NamedInterfaces) Unnamed() *NamedInterface {
	return ni.unnamed
}

// Named returns the interface with the given name. The empty name resolves to
// the unnamed interface.
func (ni *NamedInterfaces) Named(name string) (*NamedInterface, bool) {
	if name == "" {
		return ni.unnamed, true
	}
	for _, iface := range ni.named {
		if iface.name == name {
			return iface, true
		}
	}
	return nil, false
}

// All returns the unnamed interface followed by the named ones
func (ni *NamedInterfaces) All() []*NamedInterface {
	out := make([]*NamedInterface, 0, len(ni.named)+1)
	out = append(out, ni.unnamed)
	out = append(out, ni.named...)
	return out
}

// IsCustomized reports whether any explicit interface declaration exists
func (ni *NamedInterfaces) IsCustomized() bool {
	return ni.customized
}

// isExposed applies the exposure asymmetry: without declarations every public
// type is exposed; with declarations only explicitly included types are
func (ni *NamedInterfaces) isExposed(t *universe.Type) bool {
	if !ni.customized {
		return t.IsPublic()
	}
	return ni.explicit[t.QualifiedName]
}

// buildInterfaces partitions a module's types into its unnamed and named
// interfaces from the raw declarations
func buildInterfaces(moduleName string, raw RawDeclaration, moduleTypes []*universe.Type) (*NamedInterfaces, error) {
	byName := make(map[string]*universe.Type, len(moduleTypes)*2)
	for _, t := range moduleTypes {
		byName[t.QualifiedName] = t
		// simple names resolve as long as they are unambiguous; later
		// entries win, qualified names are always exact
		byName[t.SimpleName()] = t
	}

	ni := &NamedInterfaces{
		unnamed:  &NamedInterface{types: make(map[string]*universe.Type)},
		explicit: make(map[string]bool),
	}

	// assigned tracks types explicitly scoped into some interface
	assigned := make(map[string]bool)
	namedByName := make(map[string]*NamedInterface)

	for _, decl := range raw.Interfaces {
		var iface *NamedInterface
		if decl.Name == "" {
			iface = ni.unnamed
		} else if existing, ok := namedByName[decl.Name]; ok {
			iface = existing
		} else {
			iface = &NamedInterface{name: decl.Name, types: make(map[string]*universe.Type)}
			namedByName[decl.Name] = iface
			ni.named = append(ni.named, iface)
		}
		if decl.IncludeRelatedTypes {
			iface.includeRelated = true
		}

		ni.customized = true
		for _, typeName := range decl.Types {
			t, ok := byName[typeName]
			if !ok {
				return nil, errors.Newf(errors.DeclarationInvalid,
					"module '%s' declares interface '%s' with unknown type '%s'",
					moduleName, decl.Name, typeName)
			}
			iface.types[t.QualifiedName] = t
			assigned[t.QualifiedName] = true
			ni.explicit[t.QualifiedName] = true
		}
	}

	sort.Slice(ni.named, func(i, j int) bool {
		return ni.named[i].name < ni.named[j].name
	})

	// Related-type closure: pull in same-module types reachable via member
	// signatures of already-included types, bounded by a fixed point
	inModule := make(map[string]*universe.Type, len(moduleTypes))
	for _, t := range moduleTypes {
		inModule[t.QualifiedName] = t
	}
	for _, iface := range ni.named {
		if !iface.includeRelated {
			continue
		}
		closeOverRelatedTypes(iface, inModule, assigned, ni.explicit)
	}

	// Every type not explicitly scoped elsewhere belongs to the unnamed
	// interface
	for _, t := range moduleTypes {
		if !assigned[t.QualifiedName] {
			ni.unnamed.types[t.QualifiedName] = t
		}
	}

	return ni, nil
}

// closeOverRelatedTypes adds same-module types reachable via field, parameter
// and return types of included members. Membership is monotonic over a finite
// set, so iteration terminates.
func closeOverRelatedTypes(iface *NamedInterface, inModule map[string]*universe.Type, assigned, explicit map[string]bool) {
	for {
		grew := false
		for _, t := range iface.Types() {
			for _, ref := range referencedTypeNames(t) {
				candidate, ok := inModule[ref]
				if !ok {
					continue
				}
				if iface.Contains(candidate.QualifiedName) || assigned[candidate.QualifiedName] {
					continue
				}
				iface.types[candidate.QualifiedName] = candidate
				assigned[candidate.QualifiedName] = true
				explicit[candidate.QualifiedName] = true
				grew = true
			}
		}
		if !grew {
			return
		}
	}
}

// referencedTypeNames collects the type names reachable from a type's member
// signatures
func referencedTypeNames(t *universe.Type) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Type)
	}
	for _, c := range t.Constructors {
		for _, p := range c.Parameters {
			out = append(out, p.Type)
		}
	}
	for _, m := range t.Methods {
		for _, p := range m.Parameters {
			out = append(out, p.Type)
		}
		out = append(out, m.Returns...)
	}
	return out
}
