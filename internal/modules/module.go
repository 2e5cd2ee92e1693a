package modules

import (
	"sort"
	"sync"

	"modguard/internal/dependency"
	"modguard/internal/universe"
)

// Module represents one package-rooted architectural unit. Modules are
// created once per analysis run and are immutable afterwards, except for the
// lazily computed derived facts below, each guarded by its own once cell.
type Module struct {
	name        string
	displayName string
	basePackage string

	types     []*universe.Type          // sorted by qualified name
	typeIndex map[string]*universe.Type // qualified and simple names

	interfaces *NamedInterfaces
	markers    universe.Markers

	// rawAllowed holds the textual allowed-dependency identifiers until the
	// whole collection exists; resolution happens in the collection's
	// second construction phase
	rawAllowed []string
	allowed    []DeclaredDependency

	extractionOnce sync.Once
	extraction     dependency.Extraction

	rootsOnce sync.Once
	roots     []*universe.Type

	eventsOnce sync.Once
	events     []PublishedEvent

	componentsOnce sync.Once
	components     []*universe.Type
}

// PublishedEvent is one domain event type published by a module, with the
// instantiation sites recorded as provenance for documentation
type PublishedEvent struct {
	Type  *universe.Type      `json:"-"`
	Name  string              `json:"type"`
	Sites []universe.CallSite `json:"sites,omitempty"`
}

func newModule(name, basePackage string, types []*universe.Type, raw RawDeclaration, markers universe.Markers) (*Module, error) {
	sort.Slice(types, func(i, j int) bool {
		return types[i].QualifiedName < types[j].QualifiedName
	})

	interfaces, err := buildInterfaces(name, raw, types)
	if err != nil {
		return nil, err
	}

	displayName := raw.DisplayName
	if displayName == "" {
		displayName = name
	}

	index := make(map[string]*universe.Type, len(types)*2)
	for _, t := range types {
		index[t.QualifiedName] = t
	}
	for _, t := range types {
		if _, taken := index[t.SimpleName()]; !taken {
			index[t.SimpleName()] = t
		}
	}

	return &Module{
		name:        name,
		displayName: displayName,
		basePackage: basePackage,
		types:       types,
		typeIndex:   index,
		interfaces:  interfaces,
		markers:     markers,
		rawAllowed:  raw.AllowedDependencies,
	}, nil
}

// Name returns the module name, derived from its base package relative to
// the analyzed root
func (m *Module) Name() string {
	return m.name
}

// DisplayName returns the declared display name, falling back to the name
func (m *Module) DisplayName() string {
	return m.displayName
}

// BasePackage returns the module's base package
func (m *Module) BasePackage() string {
	return m.basePackage
}

// Types returns every type of the module in deterministic order
func (m *Module) Types() []*universe.Type {
	out := make([]*universe.Type, len(m.types))
	copy(out, m.types)
	return out
}

// Contains reports whether the type belongs to this module
func (m *Module) Contains(t *universe.Type) bool {
	return m.ContainsNamed(t.QualifiedName)
}

// ContainsNamed reports whether the type with the given qualified name
// belongs to this module
func (m *Module) ContainsNamed(qualifiedName string) bool {
	t, ok := m.typeIndex[qualifiedName]
	return ok && t.QualifiedName == qualifiedName
}

// IsExposed reports whether the type is part of the module's exposed surface
func (m *Module) IsExposed(t *universe.Type) bool {
	return m.Contains(t) && m.interfaces.isExposed(t)
}

// GetType looks a type up by qualified or simple name
func (m *Module) GetType(name string) (*universe.Type, bool) {
	t, ok := m.typeIndex[name]
	return t, ok
}

// Interfaces returns the module's named-interface model
func (m *Module) Interfaces() *NamedInterfaces {
	return m.interfaces
}

// AllowedDependencies returns the resolved allowed-dependency declarations.
// An empty list means the module is unrestricted.
func (m *Module) AllowedDependencies() []DeclaredDependency {
	out := make([]DeclaredDependency, len(m.allowed))
	copy(out, m.allowed)
	return out
}

// Dependencies returns the module's outgoing dependencies, optionally
// filtered by kind. The collection is passed explicitly because resolving
// targets requires cross-module lookup; the module holds no back-reference.
func (m *Module) Dependencies(am *ApplicationModules, kinds ...dependency.Kind) []dependency.Dependency {
	ext := m.extract(am)
	if len(kinds) == 0 {
		out := make([]dependency.Dependency, len(ext.Dependencies))
		copy(out, ext.Dependencies)
		return out
	}
	wanted := make(map[dependency.Kind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	var out []dependency.Dependency
	for _, d := range ext.Dependencies {
		if wanted[d.Kind] {
			out = append(out, d)
		}
	}
	return out
}

// extract runs dependency extraction once per module instance
func (m *Module) extract(am *ApplicationModules) dependency.Extraction {
	m.extractionOnce.Do(func() {
		extractor := dependency.NewExtractor(am.universe, m.markers, am, am.stdPrefixes)
		m.extraction = extractor.ExtractModule(m.name, m.types)
	})
	return m.extraction
}

// AggregateRoots identifies the architecturally evident aggregate roots of
// the module: entities not referenced as a sub-entity of another same-module
// entity, plus their same-module superclasses, deduplicated.
func (m *Module) AggregateRoots() []*universe.Type {
	m.rootsOnce.Do(func() {
		var entities []*universe.Type
		for _, t := range m.types {
			if t.HasAnnotation(m.markers.Entity) {
				entities = append(entities, t)
			}
		}

		// entities referenced as a field of another entity are sub-entities
		subEntity := make(map[string]bool)
		for _, e := range entities {
			for _, f := range e.Fields {
				if target, ok := m.typeIndex[f.Type]; ok && target.HasAnnotation(m.markers.Entity) {
					subEntity[target.QualifiedName] = true
				}
			}
		}

		seen := make(map[string]bool)
		for _, e := range entities {
			if subEntity[e.QualifiedName] || seen[e.QualifiedName] {
				continue
			}
			seen[e.QualifiedName] = true
			m.roots = append(m.roots, e)

			// same-module superclasses ride along
			for _, super := range e.Supertypes {
				if t, ok := m.typeIndex[super]; ok && t.QualifiedName == super && !seen[super] {
					seen[super] = true
					m.roots = append(m.roots, t)
				}
			}
		}
	})
	out := make([]*universe.Type, len(m.roots))
	copy(out, m.roots)
	return out
}

// PublishedEvents finds the module's domain event types. An event type is
// annotated as an event or implements the event marker supertype. Every
// instantiation site whose calling type differs from the event type itself is
// recorded as provenance.
func (m *Module) PublishedEvents() []PublishedEvent {
	m.eventsOnce.Do(func() {
		for _, t := range m.types {
			if !m.isEventType(t) {
				continue
			}
			event := PublishedEvent{Type: t, Name: t.QualifiedName}
			for _, site := range t.Instantiations {
				if site.Caller == t.QualifiedName {
					continue
				}
				event.Sites = append(event.Sites, site)
			}
			m.events = append(m.events, event)
		}
	})
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Module) isEventType(t *universe.Type) bool {
	if t.HasAnnotation(m.markers.DomainEvent) {
		return true
	}
	for _, super := range t.Supertypes {
		if super == m.markers.DomainEvent {
			return true
		}
	}
	return false
}

// Components returns the module's Spring-style component types
func (m *Module) Components() []*universe.Type {
	m.componentsOnce.Do(func() {
		for _, t := range m.types {
			if t.HasAnnotation(m.markers.Component) || t.HasAnnotation(m.markers.Configuration) {
				m.components = append(m.components, t)
			}
		}
	})
	out := make([]*universe.Type, len(m.components))
	copy(out, m.components)
	return out
}
