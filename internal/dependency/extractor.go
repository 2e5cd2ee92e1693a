package dependency

import (
	"fmt"
	"strings"

	"modguard/internal/universe"
)

// ModuleLookup resolves the module a type belongs to. Implemented by the
// module collection; passed in explicitly so this package never holds a
// reference back to it.
type ModuleLookup interface {
	// ModuleOf returns the owning module's name, with ok reporting whether
	// the type belongs to any module of the collection
	ModuleOf(qualifiedName string) (string, bool)
}

// primitives are value types that never form dependencies
var primitives = map[string]bool{
	"void": true, "boolean": true, "byte": true, "char": true, "short": true,
	"int": true, "long": true, "float": true, "double": true,
	"bool": true, "string": true,
}

// Extractor walks a module's types and emits the deduplicated set of
// outgoing cross-module dependencies
type Extractor struct {
	universe    *universe.Universe
	markers     universe.Markers
	lookup      ModuleLookup
	stdPrefixes []string
}

// NewExtractor creates an Extractor. stdPrefixes are standard-runtime package
// prefixes whose types never count as dependencies.
func NewExtractor(u *universe.Universe, markers universe.Markers, lookup ModuleLookup, stdPrefixes []string) *Extractor {
	return &Extractor{
		universe:    u,
		markers:     markers,
		lookup:      lookup,
		stdPrefixes: stdPrefixes,
	}
}

// ExtractModule extracts every outgoing dependency of the named module.
// Same-module targets and targets outside the collection's modules are
// filtered out; dependencies are deduplicated by (source, target, kind),
// keeping the first-seen description.
func (e *Extractor) ExtractModule(moduleName string, types []*universe.Type) Extraction {
	var out Extraction
	seen := make(map[string]bool)

	add := func(source *universe.Type, targetName string, kind Kind, description string) {
		target, ok := e.resolveTarget(source, targetName, moduleName)
		if !ok {
			return
		}
		targetModule, _ := e.lookup.ModuleOf(target.QualifiedName)
		dep := Dependency{
			Source:       source,
			Target:       target,
			SourceModule: moduleName,
			TargetModule: targetModule,
			Kind:         kind,
			Description:  description,
		}
		if seen[dep.Key()] {
			return
		}
		seen[dep.Key()] = true
		out.Dependencies = append(out.Dependencies, dep)
	}

	for _, t := range types {
		e.extractInjectionPoints(t, moduleName, add, &out)
		e.extractMethodSignatures(t, add)
		e.extractTypeReferences(t, add)
	}
	return out
}

// resolveTarget filters a referenced type name down to an in-collection,
// cross-module target
func (e *Extractor) resolveTarget(source *universe.Type, targetName, sourceModule string) (*universe.Type, bool) {
	if targetName == "" || primitives[targetName] || !strings.Contains(targetName, ".") {
		return nil, false
	}
	for _, prefix := range e.stdPrefixes {
		if strings.HasPrefix(targetName, prefix) {
			return nil, false
		}
	}
	target, ok := e.universe.Type(targetName)
	if !ok {
		// out of universe (third party)
		return nil, false
	}
	if target.QualifiedName == source.QualifiedName {
		return nil, false
	}
	targetModule, ok := e.lookup.ModuleOf(target.QualifiedName)
	if !ok || targetModule == sourceModule {
		return nil, false
	}
	return target, true
}

// extractInjectionPoints emits UsesComponent dependencies for constructor,
// field and method injection. Injection classification wins over any
// target-based classification.
func (e *Extractor) extractInjectionPoints(t *universe.Type, moduleName string, add func(*universe.Type, string, Kind, string), out *Extraction) {
	for _, ctor := range e.injectionConstructors(t) {
		for _, p := range ctor.Parameters {
			add(t, p.Type, KindUsesComponent,
				fmt.Sprintf("%s declares constructor parameter of type %s", t.SimpleName(), simpleName(p.Type)))
		}
	}

	configuration := t.HasAnnotation(e.markers.Configuration)
	for _, f := range t.Fields {
		if !hasAnnotation(f.Annotations, e.markers.Inject) {
			continue
		}
		out.FieldInjections = append(out.FieldInjections, FieldInjection{
			Type:          t,
			Module:        moduleName,
			Field:         f.Name,
			TargetType:    f.Type,
			Configuration: configuration,
		})
		add(t, f.Type, KindUsesComponent,
			fmt.Sprintf("%s injects field %s of type %s", t.SimpleName(), f.Name, simpleName(f.Type)))
	}

	for _, m := range t.Methods {
		if !hasAnnotation(m.Annotations, e.markers.Inject) {
			continue
		}
		for _, p := range m.Parameters {
			add(t, p.Type, KindUsesComponent,
				fmt.Sprintf("%s.%s declares injection parameter of type %s", t.SimpleName(), m.Name, simpleName(p.Type)))
		}
	}
}

// injectionConstructors returns the constructors whose parameters count as
// injection points: the sole constructor, or those explicitly annotated when
// several exist
func (e *Extractor) injectionConstructors(t *universe.Type) []universe.Constructor {
	if len(t.Constructors) == 1 {
		return t.Constructors
	}
	var out []universe.Constructor
	for _, c := range t.Constructors {
		if hasAnnotation(c.Annotations, e.markers.Inject) {
			out = append(out, c)
		}
	}
	return out
}

// extractMethodSignatures emits dependencies for parameter and return types
// of all non-injection methods, applying the classification tie-break per
// individual site
func (e *Extractor) extractMethodSignatures(t *universe.Type, add func(*universe.Type, string, Kind, string)) {
	for _, m := range t.Methods {
		if hasAnnotation(m.Annotations, e.markers.Inject) {
			// already covered as injection points
			continue
		}
		listener := hasAnnotation(m.Annotations, e.markers.EventListener)
		for _, p := range m.Parameters {
			add(t, p.Type, e.classify(listener, p.Type),
				fmt.Sprintf("%s.%s declares parameter of type %s", t.SimpleName(), m.Name, simpleName(p.Type)))
		}
		for _, r := range m.Returns {
			add(t, r, e.classify(listener, r),
				fmt.Sprintf("%s.%s returns %s", t.SimpleName(), m.Name, simpleName(r)))
		}
		for _, thrown := range m.Throws {
			add(t, thrown, KindDefault,
				fmt.Sprintf("%s.%s throws %s", t.SimpleName(), m.Name, simpleName(thrown)))
		}
	}
}

// extractTypeReferences emits dependencies for non-injected fields,
// supertypes and generic bounds
func (e *Extractor) extractTypeReferences(t *universe.Type, add func(*universe.Type, string, Kind, string)) {
	for _, f := range t.Fields {
		if hasAnnotation(f.Annotations, e.markers.Inject) {
			continue
		}
		add(t, f.Type, e.classify(false, f.Type),
			fmt.Sprintf("%s declares field %s of type %s", t.SimpleName(), f.Name, simpleName(f.Type)))
	}
	for _, super := range t.Supertypes {
		add(t, super, KindDefault,
			fmt.Sprintf("%s has supertype %s", t.SimpleName(), simpleName(super)))
	}
	for _, bound := range t.TypeBounds {
		add(t, bound, KindDefault,
			fmt.Sprintf("%s declares generic bound %s", t.SimpleName(), simpleName(bound)))
	}
}

// classify applies the site-level tie-break: event-listener member wins, then
// entity target, then default
func (e *Extractor) classify(listenerMember bool, targetName string) Kind {
	if listenerMember {
		return KindEventListener
	}
	if target, ok := e.universe.Type(targetName); ok && target.HasAnnotation(e.markers.Entity) {
		return KindEntity
	}
	return KindDefault
}

func hasAnnotation(annotations []universe.Annotation, name string) bool {
	for _, a := range annotations {
		if a.Name == name {
			return true
		}
	}
	return false
}

func simpleName(qualifiedName string) string {
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		return qualifiedName[idx+1:]
	}
	return qualifiedName
}
