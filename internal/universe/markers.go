package universe

// Markers is one closed set of annotation names the analysis understands.
// Two conventions exist; which one applies to a universe is decided once by
// ProbeMarkers and never re-evaluated.
type Markers struct {
	// Namespace is the shared name prefix of the convention
	Namespace string

	// Module marks a package descriptor as a module declaration.
	// Attributes: displayName, allowedDependencies (comma-separated).
	Module string

	// NamedInterface marks a package descriptor or a type as (part of) a
	// named interface. Attributes: name, types (comma-separated),
	// includeRelatedTypes ("true"/"false").
	NamedInterface string

	// Inject marks constructors, fields and methods as injection points
	Inject string

	// Configuration marks factory/configuration types, for which field
	// injection is tolerated
	Configuration string

	// Component marks Spring-style components
	Component string

	// Entity marks persistence entities
	Entity string

	// DomainEvent marks event types; also recognized as a marker supertype
	DomainEvent string

	// EventListener marks listener callback methods
	EventListener string
}

// DefaultMarkers is the native modguard annotation convention
var DefaultMarkers = Markers{
	Namespace:      "modguard.",
	Module:         "modguard.ApplicationModule",
	NamedInterface: "modguard.NamedInterface",
	Inject:         "modguard.Inject",
	Configuration:  "modguard.Configuration",
	Component:      "modguard.Component",
	Entity:         "modguard.Entity",
	DomainEvent:    "modguard.DomainEvent",
	EventListener:  "modguard.EventListener",
}

// ArchMarkers is the alternative convention used by codebases annotated with
// the generic arch.* markers
var ArchMarkers = Markers{
	Namespace:      "arch.",
	Module:         "arch.Module",
	NamedInterface: "arch.Exposed",
	Inject:         "arch.Wire",
	Configuration:  "arch.Factory",
	Component:      "arch.Component",
	Entity:         "arch.Entity",
	DomainEvent:    "arch.Event",
	EventListener:  "arch.OnEvent",
}

// ProbeMarkers inspects the universe once and selects the annotation
// convention to use. The native convention wins when both namespaces occur;
// ok is false when neither occurs.
func ProbeMarkers(u *Universe) (Markers, bool) {
	if u.ContainsAnnotationNamespace(DefaultMarkers.Namespace) {
		return DefaultMarkers, true
	}
	if u.ContainsAnnotationNamespace(ArchMarkers.Namespace) {
		return ArchMarkers, true
	}
	return Markers{}, false
}
