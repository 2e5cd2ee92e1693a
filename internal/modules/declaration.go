package modules

import (
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"modguard/internal/errors"
	"modguard/internal/universe"
)

// DeclarationFile is the default filename for file-based module declarations
const DeclarationFile = "modguard.toml"

// RawInterface is one named-interface declaration before resolution.
// An empty name declares explicit members of the unnamed interface.
type RawInterface struct {
	Name                string
	Types               []string
	IncludeRelatedTypes bool
}

// RawDeclaration is one module's metadata before resolution
type RawDeclaration struct {
	DisplayName string

	// AllowedDependencies are textual identifiers of shape
	// "module" or "module::interface"
	AllowedDependencies []string

	Interfaces []RawInterface
}

// DeclarationSource supplies module metadata for a base package. The two
// variants (annotation markers, declaration file) are selected once per
// universe by ResolveDeclarationSource.
type DeclarationSource interface {
	// Declarations returns the metadata declared for the module rooted at
	// basePackage, with ok reporting whether anything was declared
	Declarations(basePackage string) (RawDeclaration, bool)
}

// ResolveDeclarationSource probes the universe for a known annotation
// convention and falls back to the declaration file when no convention is
// found. A missing file yields an empty source.
func ResolveDeclarationSource(u *universe.Universe, declarationFile string) (DeclarationSource, universe.Markers, error) {
	if markers, ok := universe.ProbeMarkers(u); ok {
		return &annotationDeclarations{universe: u, markers: markers}, markers, nil
	}

	if declarationFile != "" {
		if _, err := os.Stat(declarationFile); err == nil {
			src, err := loadFileDeclarations(declarationFile)
			if err != nil {
				return nil, universe.DefaultMarkers, err
			}
			return src, universe.DefaultMarkers, nil
		}
	}

	return emptyDeclarations{}, universe.DefaultMarkers, nil
}

// annotationDeclarations reads module metadata from annotation markers on
// package descriptors and types
type annotationDeclarations struct {
	universe *universe.Universe
	markers  universe.Markers
}

func (s *annotationDeclarations) Declarations(basePackage string) (RawDeclaration, bool) {
	var raw RawDeclaration
	found := false

	if pkg, ok := s.universe.Package(basePackage); ok {
		if module, ok := pkg.Annotation(s.markers.Module); ok {
			found = true
			if v, ok := module.Value("displayName"); ok {
				raw.DisplayName = v
			}
			if v, ok := module.Value("allowedDependencies"); ok {
				raw.AllowedDependencies = splitList(v)
			}
		}
		for _, decl := range pkg.AnnotationsNamed(s.markers.NamedInterface) {
			found = true
			name, _ := decl.Value("name")
			types, _ := decl.Value("types")
			related, _ := decl.Value("includeRelatedTypes")
			raw.Interfaces = append(raw.Interfaces, RawInterface{
				Name:                name,
				Types:               splitList(types),
				IncludeRelatedTypes: related == "true",
			})
		}
	}

	// Type-level markers scope individual types into an interface
	for _, t := range s.universe.TypesIn(basePackage) {
		for _, decl := range t.AnnotationsNamed(s.markers.NamedInterface) {
			found = true
			name, _ := decl.Value("name")
			raw.Interfaces = append(raw.Interfaces, RawInterface{
				Name:  name,
				Types: []string{t.QualifiedName},
			})
		}
	}

	return raw, found
}

// fileDeclarations reads module metadata from a modguard.toml file
type fileDeclarations struct {
	byPackage map[string]RawDeclaration
}

// DeclarationTOML is the root structure of modguard.toml
type DeclarationTOML struct {
	Version int          `toml:"version"`
	Modules []ModuleTOML `toml:"module"`
}

// ModuleTOML is one declared module in modguard.toml
type ModuleTOML struct {
	Package             string          `toml:"package"`
	DisplayName         string          `toml:"displayName,omitempty"`
	AllowedDependencies []string        `toml:"allowedDependencies,omitempty"`
	Interfaces          []InterfaceTOML `toml:"interface,omitempty"`
}

// InterfaceTOML is one named-interface declaration in modguard.toml
type InterfaceTOML struct {
	Name                string   `toml:"name,omitempty"`
	Types               []string `toml:"types"`
	IncludeRelatedTypes bool     `toml:"includeRelatedTypes,omitempty"`
}

func loadFileDeclarations(path string) (*fileDeclarations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.DeclarationInvalid,
			fmt.Sprintf("failed to read declaration file %s", path), err)
	}

	var file DeclarationTOML
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, errors.New(errors.DeclarationInvalid,
			fmt.Sprintf("failed to parse declaration file %s", path), err)
	}

	src := &fileDeclarations{byPackage: make(map[string]RawDeclaration)}
	for _, m := range file.Modules {
		if m.Package == "" {
			return nil, errors.Newf(errors.DeclarationInvalid,
				"module declaration in %s missing required 'package' field", path)
		}
		raw := RawDeclaration{
			DisplayName:         m.DisplayName,
			AllowedDependencies: m.AllowedDependencies,
		}
		for _, iface := range m.Interfaces {
			raw.Interfaces = append(raw.Interfaces, RawInterface{
				Name:                iface.Name,
				Types:               iface.Types,
				IncludeRelatedTypes: iface.IncludeRelatedTypes,
			})
		}
		src.byPackage[m.Package] = raw
	}
	return src, nil
}

func (s *fileDeclarations) Declarations(basePackage string) (RawDeclaration, bool) {
	raw, ok := s.byPackage[basePackage]
	return raw, ok
}

// WriteDeclarationFile writes a declaration file to the given path
func WriteDeclarationFile(path string, file *DeclarationTOML) error {
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal declaration file: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ExampleDeclarationFile returns a template declaration file for 'modguard init'
func ExampleDeclarationFile(rootPackage string) *DeclarationTOML {
	return &DeclarationTOML{
		Version: 1,
		Modules: []ModuleTOML{
			{
				Package:             rootPackage + ".order",
				DisplayName:         "Order",
				AllowedDependencies: []string{"inventory", "catalog::api"},
				Interfaces: []InterfaceTOML{
					{Name: "api", Types: []string{"OrderApi"}, IncludeRelatedTypes: true},
				},
			},
		},
	}
}

// emptyDeclarations is the source used when nothing is declared anywhere
type emptyDeclarations struct{}

func (emptyDeclarations) Declarations(string) (RawDeclaration, bool) {
	return RawDeclaration{}, false
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// DeclaredDependency is one resolved allowed-dependency declaration
type DeclaredDependency struct {
	// Target is the module the declaration points at
	Target *Module

	// TargetInterface is the named interface the declaration is qualified
	// with; nil means the unnamed (default) interface
	TargetInterface *NamedInterface

	raw string
}

// String returns the textual identifier of the declaration
func (d DeclaredDependency) String() string {
	return d.raw
}

// parseDeclaredDependency resolves a textual identifier of shape
// "module" or "module::interface" against the full collection. Unresolvable
// identifiers are construction-time errors naming the declaring module.
func parseDeclaredDependency(raw, declaringModule string, am *ApplicationModules) (DeclaredDependency, error) {
	identifier := strings.TrimSpace(raw)
	if identifier == "" {
		return DeclaredDependency{}, errors.Newf(errors.DeclarationInvalid,
			"module '%s' declares an empty dependency identifier", declaringModule)
	}

	moduleName := identifier
	interfaceName := ""
	hasInterface := false
	if idx := strings.Index(identifier, "::"); idx >= 0 {
		moduleName = identifier[:idx]
		interfaceName = identifier[idx+2:]
		hasInterface = true
		if moduleName == "" || interfaceName == "" {
			return DeclaredDependency{}, errors.Newf(errors.DeclarationInvalid,
				"module '%s' declares malformed dependency identifier '%s'", declaringModule, identifier)
		}
	}

	target, ok := am.Module(moduleName)
	if !ok {
		return DeclaredDependency{}, errors.Newf(errors.ModuleNotFound,
			"module '%s' declares dependency '%s' on unknown module '%s'",
			declaringModule, identifier, moduleName)
	}

	dd := DeclaredDependency{Target: target, raw: identifier}
	if hasInterface {
		iface, ok := target.Interfaces().Named(interfaceName)
		if !ok {
			return DeclaredDependency{}, errors.Newf(errors.InterfaceNotFound,
				"module '%s' declares dependency '%s' on unknown interface '%s' of module '%s'",
				declaringModule, identifier, interfaceName, moduleName)
		}
		dd.TargetInterface = iface
	}
	return dd, nil
}
