package universe

import (
	"fmt"
	"os"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
)

// scipSymbol is a parsed SCIP symbol identifier.
// SCIP format: <scheme> <manager> <package> [<version>] <descriptor>
// Example: scip-java maven com.acme acme 1.0 com/acme/app/order/OrderService#
type scipSymbol struct {
	scheme     string
	pkg        string
	descriptor string
}

func parseSCIPSymbol(id string) (*scipSymbol, error) {
	if id == "" || strings.HasPrefix(id, "local ") {
		return nil, fmt.Errorf("not a global SCIP symbol: %q", id)
	}
	parts := strings.SplitN(id, " ", 5)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid SCIP symbol format: %s", id)
	}
	sym := &scipSymbol{scheme: parts[0], pkg: parts[2]}
	if len(parts) == 4 {
		sym.descriptor = parts[3]
	} else {
		sym.descriptor = parts[4]
	}
	return sym, nil
}

// isType reports whether the descriptor names a type (trailing '#')
func (s *scipSymbol) isType() bool {
	return strings.HasSuffix(s.descriptor, "#")
}

// isMethod reports whether the descriptor names a method (trailing '().')
func (s *scipSymbol) isMethod() bool {
	return strings.HasSuffix(s.descriptor, ").")
}

// isField reports whether the descriptor names a term member of a type
func (s *scipSymbol) isField() bool {
	return strings.HasSuffix(s.descriptor, ".") && !s.isMethod() && strings.Contains(s.descriptor, "#")
}

// qualifiedName converts the descriptor into a dot-separated qualified name.
// Path separators and member markers are normalized away so that
// "com/acme/app/order/OrderService#" becomes "com.acme.app.order.OrderService".
func (s *scipSymbol) qualifiedName() string {
	d := s.descriptor
	d = strings.ReplaceAll(d, "`", "")
	d = strings.TrimSuffix(d, "#")
	d = strings.TrimSuffix(d, ".")
	d = strings.TrimSuffix(d, "()")
	d = strings.ReplaceAll(d, "#", ".")
	d = strings.ReplaceAll(d, "/", ".")
	return d
}

// enclosingType returns the qualified name of the type owning a member
// descriptor, or "" for top-level symbols
func (s *scipSymbol) enclosingType() string {
	idx := strings.LastIndex(s.descriptor, "#")
	if idx < 0 {
		return ""
	}
	owner := &scipSymbol{scheme: s.scheme, pkg: s.pkg, descriptor: s.descriptor[:idx+1]}
	return owner.qualifiedName()
}

// memberName returns the simple member name of a method or field descriptor
func (s *scipSymbol) memberName() string {
	d := strings.TrimSuffix(s.descriptor, ".")
	d = strings.TrimSuffix(d, "()")
	if idx := strings.LastIndex(d, "#"); idx >= 0 {
		d = d[idx+1:]
	}
	return d
}

// LoadSCIP reads a SCIP protobuf index and projects it into a Universe.
//
// The projection is best-effort: SCIP descriptors yield packages, types and
// member names, and implementation relationships yield supertypes. Facts SCIP
// does not model (annotations, parameter types) stay empty, so
// annotation-driven declarations have to come from a declaration file when
// this loader is used.
func LoadSCIP(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SCIP index %s: %w", path, err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse SCIP index %s: %w", path, err)
	}

	b := NewBuilder()
	types := make(map[string]*Type)

	ensureType := func(qualifiedName string) *Type {
		if t, ok := types[qualifiedName]; ok {
			return t
		}
		t := &Type{
			QualifiedName: qualifiedName,
			Visibility:    VisibilityPublic,
		}
		types[qualifiedName] = t
		return t
	}

	for _, doc := range index.Documents {
		for _, info := range doc.Symbols {
			sym, err := parseSCIPSymbol(info.Symbol)
			if err != nil {
				continue
			}

			switch {
			case sym.isType():
				t := ensureType(sym.qualifiedName())
				for _, rel := range info.Relationships {
					if !rel.IsImplementation {
						continue
					}
					super, err := parseSCIPSymbol(rel.Symbol)
					if err != nil || !super.isType() {
						continue
					}
					t.Supertypes = append(t.Supertypes, super.qualifiedName())
				}
			case sym.isMethod():
				owner := sym.enclosingType()
				if owner == "" {
					continue
				}
				t := ensureType(owner)
				t.Methods = append(t.Methods, Method{Name: sym.memberName()})
			case sym.isField():
				owner := sym.enclosingType()
				if owner == "" {
					continue
				}
				t := ensureType(owner)
				t.Fields = append(t.Fields, Field{Name: sym.memberName()})
			}
		}
	}

	for _, t := range types {
		b.AddType(t)
	}
	return b.Build(), nil
}
