package universe

import (
	"testing"
)

func buildTestUniverse() *Universe {
	b := NewBuilder()
	b.AddType(&Type{QualifiedName: "com.acme.app.order.OrderService", Visibility: VisibilityPublic})
	b.AddType(&Type{QualifiedName: "com.acme.app.order.internal.Ledger", Visibility: VisibilityPackage})
	b.AddType(&Type{QualifiedName: "com.acme.app.inventory.StockChecker", Visibility: VisibilityPublic})
	b.AddType(&Type{QualifiedName: "com.acme.app.SharedUtil", Visibility: VisibilityPublic})
	return b.Build()
}

func TestTypeNames(t *testing.T) {
	typ := &Type{QualifiedName: "com.acme.app.order.OrderService"}

	if got := typ.SimpleName(); got != "OrderService" {
		t.Errorf("Expected simple name 'OrderService', got '%s'", got)
	}
	if got := typ.Package(); got != "com.acme.app.order" {
		t.Errorf("Expected package 'com.acme.app.order', got '%s'", got)
	}
}

func TestTypesInIncludesSubpackages(t *testing.T) {
	u := buildTestUniverse()

	types := u.TypesIn("com.acme.app.order")
	if len(types) != 2 {
		t.Fatalf("Expected 2 types in order package, got %d", len(types))
	}
	if types[0].QualifiedName != "com.acme.app.order.OrderService" {
		t.Errorf("Unexpected first type %s", types[0].QualifiedName)
	}
}

func TestDirectSubpackages(t *testing.T) {
	u := buildTestUniverse()

	subs := u.DirectSubpackages("com.acme.app")
	want := []string{"com.acme.app.inventory", "com.acme.app.order"}
	if len(subs) != len(want) {
		t.Fatalf("Expected %d subpackages, got %v", len(want), subs)
	}
	for i, pkg := range want {
		if subs[i] != pkg {
			t.Errorf("Expected subpackage %s at %d, got %s", pkg, i, subs[i])
		}
	}
}

func TestDirectSubpackagesIgnoresRootLevelTypes(t *testing.T) {
	u := buildTestUniverse()

	for _, pkg := range u.DirectSubpackages("com.acme.app") {
		if pkg == "com.acme.app" {
			t.Error("Root package itself must not appear as a subpackage")
		}
	}
}

func TestResidesIn(t *testing.T) {
	tests := []struct {
		pkg  string
		base string
		want bool
	}{
		{"com.acme.app.order", "com.acme.app.order", true},
		{"com.acme.app.order.internal", "com.acme.app.order", true},
		{"com.acme.app.orders", "com.acme.app.order", false},
		{"com.acme.app", "com.acme.app.order", false},
	}

	for _, tt := range tests {
		if got := ResidesIn(tt.pkg, tt.base); got != tt.want {
			t.Errorf("ResidesIn(%q, %q) = %v, want %v", tt.pkg, tt.base, got, tt.want)
		}
	}
}

func TestAnnotationLookup(t *testing.T) {
	typ := &Type{
		QualifiedName: "com.acme.app.order.Order",
		Annotations: []Annotation{
			{Name: "modguard.Entity"},
			{Name: "modguard.NamedInterface", Values: map[string]string{"name": "api"}},
			{Name: "modguard.NamedInterface", Values: map[string]string{"name": "spi"}},
		},
	}

	if !typ.HasAnnotation("modguard.Entity") {
		t.Error("Expected entity annotation")
	}
	if typ.HasAnnotation("modguard.Component") {
		t.Error("Did not expect component annotation")
	}
	if got := len(typ.AnnotationsNamed("modguard.NamedInterface")); got != 2 {
		t.Errorf("Expected 2 named-interface annotations, got %d", got)
	}
}

func TestProbeMarkers(t *testing.T) {
	b := NewBuilder()
	b.AddType(&Type{
		QualifiedName: "com.acme.app.order.Order",
		Annotations:   []Annotation{{Name: "arch.Entity"}},
	})
	u := b.Build()

	markers, ok := ProbeMarkers(u)
	if !ok {
		t.Fatal("Expected a convention to be probed")
	}
	if markers.Namespace != "arch." {
		t.Errorf("Expected arch convention, got %s", markers.Namespace)
	}
}

func TestProbeMarkersPrefersNativeConvention(t *testing.T) {
	b := NewBuilder()
	b.AddType(&Type{
		QualifiedName: "com.acme.app.order.Order",
		Annotations:   []Annotation{{Name: "arch.Entity"}, {Name: "modguard.Entity"}},
	})
	u := b.Build()

	markers, ok := ProbeMarkers(u)
	if !ok || markers.Namespace != "modguard." {
		t.Errorf("Expected native convention to win, got %v %v", markers.Namespace, ok)
	}
}

func TestProbeMarkersWithoutAnnotations(t *testing.T) {
	u := NewBuilder().Build()

	if _, ok := ProbeMarkers(u); ok {
		t.Error("Expected no convention for an unannotated universe")
	}
}

func TestPackageDescriptorLookup(t *testing.T) {
	b := NewBuilder()
	b.AddPackage(&PackageDescriptor{
		Name:        "com.acme.app.order",
		Annotations: []Annotation{{Name: "modguard.ApplicationModule", Values: map[string]string{"displayName": "Order"}}},
	})
	u := b.Build()

	pkg, ok := u.Package("com.acme.app.order")
	if !ok {
		t.Fatal("Expected package descriptor")
	}
	ann, ok := pkg.Annotation("modguard.ApplicationModule")
	if !ok {
		t.Fatal("Expected module annotation")
	}
	if v, _ := ann.Value("displayName"); v != "Order" {
		t.Errorf("Expected displayName 'Order', got '%s'", v)
	}
}
