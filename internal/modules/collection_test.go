package modules

import (
	"strings"
	"sync"
	"testing"

	"modguard/internal/dependency"
	"modguard/internal/errors"
	"modguard/internal/universe"
)

// shopUniverse builds the standard fixture: an annotated shop application
// with order, inventory, catalog and shipping modules. orderAllowed is the
// order module's declared allow-list; empty leaves it unrestricted.
func shopUniverse(orderAllowed string) *universe.Universe {
	moduleValues := map[string]string{"displayName": "Order"}
	if orderAllowed != "" {
		moduleValues["allowedDependencies"] = orderAllowed
	}

	b := universe.NewBuilder()
	b.AddPackage(&universe.PackageDescriptor{
		Name:        "com.acme.shop.order",
		Annotations: []universe.Annotation{{Name: "modguard.ApplicationModule", Values: moduleValues}},
	})
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.order.OrderService",
		Visibility:    universe.VisibilityPublic,
		Annotations:   []universe.Annotation{{Name: "modguard.Component"}},
		Constructors: []universe.Constructor{
			{Parameters: []universe.Parameter{{Name: "stock", Type: "com.acme.shop.inventory.StockApi"}}},
		},
	})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.order.OrderApi", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockApi", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.internal.StockLedger", Visibility: universe.VisibilityPackage})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.catalog.Catalog", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.shipping.ShippingService", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.Application", Visibility: universe.VisibilityPublic})
	return b.Build()
}

func shopModules(t *testing.T, u *universe.Universe, opts Options) *ApplicationModules {
	t.Helper()
	if opts.RootPackages == nil {
		opts.RootPackages = []string{"com.acme.shop"}
	}
	am, err := NewApplicationModules(u, opts)
	if err != nil {
		t.Fatalf("Failed to build module collection: %v", err)
	}
	return am
}

func TestPartitionIntoModules(t *testing.T) {
	am := shopModules(t, shopUniverse(""), Options{})

	var names []string
	for _, m := range am.Modules() {
		names = append(names, m.Name())
	}
	want := []string{"catalog", "inventory", "order", "shipping"}
	if len(names) != len(want) {
		t.Fatalf("Expected modules %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected module %s at %d, got %s", want[i], i, names[i])
		}
	}
}

func TestModulesAreDisjoint(t *testing.T) {
	am := shopModules(t, shopUniverse(""), Options{})

	owner := make(map[string]string)
	for _, m := range am.Modules() {
		for _, typ := range m.Types() {
			if prev, ok := owner[typ.QualifiedName]; ok {
				t.Errorf("Type %s assigned to both %s and %s", typ.QualifiedName, prev, m.Name())
			}
			owner[typ.QualifiedName] = m.Name()
		}
	}

	// Sub-package types belong to the direct sub-package's module.
	if owner["com.acme.shop.inventory.internal.StockLedger"] != "inventory" {
		t.Errorf("Expected nested type in inventory, got %s", owner["com.acme.shop.inventory.internal.StockLedger"])
	}
}

func TestRootLevelTypesUnassigned(t *testing.T) {
	am := shopModules(t, shopUniverse(""), Options{})

	if _, ok := am.ModuleOf("com.acme.shop.Application"); ok {
		t.Error("Expected root-level type to belong to no module")
	}
	if _, ok := am.ModuleOf("com.acme.shop.order.OrderService"); !ok {
		t.Error("Expected module type to resolve")
	}
}

func TestVerifyCleanApplication(t *testing.T) {
	am := shopModules(t, shopUniverse("inventory"), Options{})

	if err := am.Verify(); err != nil {
		t.Errorf("Expected clean verification, got %v", err)
	}
}

func TestUnrestrictedModulePasses(t *testing.T) {
	// No allow-list at all means the order module may depend on anything.
	am := shopModules(t, shopUniverse(""), Options{})

	if err := am.Verify(); err != nil {
		t.Errorf("Expected no violations without declarations, got %v", err)
	}
}

func TestAllowListViolation(t *testing.T) {
	// order declares shipping as its only allowed target but actually uses
	// inventory.
	am := shopModules(t, shopUniverse("shipping"), Options{})

	err := am.Verify()
	if err == nil {
		t.Fatal("Expected an allow-list violation")
	}
	if !strings.Contains(err.Error(), "Module 'order' is not allowed to depend on module 'inventory'") {
		t.Errorf("Unexpected violation message: %v", err)
	}
	if !strings.Contains(err.Error(), "Allowed targets: shipping") {
		t.Errorf("Expected the allowed targets to be listed: %v", err)
	}
}

func TestSharedModulesImplicitlyAllowed(t *testing.T) {
	am := shopModules(t, shopUniverse("shipping"), Options{
		SharedModules: []string{"inventory"},
	})

	if err := am.Verify(); err != nil {
		t.Errorf("Expected shared module to be allowed, got %v", err)
	}
	if !am.IsShared("inventory") || am.IsShared("order") {
		t.Error("Unexpected shared-module flags")
	}
}

func TestUnknownSharedModule(t *testing.T) {
	_, err := NewApplicationModules(shopUniverse(""), Options{
		RootPackages:  []string{"com.acme.shop"},
		SharedModules: []string{"payments"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown shared module")
	}
	if errors.CodeOf(err) != errors.ModuleNotFound {
		t.Errorf("Expected MODULE_NOT_FOUND, got %s", errors.CodeOf(err))
	}
}

func TestNonExposedTypeViolation(t *testing.T) {
	// inventory customizes its surface and stops exposing StockApi.
	b := universe.NewBuilder()
	b.AddPackage(&universe.PackageDescriptor{
		Name: "com.acme.shop.inventory",
		Annotations: []universe.Annotation{
			{Name: "modguard.NamedInterface", Values: map[string]string{"name": "spi", "types": "StockEvents"}},
		},
	})
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.order.OrderService",
		Visibility:    universe.VisibilityPublic,
		Constructors: []universe.Constructor{
			{Parameters: []universe.Parameter{{Type: "com.acme.shop.inventory.StockApi"}}},
		},
	})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockApi", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockEvents", Visibility: universe.VisibilityPublic})

	am := shopModules(t, b.Build(), Options{})
	err := am.Verify()
	if err == nil {
		t.Fatal("Expected an exposure violation")
	}
	if !strings.Contains(err.Error(), "depends on non-exposed type com.acme.shop.inventory.StockApi") {
		t.Errorf("Unexpected violation message: %v", err)
	}
}

func TestCycleViolation(t *testing.T) {
	b := universe.NewBuilder()
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.a.A",
		Visibility:    universe.VisibilityPublic,
		Fields:        []universe.Field{{Name: "b", Type: "com.acme.shop.b.B"}},
	})
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.b.B",
		Visibility:    universe.VisibilityPublic,
		Fields:        []universe.Field{{Name: "c", Type: "com.acme.shop.c.C"}},
	})
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.c.C",
		Visibility:    universe.VisibilityPublic,
		Fields:        []universe.Field{{Name: "a", Type: "com.acme.shop.a.A"}},
	})

	am := shopModules(t, b.Build(), Options{})
	err := am.Verify()
	if err == nil {
		t.Fatal("Expected a cycle violation")
	}
	if !strings.Contains(err.Error(), "form a dependency cycle: a -> b -> c") {
		t.Errorf("Unexpected violation message: %v", err)
	}
}

func TestFieldInjectionViolation(t *testing.T) {
	b := universe.NewBuilder()
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.order.OrderService",
		Visibility:    universe.VisibilityPublic,
		Annotations:   []universe.Annotation{{Name: "modguard.Component"}},
		Fields: []universe.Field{
			{
				Name:        "stock",
				Type:        "com.acme.shop.inventory.StockApi",
				Annotations: []universe.Annotation{{Name: "modguard.Inject"}},
			},
		},
	})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockApi", Visibility: universe.VisibilityPublic})

	am := shopModules(t, b.Build(), Options{})
	err := am.Verify()
	if err == nil {
		t.Fatal("Expected a field-injection violation")
	}
	if !strings.Contains(err.Error(), "uses field injection for field 'stock'") {
		t.Errorf("Unexpected violation message: %v", err)
	}
}

func TestFieldInjectionToleratedOnConfigurationTypes(t *testing.T) {
	b := universe.NewBuilder()
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.order.OrderConfig",
		Visibility:    universe.VisibilityPublic,
		Annotations:   []universe.Annotation{{Name: "modguard.Configuration"}},
		Fields: []universe.Field{
			{
				Name:        "stock",
				Type:        "com.acme.shop.inventory.StockApi",
				Annotations: []universe.Annotation{{Name: "modguard.Inject"}},
			},
		},
	})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockApi", Visibility: universe.VisibilityPublic})

	am := shopModules(t, b.Build(), Options{})
	if err := am.Verify(); err != nil {
		t.Errorf("Expected field injection on configuration type to pass, got %v", err)
	}
}

func TestVerifyIsIdempotent(t *testing.T) {
	am := shopModules(t, shopUniverse("shipping"), Options{})

	first := am.Verify()
	second := am.Verify()
	if first == nil || first != second {
		t.Error("Expected Verify to return the recorded outcome on repeat calls")
	}

	// DetectViolations recomputes independently of the recorded outcome.
	if got := am.DetectViolations().Len(); got != 1 {
		t.Errorf("Expected 1 violation from recomputation, got %d", got)
	}
}

func TestDeclaredDependencyOnUnknownModule(t *testing.T) {
	_, err := NewApplicationModules(shopUniverse("payments"), Options{
		RootPackages: []string{"com.acme.shop"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown declared module")
	}
	if errors.CodeOf(err) != errors.ModuleNotFound {
		t.Errorf("Expected MODULE_NOT_FOUND, got %s", errors.CodeOf(err))
	}
}

func TestDeclaredDependencyOnUnknownInterface(t *testing.T) {
	_, err := NewApplicationModules(shopUniverse("inventory::api"), Options{
		RootPackages: []string{"com.acme.shop"},
	})
	if err == nil {
		t.Fatal("Expected error for unknown declared interface")
	}
	if errors.CodeOf(err) != errors.InterfaceNotFound {
		t.Errorf("Expected INTERFACE_NOT_FOUND, got %s", errors.CodeOf(err))
	}
}

func TestMalformedDeclaredDependency(t *testing.T) {
	_, err := NewApplicationModules(shopUniverse("inventory::"), Options{
		RootPackages: []string{"com.acme.shop"},
	})
	if err == nil {
		t.Fatal("Expected error for malformed declared dependency")
	}
	if errors.CodeOf(err) != errors.DeclarationInvalid {
		t.Errorf("Expected DECLARATION_INVALID, got %s", errors.CodeOf(err))
	}
}

func TestInterfaceQualifiedDependency(t *testing.T) {
	b := universe.NewBuilder()
	b.AddPackage(&universe.PackageDescriptor{
		Name: "com.acme.shop.order",
		Annotations: []universe.Annotation{
			{Name: "modguard.ApplicationModule", Values: map[string]string{"allowedDependencies": "inventory::api"}},
		},
	})
	b.AddPackage(&universe.PackageDescriptor{
		Name: "com.acme.shop.inventory",
		Annotations: []universe.Annotation{
			{Name: "modguard.NamedInterface", Values: map[string]string{"name": "api", "types": "StockApi"}},
		},
	})
	b.AddType(&universe.Type{
		QualifiedName: "com.acme.shop.order.OrderService",
		Visibility:    universe.VisibilityPublic,
		Constructors: []universe.Constructor{
			{Parameters: []universe.Parameter{{Type: "com.acme.shop.inventory.StockApi"}}},
		},
		Methods: []universe.Method{
			{Name: "report", Returns: []string{"com.acme.shop.inventory.StockReport"}},
		},
	})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockApi", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.shop.inventory.StockReport", Visibility: universe.VisibilityPublic})

	am := shopModules(t, b.Build(), Options{})
	err := am.Verify()
	if err == nil {
		t.Fatal("Expected a violation for the reference outside the declared interface")
	}
	// StockApi is within inventory::api and passes the allow check; the
	// StockReport reference falls outside it.
	if strings.Contains(err.Error(), "StockApi. Allowed targets") {
		t.Errorf("Did not expect an allow violation for StockApi: %v", err)
	}
	if !strings.Contains(err.Error(), "returns StockReport") {
		t.Errorf("Expected StockReport to violate the declared interface: %v", err)
	}
}

func TestExclusionRemovesModule(t *testing.T) {
	am := shopModules(t, shopUniverse(""), Options{
		Exclusion:    ExcludeModule("com.acme.shop.shipping"),
		ExclusionKey: "exclude=shipping",
	})

	if _, ok := am.Module("shipping"); ok {
		t.Error("Expected shipping module to be excluded")
	}
	if _, ok := am.Module("order"); !ok {
		t.Error("Expected order module to survive")
	}
}

func TestNoRootPackages(t *testing.T) {
	_, err := NewApplicationModules(shopUniverse(""), Options{})
	if err == nil {
		t.Fatal("Expected error without root packages")
	}
}

func TestAmbiguousModuleNameAcrossRoots(t *testing.T) {
	b := universe.NewBuilder()
	b.AddType(&universe.Type{QualifiedName: "com.acme.first.common.A", Visibility: universe.VisibilityPublic})
	b.AddType(&universe.Type{QualifiedName: "com.acme.second.common.B", Visibility: universe.VisibilityPublic})

	_, err := NewApplicationModules(b.Build(), Options{
		RootPackages: []string{"com.acme.first", "com.acme.second"},
	})
	if err == nil {
		t.Fatal("Expected error for duplicate module name across roots")
	}
	if !strings.Contains(err.Error(), "'common' is ambiguous") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestCacheReturnsSameCollection(t *testing.T) {
	cache := NewCache()
	u := shopUniverse("")
	opts := Options{RootPackages: []string{"com.acme.shop"}}

	first, err := cache.Of(u, opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, _ := cache.Of(u, opts)
	if first != second {
		t.Error("Expected the cached collection on repeat access")
	}
	if cache.Size() != 1 {
		t.Errorf("Expected 1 cache entry, got %d", cache.Size())
	}
}

func TestCacheKeyIncludesExclusion(t *testing.T) {
	cache := NewCache()
	u := shopUniverse("")

	full, _ := cache.Of(u, Options{RootPackages: []string{"com.acme.shop"}})
	trimmed, _ := cache.Of(u, Options{
		RootPackages: []string{"com.acme.shop"},
		Exclusion:    ExcludeModule("com.acme.shop.shipping"),
		ExclusionKey: "exclude=shipping",
	})

	if full == trimmed {
		t.Error("Expected distinct collections for distinct exclusion keys")
	}
	if cache.Size() != 2 {
		t.Errorf("Expected 2 cache entries, got %d", cache.Size())
	}
}

func TestCacheConcurrentFirstAccess(t *testing.T) {
	cache := NewCache()
	u := shopUniverse("")
	opts := Options{RootPackages: []string{"com.acme.shop"}}

	const workers = 16
	results := make([]*ApplicationModules, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			am, err := cache.Of(u, opts)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			results[i] = am
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("Expected every concurrent caller to observe the same collection")
		}
	}
	if cache.Size() != 1 {
		t.Errorf("Expected a single entry after concurrent access, got %d", cache.Size())
	}
}

func TestDependenciesKindFilter(t *testing.T) {
	am := shopModules(t, shopUniverse(""), Options{})
	order, _ := am.Module("order")

	all := order.Dependencies(am)
	if len(all) != 1 {
		t.Fatalf("Expected 1 dependency, got %d", len(all))
	}
	if deps := order.Dependencies(am, dependency.KindUsesComponent); len(deps) != 1 {
		t.Errorf("Expected the constructor dependency under uses-component, got %d", len(deps))
	}
	if deps := order.Dependencies(am, dependency.KindEntity); len(deps) != 0 {
		t.Errorf("Expected no entity dependencies, got %d", len(deps))
	}
}

func TestDisplayName(t *testing.T) {
	am := shopModules(t, shopUniverse(""), Options{})

	order, _ := am.Module("order")
	if order.DisplayName() != "Order" {
		t.Errorf("Expected declared display name, got %s", order.DisplayName())
	}
	inventory, _ := am.Module("inventory")
	if inventory.DisplayName() != "inventory" {
		t.Errorf("Expected fallback display name, got %s", inventory.DisplayName())
	}
}
