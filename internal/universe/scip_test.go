package universe

import (
	"testing"
)

func TestParseSCIPSymbol(t *testing.T) {
	sym, err := parseSCIPSymbol("scip-java maven com.acme 1.0 com/acme/app/order/OrderService#")
	if err != nil {
		t.Fatalf("Failed to parse symbol: %v", err)
	}
	if !sym.isType() {
		t.Error("Expected a type descriptor")
	}
	if got := sym.qualifiedName(); got != "com.acme.app.order.OrderService" {
		t.Errorf("Expected qualified name, got %q", got)
	}
}

func TestParseSCIPSymbolRejectsLocals(t *testing.T) {
	if _, err := parseSCIPSymbol("local 42"); err == nil {
		t.Fatal("Expected local symbols to be rejected")
	}
	if _, err := parseSCIPSymbol("too short"); err == nil {
		t.Fatal("Expected malformed symbols to be rejected")
	}
}

func TestSCIPMethodDescriptor(t *testing.T) {
	sym, err := parseSCIPSymbol("scip-java maven com.acme 1.0 com/acme/app/order/OrderService#place().")
	if err != nil {
		t.Fatalf("Failed to parse symbol: %v", err)
	}
	if !sym.isMethod() || sym.isType() || sym.isField() {
		t.Error("Expected a method descriptor")
	}
	if got := sym.enclosingType(); got != "com.acme.app.order.OrderService" {
		t.Errorf("Expected enclosing type, got %q", got)
	}
	if got := sym.memberName(); got != "place" {
		t.Errorf("Expected member name 'place', got %q", got)
	}
}

func TestSCIPFieldDescriptor(t *testing.T) {
	sym, err := parseSCIPSymbol("scip-java maven com.acme 1.0 com/acme/app/order/OrderService#stock.")
	if err != nil {
		t.Fatalf("Failed to parse symbol: %v", err)
	}
	if !sym.isField() || sym.isMethod() {
		t.Error("Expected a field descriptor")
	}
	if got := sym.memberName(); got != "stock" {
		t.Errorf("Expected member name 'stock', got %q", got)
	}
}
