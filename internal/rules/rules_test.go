package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"modguard/internal/dependency"
	"modguard/internal/errors"
	"modguard/internal/universe"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), RulesFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, `version = 1

[[forbid]]
from = "order"
to = "billing*"
reason = "billing is being extracted"
`)

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if len(rs.Forbid) != 1 || rs.Forbid[0].Reason == "" {
		t.Errorf("Unexpected rule set %+v", rs)
	}
}

func TestLoadRejectsIncompleteRule(t *testing.T) {
	path := writeRules(t, "version = 1\n\n[[forbid]]\nfrom = \"order\"\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for rule without 'to'")
	}
	if errors.CodeOf(err) != errors.DeclarationInvalid {
		t.Errorf("Expected DECLARATION_INVALID, got %s", errors.CodeOf(err))
	}
}

func TestLoadRejectsMalformedPattern(t *testing.T) {
	path := writeRules(t, "version = 1\n\n[[forbid]]\nfrom = \"[order\"\nto = \"billing\"\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for malformed glob pattern")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("Expected error for missing rules file")
	}
}

func testDependency(source, target string) dependency.Dependency {
	return dependency.Dependency{
		Source:       &universe.Type{QualifiedName: "com.acme." + source + ".A"},
		Target:       &universe.Type{QualifiedName: "com.acme." + target + ".B"},
		SourceModule: source,
		TargetModule: target,
		Kind:         dependency.KindDefault,
		Description:  "A declares field b of type B",
	}
}

func TestEvaluate(t *testing.T) {
	rs := &RuleSet{Forbid: []ForbidRule{
		{From: "order", To: "billing", Reason: "billing is being extracted"},
	}}

	violations := rs.Evaluate([]dependency.Dependency{
		testDependency("order", "billing"),
		testDependency("order", "inventory"),
	})

	if violations.Len() != 1 {
		t.Fatalf("Expected 1 violation, got %d", violations.Len())
	}
	msg := violations.Messages()[0]
	if !strings.Contains(msg, "from module 'order' to module 'billing'") {
		t.Errorf("Unexpected message %q", msg)
	}
	if !strings.Contains(msg, "(billing is being extracted)") {
		t.Errorf("Expected the reason appended, got %q", msg)
	}
}

func TestEvaluateGlobPatterns(t *testing.T) {
	rs := &RuleSet{Forbid: []ForbidRule{{From: "*", To: "internal*"}}}

	violations := rs.Evaluate([]dependency.Dependency{
		testDependency("order", "internalops"),
		testDependency("order", "inventory"),
	})

	if violations.Len() != 1 {
		t.Errorf("Expected the glob to match only internalops, got %v", violations.Messages())
	}
}

func TestEvaluateEmptyRuleSet(t *testing.T) {
	rs := &RuleSet{}
	if v := rs.Evaluate([]dependency.Dependency{testDependency("order", "billing")}); v.HasViolations() {
		t.Errorf("Expected no violations from an empty rule set, got %v", v.Messages())
	}
}
