package modules

import (
	"fmt"
	"strings"

	"modguard/internal/dependency"
	"modguard/internal/universe"
	"modguard/internal/verify"
)

// verifyModule runs the allow-list and exposure checks over one module's
// extracted dependencies and applies the field-injection policy
func (am *ApplicationModules) verifyModule(m *Module) verify.Violations {
	violations := verify.None()
	ext := m.extract(am)

	for _, dep := range ext.Dependencies {
		if v, ok := am.checkAllowed(m, dep); !ok {
			violations = violations.And(v)
		}
		if v, ok := am.checkExposure(dep); !ok {
			violations = violations.And(v)
		}
	}

	for _, fi := range ext.FieldInjections {
		if fi.Configuration {
			continue
		}
		violations = violations.And(verify.NewViolationf(
			"Module '%s': %s uses field injection for field '%s' of type %s; use constructor injection instead",
			fi.Module, fi.Type.SimpleName(), fi.Field, fi.TargetType))
	}

	return violations
}

// checkAllowed verifies one dependency against the source module's declared
// allow-list. Modules with an empty list are unrestricted; shared modules are
// implicitly allowed as a dependency on their unnamed interface.
func (am *ApplicationModules) checkAllowed(source *Module, dep dependency.Dependency) (verify.Violation, bool) {
	if len(source.allowed) == 0 {
		return verify.Violation{}, true
	}
	if am.shared[dep.TargetModule] {
		return verify.Violation{}, true
	}

	for _, dd := range source.allowed {
		if dd.Target.Name() != dep.TargetModule {
			continue
		}
		if dd.TargetInterface == nil || dd.TargetInterface.Contains(dep.Target.QualifiedName) {
			return verify.Violation{}, true
		}
	}

	allowed := make([]string, len(source.allowed))
	for i, dd := range source.allowed {
		allowed[i] = dd.String()
	}
	return verify.NewViolationf(
		"Module '%s' is not allowed to depend on module '%s': %s. Allowed targets: %s",
		dep.SourceModule, dep.TargetModule, dep.Description, strings.Join(allowed, ", ")), false
}

// checkExposure verifies that the dependency's target type is part of the
// target module's exposed surface
func (am *ApplicationModules) checkExposure(dep dependency.Dependency) (verify.Violation, bool) {
	target, ok := am.modules[dep.TargetModule]
	if !ok {
		return verify.Violation{}, true
	}
	if target.IsExposed(dep.Target) {
		return verify.Violation{}, true
	}
	return verify.NewViolationf(
		"Module '%s' depends on non-exposed type %s of module '%s': %s",
		dep.SourceModule, dep.Target.QualifiedName, dep.TargetModule, dep.Description), false
}

// detectCycles checks that the modules of each root package form an acyclic
// dependency graph, reporting one violation per detected cycle
func (am *ApplicationModules) detectCycles() verify.Violations {
	violations := verify.None()

	for _, root := range am.rootPackages {
		adjacency := make(map[string][]string)
		for _, m := range am.Modules() {
			if !universe.ResidesIn(m.BasePackage(), root) {
				continue
			}
			adjacency[m.Name()] = nil
			for _, dep := range m.Dependencies(am) {
				target, ok := am.modules[dep.TargetModule]
				if !ok || !universe.ResidesIn(target.BasePackage(), root) {
					continue
				}
				adjacency[m.Name()] = append(adjacency[m.Name()], dep.TargetModule)
			}
		}

		for _, cycle := range verify.DetectCycles(adjacency) {
			violations = violations.And(verify.NewViolationf(
				"Modules of root '%s' form a dependency cycle: %s",
				root, strings.Join(cycle, " -> ")))
		}
	}
	return violations
}

// allDependencies returns every module's dependencies, used by the external
// rule-set evaluation
func (am *ApplicationModules) allDependencies() []dependency.Dependency {
	var out []dependency.Dependency
	for _, m := range am.Modules() {
		out = append(out, m.Dependencies(am)...)
	}
	return out
}

// Describe renders a one-line summary of the collection for logs
func (am *ApplicationModules) Describe() string {
	return fmt.Sprintf("%d module(s) across root(s) %s",
		len(am.modules), strings.Join(am.rootPackages, ", "))
}
