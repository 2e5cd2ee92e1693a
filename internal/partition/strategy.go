// Package partition splits a set of root packages into module base packages.
package partition

import (
	"modguard/internal/errors"
	"modguard/internal/universe"
)

// Strategy determines which sub-packages of a root become modules
type Strategy interface {
	// Name identifies the strategy in configuration and error messages
	Name() string

	// Identify returns the module base packages below root, sorted.
	// Types residing directly in the root are not assigned to any module.
	Identify(u *universe.Universe, root string) []string
}

// DirectSubPackages is the default strategy: every direct sub-package of a
// root becomes one module's base package
type DirectSubPackages struct{}

// Name implements Strategy
func (DirectSubPackages) Name() string {
	return "direct-subpackages"
}

// Identify implements Strategy
func (DirectSubPackages) Identify(u *universe.Universe, root string) []string {
	return u.DirectSubpackages(root)
}

// Resolve picks the effective strategy from the supplied candidates.
// Supplying more than one is an ambiguous configuration and fails fast;
// supplying none selects DirectSubPackages.
func Resolve(strategies ...Strategy) (Strategy, error) {
	switch len(strategies) {
	case 0:
		return DirectSubPackages{}, nil
	case 1:
		return strategies[0], nil
	default:
		names := make([]string, len(strategies))
		for i, s := range strategies {
			names[i] = s.Name()
		}
		return nil, errors.Newf(errors.StrategyAmbiguous,
			"multiple partitioning strategies supplied: %v", names)
	}
}
