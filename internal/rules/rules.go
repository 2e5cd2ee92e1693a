// Package rules evaluates an optional, externally declared rule set on top of
// the built-in allow-list and exposure checks.
package rules

import (
	"fmt"
	"os"
	"path"

	"github.com/BurntSushi/toml"

	"modguard/internal/dependency"
	"modguard/internal/errors"
	"modguard/internal/verify"
)

// RulesFile is the default filename for the external rule set
const RulesFile = "rules.toml"

// ForbidRule forbids dependencies from one module to another. Module fields
// accept path.Match-style globs.
type ForbidRule struct {
	From   string `toml:"from"`
	To     string `toml:"to"`
	Reason string `toml:"reason,omitempty"`
}

// RuleSet is the parsed external rule set
type RuleSet struct {
	Version int          `toml:"version"`
	Forbid  []ForbidRule `toml:"forbid"`
}

// Load reads a rule set from a TOML file
func Load(filePath string) (*RuleSet, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.New(errors.DeclarationInvalid,
			fmt.Sprintf("failed to read rules file %s", filePath), err)
	}

	var rs RuleSet
	if err := toml.Unmarshal(data, &rs); err != nil {
		return nil, errors.New(errors.DeclarationInvalid,
			fmt.Sprintf("failed to parse rules file %s", filePath), err)
	}

	for _, rule := range rs.Forbid {
		if rule.From == "" || rule.To == "" {
			return nil, errors.Newf(errors.DeclarationInvalid,
				"forbid rule in %s requires both 'from' and 'to'", filePath)
		}
		if _, err := path.Match(rule.From, ""); err != nil {
			return nil, errors.Newf(errors.DeclarationInvalid,
				"forbid rule in %s has malformed 'from' pattern %q", filePath, rule.From)
		}
		if _, err := path.Match(rule.To, ""); err != nil {
			return nil, errors.Newf(errors.DeclarationInvalid,
				"forbid rule in %s has malformed 'to' pattern %q", filePath, rule.To)
		}
	}
	return &rs, nil
}

// Evaluate matches every dependency against the forbid rules and converts
// matches into violations
func (rs *RuleSet) Evaluate(deps []dependency.Dependency) verify.Violations {
	violations := verify.None()
	for _, dep := range deps {
		for _, rule := range rs.Forbid {
			if !matches(rule.From, dep.SourceModule) || !matches(rule.To, dep.TargetModule) {
				continue
			}
			msg := fmt.Sprintf("Rule forbids dependency from module '%s' to module '%s': %s",
				dep.SourceModule, dep.TargetModule, dep.Description)
			if rule.Reason != "" {
				msg += " (" + rule.Reason + ")"
			}
			violations = violations.And(verify.NewViolation(msg))
		}
	}
	return violations
}

func matches(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
