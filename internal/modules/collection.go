package modules

import (
	"sort"
	"strings"
	"sync"

	"modguard/internal/errors"
	"modguard/internal/logging"
	"modguard/internal/partition"
	"modguard/internal/rules"
	"modguard/internal/universe"
	"modguard/internal/verify"
)

// Options configures the construction of an ApplicationModules collection
type Options struct {
	// RootPackages are the package roots to partition into modules
	RootPackages []string

	// SharedModules are module names every module may depend on implicitly
	SharedModules []string

	// Exclusion carves types out of the analysis; nil excludes nothing
	Exclusion func(*universe.Type) bool

	// ExclusionKey is the stable cache-key component describing Exclusion.
	// Two option sets with equal roots and equal keys hit the same cache
	// entry.
	ExclusionKey string

	// Strategies are the candidate partitioning strategies. Supplying more
	// than one fails fast; none selects the default.
	Strategies []partition.Strategy

	// StdPrefixes are standard-runtime package prefixes excluded from
	// dependency extraction
	StdPrefixes []string

	// DeclarationFile is the path of the file-based declaration fallback
	DeclarationFile string

	// Rules is an optional external rule set evaluated during verification
	Rules *rules.RuleSet

	// Logger defaults to a discarding logger
	Logger *logging.Logger
}

// DefaultStdPrefixes are the runtime packages never treated as dependencies
var DefaultStdPrefixes = []string{"java.", "javax.", "kotlin."}

// ApplicationModules owns the set of all modules of an analyzed application
// and orchestrates partitioning, extraction and verification. The collection
// owns its modules; modules never reference the collection back.
type ApplicationModules struct {
	universe     *universe.Universe
	rootPackages []string
	modules      map[string]*Module
	ordered      []string // module names, sorted
	shared       map[string]bool
	moduleByType map[string]string // type qualified name -> module name
	stdPrefixes  []string
	rules        *rules.RuleSet
	logger       *logging.Logger

	verifyOnce sync.Once
	verifyErr  error
}

// NewApplicationModules builds the module collection for the given universe.
// Modules and their named interfaces are computed eagerly; derived per-module
// facts stay lazy. Configuration problems (ambiguous strategy, unresolvable
// declarations) fail construction.
func NewApplicationModules(u *universe.Universe, opts Options) (*ApplicationModules, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if len(opts.RootPackages) == 0 {
		return nil, errors.Newf(errors.DeclarationInvalid, "no root packages configured")
	}

	strategy, err := partition.Resolve(opts.Strategies...)
	if err != nil {
		return nil, err
	}

	source, markers, err := ResolveDeclarationSource(u, opts.DeclarationFile)
	if err != nil {
		return nil, err
	}

	stdPrefixes := opts.StdPrefixes
	if stdPrefixes == nil {
		stdPrefixes = DefaultStdPrefixes
	}

	am := &ApplicationModules{
		universe:     u,
		rootPackages: append([]string(nil), opts.RootPackages...),
		modules:      make(map[string]*Module),
		shared:       make(map[string]bool),
		moduleByType: make(map[string]string),
		stdPrefixes:  stdPrefixes,
		rules:        opts.Rules,
		logger:       logger,
	}
	sort.Strings(am.rootPackages)

	for _, root := range am.rootPackages {
		for _, basePackage := range strategy.Identify(u, root) {
			name := moduleName(root, basePackage)
			if _, exists := am.modules[name]; exists {
				return nil, errors.Newf(errors.DeclarationInvalid,
					"module name '%s' is ambiguous across roots", name)
			}

			var types []*universe.Type
			for _, t := range u.TypesIn(basePackage) {
				if opts.Exclusion != nil && opts.Exclusion(t) {
					continue
				}
				types = append(types, t)
			}
			if len(types) == 0 {
				continue
			}

			raw, _ := source.Declarations(basePackage)
			module, err := newModule(name, basePackage, types, raw, markers)
			if err != nil {
				return nil, err
			}
			am.modules[name] = module
			for _, t := range types {
				am.moduleByType[t.QualifiedName] = name
			}
		}
	}

	for name := range am.modules {
		am.ordered = append(am.ordered, name)
	}
	sort.Strings(am.ordered)

	// Second phase: declared dependencies resolve against the complete
	// collection, failing fast on unknown modules or interfaces
	for _, name := range am.ordered {
		m := am.modules[name]
		for _, raw := range m.rawAllowed {
			dd, err := parseDeclaredDependency(raw, name, am)
			if err != nil {
				return nil, err
			}
			m.allowed = append(m.allowed, dd)
		}
	}

	for _, shared := range opts.SharedModules {
		if _, ok := am.modules[shared]; !ok {
			return nil, errors.Newf(errors.ModuleNotFound,
				"shared module '%s' not found in collection", shared)
		}
		am.shared[shared] = true
	}

	logger.Debug("Built module collection", map[string]interface{}{
		"roots":   strings.Join(am.rootPackages, ","),
		"modules": len(am.modules),
	})
	return am, nil
}

// moduleName derives the module name from its base package relative to the
// analyzed root
func moduleName(root, basePackage string) string {
	if strings.HasPrefix(basePackage, root+".") {
		return basePackage[len(root)+1:]
	}
	return basePackage
}

// Modules returns all modules sorted by name
func (am *ApplicationModules) Modules() []*Module {
	out := make([]*Module, 0, len(am.ordered))
	for _, name := range am.ordered {
		out = append(out, am.modules[name])
	}
	return out
}

// Module looks a module up by name
func (am *ApplicationModules) Module(name string) (*Module, bool) {
	m, ok := am.modules[name]
	return m, ok
}

// RootPackages returns the analyzed root packages
func (am *ApplicationModules) RootPackages() []string {
	out := make([]string, len(am.rootPackages))
	copy(out, am.rootPackages)
	return out
}

// SharedModules returns the names of the implicitly allowed modules, sorted
func (am *ApplicationModules) SharedModules() []string {
	out := make([]string, 0, len(am.shared))
	for name := range am.shared {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsShared reports whether the named module is an always-allowed target
func (am *ApplicationModules) IsShared(name string) bool {
	return am.shared[name]
}

// ModuleOf implements dependency.ModuleLookup
func (am *ApplicationModules) ModuleOf(qualifiedName string) (string, bool) {
	name, ok := am.moduleByType[qualifiedName]
	return name, ok
}

// Verify runs verification once per collection instance. The first call
// computes and either succeeds or raises the aggregate failure; subsequent
// calls return the recorded outcome without recomputing.
func (am *ApplicationModules) Verify() error {
	am.verifyOnce.Do(func() {
		am.verifyErr = am.DetectViolations().Err()
	})
	return am.verifyErr
}

// DetectViolations recomputes and returns all violations without raising.
// Documentation tooling uses this to inspect findings without aborting.
func (am *ApplicationModules) DetectViolations() verify.Violations {
	violations := verify.None()
	for _, m := range am.Modules() {
		violations = verify.Combine(violations, am.verifyModule(m))
	}
	violations = verify.Combine(violations, am.detectCycles())
	if am.rules != nil {
		violations = verify.Combine(violations, am.rules.Evaluate(am.allDependencies()))
	}
	return violations
}

// ExcludeModule produces an exclusion predicate matching every type residing
// under the named module's base package, including sub-packages
func ExcludeModule(basePackage string) func(*universe.Type) bool {
	return func(t *universe.Type) bool {
		return universe.ResidesIn(t.Package(), basePackage)
	}
}

// Cache memoizes collections per (roots, exclusion key) for the lifetime of
// the process. Concurrent first access computes a key's collection exactly
// once; entries are immutable after population.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	am   *ApplicationModules
	err  error
}

// NewCache creates an empty collection cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Of returns the cached collection for the options' (roots, exclusion) key,
// building it on first access
func (c *Cache) Of(u *universe.Universe, opts Options) (*ApplicationModules, error) {
	key := cacheKey(opts)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.am, entry.err = NewApplicationModules(u, opts)
	})
	return entry.am, entry.err
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func cacheKey(opts Options) string {
	roots := append([]string(nil), opts.RootPackages...)
	sort.Strings(roots)
	return strings.Join(roots, ",") + "|" + opts.ExclusionKey
}
