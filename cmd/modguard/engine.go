package main

import (
	"fmt"
	"os"
	"path/filepath"

	"modguard/internal/config"
	"modguard/internal/errors"
	"modguard/internal/logging"
	"modguard/internal/modules"
	"modguard/internal/rules"
	"modguard/internal/universe"
)

// collectionCache memoizes module collections per (roots, exclusion) key for
// the process lifetime
var collectionCache = modules.NewCache()

// engine bundles everything a command needs to run an analysis
type engine struct {
	config   *config.Config
	universe *universe.Universe
	logger   *logging.Logger
}

// loadEngine loads configuration, logger and the code universe for the
// project named by --project
func loadEngine() (*engine, error) {
	cfg, err := config.LoadConfig(projectFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if logLevelFlag != "" {
		level = logging.ParseLevel(logLevelFlag)
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  level,
	})

	u, err := loadUniverse(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded code universe", map[string]interface{}{
		"types": u.Size(),
	})
	return &engine{config: cfg, universe: u, logger: logger}, nil
}

func loadUniverse(cfg *config.Config) (*universe.Universe, error) {
	switch {
	case cfg.Universe.Snapshot != "":
		u, err := universe.LoadSnapshot(resolvePath(cfg.Universe.Snapshot))
		if err != nil {
			return nil, errors.New(errors.UniverseInvalid, "failed to load universe snapshot", err)
		}
		return u, nil
	case cfg.Universe.SCIPIndex != "":
		u, err := universe.LoadSCIP(resolvePath(cfg.Universe.SCIPIndex))
		if err != nil {
			return nil, errors.New(errors.UniverseInvalid, "failed to load SCIP index", err)
		}
		return u, nil
	default:
		return nil, errors.Newf(errors.UniverseInvalid,
			"no universe input configured; set universe.snapshot or universe.scipIndex")
	}
}

// collection builds (or fetches from the process cache) the module collection
// for the loaded configuration
func (e *engine) collection() (*modules.ApplicationModules, error) {
	opts := modules.Options{
		RootPackages:    e.config.Analysis.RootPackages,
		SharedModules:   e.config.Analysis.SharedModules,
		StdPrefixes:     e.config.Analysis.StdPrefixes,
		DeclarationFile: e.declarationFile(),
		Logger:          e.logger,
	}

	if rulesFile := e.rulesFile(); rulesFile != "" {
		rs, err := rules.Load(rulesFile)
		if err != nil {
			return nil, err
		}
		opts.Rules = rs
	}

	return collectionCache.Of(e.universe, opts)
}

func (e *engine) declarationFile() string {
	if e.config.Declarations.File != "" {
		return resolvePath(e.config.Declarations.File)
	}
	return filepath.Join(projectFlag, config.ConfigDir, modules.DeclarationFile)
}

func (e *engine) rulesFile() string {
	if e.config.Rules.File != "" {
		return resolvePath(e.config.Rules.File)
	}
	fallback := filepath.Join(projectFlag, config.ConfigDir, rules.RulesFile)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}

// storeDir returns the run-history directory, or "" when the store is
// disabled
func (e *engine) storeDir() string {
	if !e.config.Store.Enabled {
		return ""
	}
	if e.config.Store.Path != "" {
		return resolvePath(e.config.Store.Path)
	}
	return filepath.Join(projectFlag, config.ConfigDir)
}

// resolvePath interprets relative paths against the project root
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectFlag, path)
}
