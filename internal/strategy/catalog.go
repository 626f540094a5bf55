package strategy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a YAML strategy configuration.
func Parse(data []byte) (RawStrategyConfig, error) {
	var raw RawStrategyConfig

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return RawStrategyConfig{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy", err)
	}

	if err := validator.New().Struct(raw); err != nil {
		return RawStrategyConfig{}, errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy", err)
	}

	return raw, nil
}

// Load reads, validates and hydrates a strategy file.
func Load(path string, registry step.StepRegistry) (*StrategyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyNotFound, fmt.Sprintf("failed to read strategy %s", path), err)
	}

	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return Hydrate(raw, registry)
}

// Catalog loads strategies by name from a directory of YAML files
// (<dir>/<name>.yaml) and caches the hydrated result.
type Catalog struct {
	dir      string
	registry step.StepRegistry
	cache    map[string]*StrategyConfig
	mu       sync.Mutex
}

// NewCatalog creates a catalog over dir.
func NewCatalog(dir string, registry step.StepRegistry) *Catalog {
	return &Catalog{
		dir:      dir,
		registry: registry,
		cache:    make(map[string]*StrategyConfig),
		mu:       sync.Mutex{},
	}
}

// Get returns the named strategy, loading it on first use.
func (c *Catalog) Get(name string) (*StrategyConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg, ok := c.cache[name]; ok {
		return cfg, nil
	}

	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "invalid strategy name %q", name)
	}

	cfg, err := Load(filepath.Join(c.dir, name+".yaml"), c.registry)
	if err != nil {
		return nil, err
	}

	c.cache[name] = cfg

	return cfg, nil
}

// GetAll loads every strategy in the directory, sorted by file name.
func (c *Catalog) GetAll() ([]*StrategyConfig, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyNotFound, fmt.Sprintf("failed to read strategy directory %s", c.dir), err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}

	sort.Strings(names)

	configs := make([]*StrategyConfig, 0, len(names))

	for _, name := range names {
		cfg, err := c.Get(name)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}

		configs = append(configs, cfg)
	}

	return configs, nil
}

// ClearCache drops every cached strategy.
func (c *Catalog) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*StrategyConfig)
}
