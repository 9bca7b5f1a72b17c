package sweep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Objective kinds accepted in config files.
const (
	ObjChoice     = "choice"
	ObjPreference = "preference"
)

// maxPreferenceK caps the permutation size for the preference objective.
// Evaluation cost and the product cache both grow factorially; beyond 8
// a single evaluation stops being tractable.
const maxPreferenceK = 8

// Config describes one experiment sweep: the objective family, the
// (k, n, eps) grid, repeat counts, and the swarm sizing shared by every
// run.
type Config struct {
	Objective    string    `yaml:"objective"`
	Ks           []int     `yaml:"ks"`
	Ns           []int     `yaml:"ns"`
	Eps          []float64 `yaml:"eps"`
	Repeats      int       `yaml:"repeats"`
	Particles    int       `yaml:"particles"`
	MaxIter      int       `yaml:"max_iter"`
	MCIterations int       `yaml:"mc_iterations"`
	Seed         uint64    `yaml:"seed"`
	LogLevel     string    `yaml:"log_level"`
}

// DefaultConfig returns a config with the documented defaults filled in.
// Grid fields (Ks, Ns, Eps) have no defaults and must come from the file.
func DefaultConfig() Config {
	return Config{
		Objective:    ObjChoice,
		Repeats:      1,
		Particles:    30,
		MaxIter:      100,
		MCIterations: 100,
		LogLevel:     "info",
	}
}

// Load reads and validates a YAML sweep config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sweep: reading config %v: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML sweep config, applying defaults for omitted
// fields, and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("sweep: parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Objective != ObjChoice && c.Objective != ObjPreference {
		return fmt.Errorf("sweep: objective must be %q or %q, got %q", ObjChoice, ObjPreference, c.Objective)
	}
	if len(c.Ks) == 0 {
		return fmt.Errorf("sweep: ks grid is empty")
	}
	for _, k := range c.Ks {
		if k < 2 {
			return fmt.Errorf("sweep: k must be >= 2, got %v", k)
		}
		if c.Objective == ObjPreference && k > maxPreferenceK {
			return fmt.Errorf("sweep: preference objective supports k <= %v, got %v", maxPreferenceK, k)
		}
	}
	if len(c.Ns) == 0 {
		return fmt.Errorf("sweep: ns grid is empty")
	}
	for _, n := range c.Ns {
		if n < 1 {
			return fmt.Errorf("sweep: n must be >= 1, got %v", n)
		}
	}
	if len(c.Eps) == 0 {
		return fmt.Errorf("sweep: eps grid is empty")
	}
	for _, e := range c.Eps {
		if e < 0 {
			return fmt.Errorf("sweep: eps must be >= 0, got %v", e)
		}
	}
	if c.Repeats < 1 {
		return fmt.Errorf("sweep: repeats must be >= 1, got %v", c.Repeats)
	}
	if c.Particles < 1 {
		return fmt.Errorf("sweep: particles must be >= 1, got %v", c.Particles)
	}
	if c.MaxIter < 0 {
		return fmt.Errorf("sweep: max_iter must be >= 0, got %v", c.MaxIter)
	}
	if c.MCIterations < 1 {
		return fmt.Errorf("sweep: mc_iterations must be >= 1, got %v", c.MCIterations)
	}
	return nil
}
