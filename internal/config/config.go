package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDatabase            = "examples/argon.yaml"
	DefaultSteps               = 200
	DefaultPairsPerStep        = 500
	DefaultSnapshotEvery       = 1
	DefaultMajorantSpeedFactor = 5.0
	DefaultLogLevel            = "info"
)

type Config struct {
	Database            string             `yaml:"database" toml:"database"`
	Seed                int64              `yaml:"seed" toml:"seed"`
	Steps               int                `yaml:"steps" toml:"steps"`
	PairsPerStep        int                `yaml:"pairs_per_step" toml:"pairs_per_step"`
	SnapshotEvery       int                `yaml:"snapshot_every" toml:"snapshot_every"`
	Ensemble            int                `yaml:"ensemble" toml:"ensemble"`
	MajorantSpeedFactor float64            `yaml:"majorant_speed_factor" toml:"majorant_speed_factor"`
	Extrapolation       bool               `yaml:"extrapolation" toml:"extrapolation"`
	LogLevel            string             `yaml:"log_level" toml:"log_level"`
	Population          []PopulationConfig `yaml:"population" toml:"population"`
	Filter              FilterConfig       `yaml:"filter" toml:"filter"`
}

// PopulationConfig seeds one species with a thermal population.
type PopulationConfig struct {
	Species     string  `yaml:"species" toml:"species"`
	Count       int     `yaml:"count" toml:"count"`
	Temperature float64 `yaml:"temperature" toml:"temperature"`
}

// FilterConfig selects which loaded equations enter the table. Empty
// fields do not filter.
type FilterConfig struct {
	ElasticOnly bool     `yaml:"elastic_only" toml:"elastic_only"`
	Sections    []string `yaml:"sections" toml:"sections"`
	Labels      []string `yaml:"labels" toml:"labels"`
	Exclude     []string `yaml:"exclude" toml:"exclude"` // species names
	Drop        []string `yaml:"drop" toml:"drop"`       // sections
	Prefer      []string `yaml:"prefer" toml:"prefer"`
}

func DefaultConfig() *Config {
	return &Config{
		Database:            DefaultDatabase,
		Steps:               DefaultSteps,
		PairsPerStep:        DefaultPairsPerStep,
		SnapshotEvery:       DefaultSnapshotEvery,
		Ensemble:            1,
		MajorantSpeedFactor: DefaultMajorantSpeedFactor,
		Extrapolation:       true,
		LogLevel:            DefaultLogLevel,
		Population: []PopulationConfig{
			{Species: "Ar", Count: 2000, Temperature: 300},
		},
	}
}

// Load reads a YAML file, or TOML when the extension is .toml. Fields
// missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if isTOML(path) {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return toml.NewEncoder(f).Encode(cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate checks the values a run cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Database == "":
		return fmt.Errorf("config: database path is empty")
	case c.Steps <= 0:
		return fmt.Errorf("config: steps must be positive, got %d", c.Steps)
	case c.PairsPerStep <= 0:
		return fmt.Errorf("config: pairs_per_step must be positive, got %d", c.PairsPerStep)
	case c.Ensemble <= 0:
		return fmt.Errorf("config: ensemble must be positive, got %d", c.Ensemble)
	case c.MajorantSpeedFactor <= 0:
		return fmt.Errorf("config: majorant_speed_factor must be positive, got %g", c.MajorantSpeedFactor)
	case len(c.Population) == 0:
		return fmt.Errorf("config: empty population")
	}
	for _, p := range c.Population {
		if p.Count < 0 || p.Temperature < 0 {
			return fmt.Errorf("config: population %q has count %d, temperature %g", p.Species, p.Count, p.Temperature)
		}
	}
	return nil
}

// envResolver overrides one field from the environment.
type envResolver struct {
	name   string
	setter func(*Config, string) error
}

var resolvers = []envResolver{
	{
		name: "DSMCDB_EXTRAPOLATION",
		setter: func(c *Config, v string) error {
			switch strings.ToLower(v) {
			case "off", "false", "0", "no":
				c.Extrapolation = false
			case "on", "true", "1", "yes":
				c.Extrapolation = true
			default:
				return fmt.Errorf("want on or off, got %q", v)
			}
			return nil
		},
	},
	{
		name:   "DSMCDB_LOG_LEVEL",
		setter: func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
	{
		name: "DSMCDB_SEED",
		setter: func(c *Config, v string) error {
			seed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			c.Seed = seed
			return nil
		},
	},
	{
		name:   "DSMCDB_DATABASE",
		setter: func(c *Config, v string) error { c.Database = v; return nil },
	},
}

// ApplyEnv overrides fields from DSMCDB_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, r := range resolvers {
		v, ok := lookup(r.name)
		if !ok || v == "" {
			continue
		}
		if err := r.setter(c, v); err != nil {
			return fmt.Errorf("config: %s: %w", r.name, err)
		}
	}
	return nil
}

// Clone returns a deep copy, so presets are never modified by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Population = append([]PopulationConfig(nil), c.Population...)
	out.Filter.Sections = append([]string(nil), c.Filter.Sections...)
	out.Filter.Labels = append([]string(nil), c.Filter.Labels...)
	out.Filter.Exclude = append([]string(nil), c.Filter.Exclude...)
	out.Filter.Drop = append([]string(nil), c.Filter.Drop...)
	out.Filter.Prefer = append([]string(nil), c.Filter.Prefer...)
	return &out
}
