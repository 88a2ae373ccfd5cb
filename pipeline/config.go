package pipeline

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/docsieve/docsieve/classify"
	"github.com/docsieve/docsieve/consensus"
	"github.com/docsieve/docsieve/figures"
	"github.com/docsieve/docsieve/index"
	"github.com/docsieve/docsieve/tables"
)

// Config holds all pipeline configuration.
type Config struct {
	// Workers bounds concurrent per-page detection.
	Workers int `yaml:"workers"`

	// CallTimeout bounds each analyzer call during enhancement.
	CallTimeout time.Duration `yaml:"call_timeout"`

	Index    index.Config    `yaml:"index"`
	Tables   tables.Config   `yaml:"tables"`
	Figures  figures.Config  `yaml:"figures"`
	Classify classify.Config `yaml:"classify"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = consensus.DefaultConfig().CallTimeout
	}
	if c.Index == (index.Config{}) {
		c.Index = index.DefaultConfig()
	}
	if c.Tables == (tables.Config{}) {
		c.Tables = tables.DefaultConfig()
	}
	if c.Figures == (figures.Config{}) {
		c.Figures = figures.DefaultConfig()
	}
	if c.Classify == (classify.Config{}) {
		c.Classify = classify.DefaultConfig()
	}
}

// LoadConfigFile reads a YAML config file, filling unset values with
// defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}
