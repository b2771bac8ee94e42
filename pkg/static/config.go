package static

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML file configuration for the static server.
type Config struct {
	Port      int    `yaml:"port"`
	BasePath  string `yaml:"basePath"`
	CleanURLs bool   `yaml:"cleanUrls"`
	Rewrites  []Rule `yaml:"rewrites"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Options converts the file config into server options.
func (c *Config) Options() Options {
	return Options{
		BasePath:  c.BasePath,
		CleanURLs: c.CleanURLs,
		Rewrites:  c.Rewrites,
	}
}
