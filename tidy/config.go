package tidy

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the working directory when no config
// file is given.
const ConfigFileName = ".pptidy.yaml"

// DefaultChecks is the check selection used without a config file.
const DefaultChecks = "bugprone-*,modernize-*"

type Config struct {
	Checks           string            `yaml:"Checks"`
	WarningsAsErrors string            `yaml:"WarningsAsErrors"`
	Defines          []string          `yaml:"Defines"`
	IncludePaths     []string          `yaml:"IncludePaths"`
	Language         string            `yaml:"Language"`
	CheckOptions     map[string]string `yaml:"CheckOptions"`
}

func DefaultConfig() *Config {
	return &Config{
		Checks:       DefaultChecks,
		Language:     "auto",
		CheckOptions: make(map[string]string),
	}
}

// ParseConfig reads a config on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if cfg.CheckOptions == nil {
		cfg.CheckOptions = make(map[string]string)
	}
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return cfg, nil
}

// FindConfig loads ConfigFileName from dir, or returns the defaults when
// there is none.
func FindConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// AddChecks appends globs to the check selection so they take precedence.
func (cfg *Config) AddChecks(globs string) {
	cfg.Checks = joinGlobs(cfg.Checks, globs)
}

func (cfg *Config) AddWarningsAsErrors(globs string) {
	cfg.WarningsAsErrors = joinGlobs(cfg.WarningsAsErrors, globs)
}

func joinGlobs(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "," + b
}

// SplitDefine splits a NAME=VALUE definition. A bare NAME is defined
// to 1.
func SplitDefine(def string) (string, string) {
	if i := strings.IndexByte(def, '='); i >= 0 {
		return def[:i], def[i+1:]
	}
	return def, "1"
}
