// Package config handles the api-gen.json project file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config file name looked up in the working directory.
	DefaultFile = "api-gen.json"
	// DefaultPath is where the generated client is written unless configured.
	DefaultPath = "lib/types.ts"
	// PlaceholderSource marks a config written by init that still needs a source.
	PlaceholderSource = "__REPLACE__"
)

var (
	ErrSourceNotSet = errors.New("config: source is not set")
	ErrPathNotSet   = errors.New("config: path is not set")
)

var validMethods = map[string]struct{}{"get": {}, "post": {}, "put": {}, "delete": {}, "patch": {}}

// Config is the persisted generator configuration.
type Config struct {
	Source          string   `json:"source" mapstructure:"source"`
	Path            string   `json:"path" mapstructure:"path"`
	IncludeTags     []string `json:"includeTags,omitempty" mapstructure:"includeTags"`
	ExcludeTags     []string `json:"excludeTags,omitempty" mapstructure:"excludeTags"`
	Methods         []string `json:"methods,omitempty" mapstructure:"methods"`
	PathPatterns    []string `json:"pathPatterns,omitempty" mapstructure:"pathPatterns"`
	UniformOptional bool     `json:"uniformOptional,omitempty" mapstructure:"uniformOptional"`
}

// Default returns the record written by `api-gen init`.
func Default() *Config {
	return &Config{Source: PlaceholderSource, Path: DefaultPath}
}

// Load reads a Config from path. The file is JSON, but any YAML document with
// the same keys is accepted. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path is provided by caller
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if values == nil {
		return nil, fmt.Errorf("parse config %s: file is empty", path)
	}
	cfg, err := decode(values)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(values map[string]any) (*Config, error) {
	cfg := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the Config to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec // config is not secret
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	if s := strings.TrimSpace(c.Source); s == "" || s == PlaceholderSource {
		return ErrSourceNotSet
	}
	if strings.TrimSpace(c.Path) == "" {
		return ErrPathNotSet
	}
	for _, m := range c.Methods {
		if _, ok := validMethods[strings.ToLower(strings.TrimSpace(m))]; !ok {
			return fmt.Errorf("config: unsupported method %q", m)
		}
	}
	return nil
}
