package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".claudiabuild.yml"

// Config is the top-level build configuration.
type Config struct {
	Project  ProjectConfig  `yaml:"project" toml:"project"`
	Docker   DockerConfig   `yaml:"docker" toml:"docker"`
	Docs     DocsConfig     `yaml:"docs" toml:"docs"`
	AMI      AMIConfig      `yaml:"ami" toml:"ami"`
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// If path is empty, it tries the default file in dir.
// Returns sensible defaults if the default file doesn't exist.
func Load(dir, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, defaultConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Project:  DefaultProjectConfig(),
		Docker:   DefaultDockerConfig(),
		Docs:     DefaultDocsConfig(),
		AMI:      DefaultAMIConfig(),
		Pipeline: DefaultPipelineConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Defaults returns the built-in configuration.
func Defaults() *Config { return defaults() }
