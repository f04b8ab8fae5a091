package config

// DockerConfig holds docker build configuration.
type DockerConfig struct {
	Binary            string `yaml:"binary" toml:"binary"`
	Dockerfile        string `yaml:"dockerfile" toml:"dockerfile"`
	BuilderDockerfile string `yaml:"builder_dockerfile" toml:"builder_dockerfile"`
	Context           string `yaml:"context" toml:"context"`

	// PushRetry is the number of extra attempts for docker push.
	PushRetry int `yaml:"push_retry" toml:"push_retry"`
	// RetryInterval is the pause between failed push attempts.
	RetryInterval Duration `yaml:"retry_interval" toml:"retry_interval"`
}

// DefaultDockerConfig returns sensible defaults for docker configuration.
func DefaultDockerConfig() DockerConfig {
	return DockerConfig{
		Binary:            "docker",
		Dockerfile:        "Dockerfile",
		BuilderDockerfile: "Dockerfile-builder",
		Context:           ".",
		PushRetry:         2,
		RetryInterval:     Duration(defaultRetryInterval),
	}
}

// DocsConfig controls the documentation stage.
type DocsConfig struct {
	Binary  string `yaml:"binary" toml:"binary"`
	SiteDir string `yaml:"site_dir" toml:"site_dir"`
}

// DefaultDocsConfig returns the mkdocs defaults.
func DefaultDocsConfig() DocsConfig {
	return DocsConfig{
		Binary:  "mkdocs",
		SiteDir: "site",
	}
}
