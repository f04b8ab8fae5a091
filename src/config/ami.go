package config

// AMIConfig controls the machine image stage. Paths are relative to the root.
type AMIConfig struct {
	ComposeTemplate string `yaml:"compose_template" toml:"compose_template"`
	ComposeOutput   string `yaml:"compose_output" toml:"compose_output"`
	ImageArchive    string `yaml:"image_archive" toml:"image_archive"`
	PackerTemplate  string `yaml:"packer_template" toml:"packer_template"`
	PackerBinary    string `yaml:"packer_binary" toml:"packer_binary"`
	// MinPackerVersion is the oldest packer release accepted.
	MinPackerVersion string `yaml:"min_packer_version" toml:"min_packer_version"`
	// VersionCommand runs inside the final image and prints its version line.
	VersionCommand []string `yaml:"version_command" toml:"version_command"`
}

// DefaultAMIConfig returns the packer defaults.
func DefaultAMIConfig() AMIConfig {
	return AMIConfig{
		ComposeTemplate:  "ami/docker-compose-ami.yml.in",
		ComposeOutput:    "ami/docker-compose.yml",
		ImageArchive:     "ami/claudia.tar.gz",
		PackerTemplate:   "packer.json",
		PackerBinary:     "packer",
		MinPackerVersion: "1.0.1",
		VersionCommand:   []string{"claudiad", "--version"},
	}
}
