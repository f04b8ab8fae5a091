package config

// ProjectConfig identifies the project being built.
type ProjectConfig struct {
	// ContainerName is the repository name of the final image.
	ContainerName string `yaml:"container_name" toml:"container_name"`
	// BuilderImage tags the builder image, and is reused as-is when the
	// builder is not rebuilt.
	BuilderImage string `yaml:"builder_image" toml:"builder_image"`
	// VersionFile holds the release version, relative to the root.
	VersionFile string `yaml:"version_file" toml:"version_file"`
	// GoPackagePath is where the sources are mounted inside the builder.
	GoPackagePath string `yaml:"go_package_path" toml:"go_package_path"`
	// ServerBuildScript and UIBuildScript are relative to their mount points.
	ServerBuildScript string `yaml:"server_build_script" toml:"server_build_script"`
	UIBuildScript     string `yaml:"ui_build_script" toml:"ui_build_script"`
}

// DefaultProjectConfig returns the defaults for the claudia project.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		ContainerName:     "claudia",
		BuilderImage:      "claudia-builder",
		VersionFile:       "VERSION",
		GoPackagePath:     "/root/go/src/github.com/applatix/claudia",
		ServerBuildScript: "build.sh",
		UIBuildScript:     "ui/build.sh",
	}
}
