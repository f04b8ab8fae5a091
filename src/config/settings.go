package config

import "path/filepath"

// Settings is the immutable run configuration, built once at startup and
// passed by value to every component.
type Settings struct {
	Root     string // absolute source root
	Version  string // project release version
	Revision string // short git commit, "unknown" outside a repository
	Config   Config
}

// NewSettings binds cfg to an absolute root.
func NewSettings(root, version, revision string, cfg Config) (Settings, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Settings{}, err
	}
	if revision == "" {
		revision = "unknown"
	}
	return Settings{Root: abs, Version: version, Revision: revision, Config: cfg}, nil
}

// Path resolves rel against the root. Absolute paths are returned unchanged.
func (s Settings) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.Root, rel)
}
