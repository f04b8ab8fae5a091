package build

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
)

// ReadProjectVersion reads the project-wide release version from path. The
// file holds a single semantic version such as "1.2.0".
func ReadProjectVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading version file: %w", err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("version file %s is empty", path)
	}
	if _, err := semver.NewVersion(v); err != nil {
		return "", fmt.Errorf("version file %s: %q is not a semantic version: %w", path, v, err)
	}
	return v, nil
}

// GitRevision returns the short HEAD commit of the repository containing dir.
func GitRevision(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repository: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	sha := head.Hash().String()
	if len(sha) < 7 {
		return "", errors.New("resolving HEAD: short hash")
	}
	return sha[:7], nil
}
