package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks structural invariants of a loaded Config.
// All problems are reported together in one error.
func Validate(cfg *Config) error {
	var errs []string

	// ── Project ───────────────────────────────────────────────────────────

	if cfg.Project.ContainerName == "" {
		errs = append(errs, "project.container_name: required")
	}
	if cfg.Project.BuilderImage == "" {
		errs = append(errs, "project.builder_image: required")
	}
	if cfg.Project.VersionFile == "" {
		errs = append(errs, "project.version_file: required")
	}

	// ── Docker ────────────────────────────────────────────────────────────

	if cfg.Docker.PushRetry < 0 {
		errs = append(errs, fmt.Sprintf("docker.push_retry: must be >= 0, got %d", cfg.Docker.PushRetry))
	}
	if cfg.Docker.RetryInterval < 0 {
		errs = append(errs, "docker.retry_interval: must not be negative")
	}

	// ── AMI ───────────────────────────────────────────────────────────────

	if cfg.AMI.MinPackerVersion == "" {
		errs = append(errs, "ami.min_packer_version: required")
	} else if _, err := semver.NewVersion(cfg.AMI.MinPackerVersion); err != nil {
		errs = append(errs, fmt.Sprintf("ami.min_packer_version: %q is not a version", cfg.AMI.MinPackerVersion))
	}
	if len(cfg.AMI.VersionCommand) == 0 {
		errs = append(errs, "ami.version_command: required")
	}

	// ── Pipeline ──────────────────────────────────────────────────────────

	if cfg.Pipeline.Workers < 1 {
		errs = append(errs, fmt.Sprintf("pipeline.workers: must be >= 1, got %d", cfg.Pipeline.Workers))
	}

	// ── Log ───────────────────────────────────────────────────────────────

	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format: unsupported value %q (supported: text, json)", cfg.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}
