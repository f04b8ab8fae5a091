// Package ami produces the machine image through packer.
package ami

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/runner"
)

// Builder runs the packer stage against a built image.
type Builder struct {
	settings config.Settings
	cmd      runner.Commander
	docker   *build.Docker
	logger   *slog.Logger
}

// NewBuilder creates an AMI builder.
func NewBuilder(settings config.Settings, cmd runner.Commander, docker *build.Docker, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{settings: settings, cmd: cmd, docker: docker, logger: logger}
}

// Preflight fails fast when packer is too old or the templates are missing.
// It runs before any image work.
func (b *Builder) Preflight(ctx context.Context) error {
	cfg := b.settings.Config.AMI
	for _, rel := range []string{cfg.ComposeTemplate, cfg.PackerTemplate} {
		if _, err := os.Stat(b.settings.Path(rel)); err != nil {
			return fmt.Errorf("ami prerequisite: %w", err)
		}
	}
	have, err := VerifyPacker(ctx, b.cmd, cfg.PackerBinary, cfg.MinPackerVersion)
	if err != nil {
		return err
	}
	b.logger.Info("packer version ok", "version", have, "minimum", cfg.MinPackerVersion)
	return nil
}

// Build renders the compose file, exports imageTag, and runs packer with the
// version metadata queried from the image.
func (b *Builder) Build(ctx context.Context, imageTag string, creds Credentials) (build.VersionMetadata, error) {
	cfg := b.settings.Config.AMI

	if err := RenderCompose(b.settings.Path(cfg.ComposeTemplate), b.settings.Path(cfg.ComposeOutput), imageTag); err != nil {
		return build.VersionMetadata{}, err
	}
	b.logger.Info("generated AMI compose file", "image", imageTag, "version", b.settings.Version)

	res, err := b.docker.Run(ctx, build.RunSpec{Image: imageTag, Command: cfg.VersionCommand})
	if err != nil {
		return build.VersionMetadata{}, fmt.Errorf("querying image version: %w", err)
	}
	md, err := build.ExtractVersionMetadata(res.Output)
	if err != nil {
		return build.VersionMetadata{}, fmt.Errorf("querying image version: %w", err)
	}

	if err := b.docker.SaveCompressed(ctx, imageTag, b.settings.Path(cfg.ImageArchive)); err != nil {
		return md, err
	}

	inv := runner.Argv(cfg.PackerBinary, "build",
		"-var", "version="+md.Version,
		"-var", "full_version="+md.FullVersion,
		"-var", "build_timestamp="+md.Timestamp,
		cfg.PackerTemplate,
	).WithEnv(creds.Env())
	if _, err := b.cmd.Run(ctx, inv); err != nil {
		return md, fmt.Errorf("packer build: %w", err)
	}
	return md, nil
}
