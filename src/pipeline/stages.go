package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/runner"
)

// ErrNoDocsTool is returned when neither docker nor mkdocs is installed.
var ErrNoDocsTool = errors.New("either docker or mkdocs needs to be installed to build documentation")

// buildBuilder builds the image holding the toolchains and returns its id.
func (p *Pipeline) buildBuilder(ctx context.Context, noCache bool) (string, error) {
	cfg := p.settings.Config
	return p.docker.Build(ctx, build.BuildStep{
		Name:       StageBuilder,
		Dockerfile: p.settings.Path(cfg.Docker.BuilderDockerfile),
		Context:    cfg.Docker.Context,
		Tags:       []string{cfg.Project.BuilderImage},
		NoCache:    noCache,
	})
}

// buildServer compiles the binaries inside the builder image. An empty
// scratch directory is mounted over the vendor directory so the build uses
// the packages baked into the builder rather than whatever the host has.
func (p *Pipeline) buildServer(ctx context.Context, builderImage string) (string, error) {
	scratch, err := os.MkdirTemp(p.tempDir, "emptydir-")
	if err != nil {
		return "", fmt.Errorf("creating scratch vendor dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			p.logger.Warn("removing scratch vendor dir", "path", scratch, "error", err)
		}
	}()

	proj := p.settings.Config.Project
	_, err = p.docker.Run(ctx, build.RunSpec{
		Image: builderImage,
		Env: map[string]string{
			"VERSION":  p.settings.Version,
			"REVISION": p.settings.Revision,
		},
		Mounts: []build.Mount{
			{Source: p.settings.Root, Target: proj.GoPackagePath},
			{Source: scratch, Target: path.Join(proj.GoPackagePath, "vendor")},
		},
		Command: []string{path.Join(proj.GoPackagePath, proj.ServerBuildScript)},
	})
	if err != nil {
		return "", err
	}
	return "binaries built", nil
}

// buildUI bundles the static assets inside the builder image.
func (p *Pipeline) buildUI(ctx context.Context, builderImage string) (string, error) {
	proj := p.settings.Config.Project
	_, err := p.docker.Run(ctx, build.RunSpec{
		Image:   builderImage,
		Env:     map[string]string{"VERSION": p.settings.Version},
		Mounts:  []build.Mount{{Source: p.settings.Root, Target: "/src"}},
		Command: []string{path.Join("/src", proj.UIBuildScript)},
	})
	if err != nil {
		return "", err
	}
	return "static assets built", nil
}

// buildDocs runs mkdocs in the builder image when docker is available, and
// falls back to a local mkdocs.
func (p *Pipeline) buildDocs(ctx context.Context, builderImage string, publish bool) (string, error) {
	cfg := p.settings.Config
	var mkdocs func(args ...string) error

	switch {
	case p.installed(ctx, p.docker.Binary):
		mkdocs = func(args ...string) error {
			_, err := p.docker.Run(ctx, build.RunSpec{
				Image:   builderImage,
				Mounts:  []build.Mount{{Source: p.settings.Root, Target: "/src"}},
				Workdir: "/src",
				Command: append([]string{cfg.Docs.Binary}, args...),
			})
			return err
		}
	case p.installed(ctx, cfg.Docs.Binary):
		mkdocs = func(args ...string) error {
			_, err := p.cmd.Run(ctx, runner.Argv(append([]string{cfg.Docs.Binary}, args...)...))
			return err
		}
	default:
		return "", ErrNoDocsTool
	}

	if err := mkdocs("build"); err != nil {
		return "", err
	}
	site := p.settings.Path(cfg.Docs.SiteDir)
	p.logger.Info("documentation built", "path", site)

	if publish {
		if err := mkdocs("gh-deploy", "--force"); err != nil {
			return "", fmt.Errorf("publishing docs: %w", err)
		}
		return site + " (published)", nil
	}
	return site, nil
}

// installed reports whether program is on PATH, asked through the runner so
// the probe is logged like every other command.
func (p *Pipeline) installed(ctx context.Context, program string) bool {
	_, err := p.cmd.Run(ctx, runner.Argv("which", program))
	return err == nil
}

// buildContainer builds the final runtime image and returns its id.
func (p *Pipeline) buildContainer(ctx context.Context, imageTag string, noCache bool) (string, error) {
	cfg := p.settings.Config
	return p.docker.Build(ctx, build.BuildStep{
		Name:       StageContainer,
		Dockerfile: p.settings.Path(cfg.Docker.Dockerfile),
		Context:    cfg.Docker.Context,
		Tags:       []string{imageTag},
		NoCache:    noCache,
	})
}

// push tags the image for registry and pushes it.
func (p *Pipeline) push(ctx context.Context, imageTag, registry string) (string, error) {
	cfg := p.settings.Config.Docker
	ref := build.RegistryRef(registry, imageTag)
	if err := p.docker.Tag(ctx, imageTag, ref); err != nil {
		return "", err
	}
	if err := p.docker.Push(ctx, ref, cfg.PushRetry, cfg.RetryInterval.Std()); err != nil {
		return "", err
	}
	return ref, nil
}
