package build

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/applatix/claudiabuild/src/runner"
)

// Docker wraps the docker CLI. Every call goes through a runner.Commander so
// output capture, logging, and retry behave the same for all stages.
type Docker struct {
	Binary string
	cmd    runner.Commander
}

// NewDocker creates a Docker wrapper invoking binary (default "docker").
func NewDocker(binary string, cmd runner.Commander) *Docker {
	if binary == "" {
		binary = "docker"
	}
	return &Docker{Binary: binary, cmd: cmd}
}

// Build executes a classic docker build and returns the image id announced
// by the last "Successfully built" line.
func (d *Docker) Build(ctx context.Context, step BuildStep) (string, error) {
	// The id marker is only printed by the legacy builder.
	inv := runner.Argv(append([]string{d.Binary}, d.buildArgs(step)...)...).
		WithEnv(map[string]string{"DOCKER_BUILDKIT": "0"})

	res, err := d.cmd.Run(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("docker build %s: %w", step.Name, err)
	}
	id, err := ExtractImageID(res.Output)
	if err != nil {
		return "", fmt.Errorf("docker build %s: %w", step.Name, err)
	}
	return id, nil
}

// buildArgs constructs the docker build argument list.
func (d *Docker) buildArgs(step BuildStep) []string {
	args := []string{"build"}

	for _, tag := range step.Tags {
		args = append(args, "-t", tag)
	}

	if step.Dockerfile != "" {
		args = append(args, "-f", step.Dockerfile)
	}

	if step.NoCache {
		args = append(args, "--no-cache")
	}

	buildContext := step.Context
	if buildContext == "" {
		buildContext = "."
	}
	return append(args, buildContext)
}

// Run starts a throwaway container and returns its combined output.
func (d *Docker) Run(ctx context.Context, spec RunSpec) (runner.Result, error) {
	return d.cmd.Run(ctx, runner.Argv(append([]string{d.Binary}, d.runArgs(spec)...)...))
}

// runArgs constructs the docker run argument list.
func (d *Docker) runArgs(spec RunSpec) []string {
	args := []string{"run", "--rm"}
	for _, k := range sortedKeys(spec.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, spec.Env[k]))
	}
	for _, m := range spec.Mounts {
		args = append(args, "-v", m.Source+":"+m.Target)
	}
	if spec.Workdir != "" {
		args = append(args, "--workdir", spec.Workdir)
	}
	args = append(args, spec.Image)
	return append(args, spec.Command...)
}

// Tag adds ref as an additional name for src.
func (d *Docker) Tag(ctx context.Context, src, ref string) error {
	if _, err := d.cmd.Run(ctx, runner.Argv(d.Binary, "tag", src, ref)); err != nil {
		return fmt.Errorf("tagging %s as %s: %w", src, ref, err)
	}
	return nil
}

// Push uploads ref, retrying transient registry failures.
func (d *Docker) Push(ctx context.Context, ref string, retry int, interval time.Duration) error {
	if _, err := d.cmd.Run(ctx, runner.Argv(d.Binary, "push", ref).WithRetry(retry, interval)); err != nil {
		return fmt.Errorf("pushing %s: %w", ref, err)
	}
	return nil
}

// SaveCompressed writes a gzipped tarball of ref to dest.
func (d *Docker) SaveCompressed(ctx context.Context, ref, dest string) error {
	line := fmt.Sprintf("%s save %s | gzip -c > %s", d.Binary, shellQuote(ref), shellQuote(dest))
	if _, err := d.cmd.Run(ctx, runner.Shell(line)); err != nil {
		return fmt.Errorf("saving %s: %w", ref, err)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
