package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applatix/claudiabuild/src/runner"
)

type recordingCommander struct {
	invocations []runner.Invocation
	output      string
	err         error
}

func (r *recordingCommander) Run(_ context.Context, inv runner.Invocation) (runner.Result, error) {
	r.invocations = append(r.invocations, inv)
	return runner.Result{Output: r.output}, r.err
}

func TestDockerBuildArgs(t *testing.T) {
	cmd := &recordingCommander{output: "Successfully built 0123abcd"}
	d := NewDocker("", cmd)

	id, err := d.Build(context.Background(), BuildStep{
		Name:       "builder",
		Dockerfile: "/src/Dockerfile-builder",
		Tags:       []string{"claudia-builder"},
		NoCache:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "0123abcd", id)

	require.Len(t, cmd.invocations, 1)
	inv := cmd.invocations[0]
	assert.Equal(t, []string{
		"docker", "build", "-t", "claudia-builder", "-f", "/src/Dockerfile-builder", "--no-cache", ".",
	}, inv.Args())
	assert.Equal(t, "0", inv.Env()["DOCKER_BUILDKIT"])
}

func TestDockerBuildWithoutMarkerFails(t *testing.T) {
	d := NewDocker("docker", &recordingCommander{output: "Successfully tagged claudia:latest"})
	_, err := d.Build(context.Background(), BuildStep{Name: "container", Tags: []string{"claudia:latest"}})
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestDockerRunArgs(t *testing.T) {
	d := NewDocker("docker", &recordingCommander{})
	args := d.runArgs(RunSpec{
		Image:   "abc123",
		Env:     map[string]string{"VERSION": "1.2.0"},
		Mounts:  []Mount{{Source: "/repo", Target: "/src"}},
		Workdir: "/src",
		Command: []string{"mkdocs", "build"},
	})
	assert.Equal(t, []string{
		"run", "--rm", "-e", "VERSION=1.2.0", "-v", "/repo:/src", "--workdir", "/src", "abc123", "mkdocs", "build",
	}, args)
}

func TestDockerSaveCompressedUsesShell(t *testing.T) {
	cmd := &recordingCommander{}
	d := NewDocker("docker", cmd)
	require.NoError(t, d.SaveCompressed(context.Background(), "claudia:1.2.0", "ami/claudia.tar.gz"))

	require.Len(t, cmd.invocations, 1)
	inv := cmd.invocations[0]
	assert.Equal(t, runner.KindShell, inv.Kind())
	assert.Equal(t, "docker save 'claudia:1.2.0' | gzip -c > 'ami/claudia.tar.gz'", inv.String())
}

func TestReadProjectVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "VERSION")

	require.NoError(t, os.WriteFile(path, []byte("1.2.0\n"), 0o644))
	v, err := ReadProjectVersion(path)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", v)

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	_, err = ReadProjectVersion(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("banana"), 0o644))
	_, err = ReadProjectVersion(path)
	require.Error(t, err)

	_, err = ReadProjectVersion(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestGitRevisionOutsideRepository(t *testing.T) {
	_, err := GitRevision(t.TempDir())
	require.Error(t, err)
}
