package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applatix/claudiabuild/src/component"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/runner"
)

type countingCommander struct {
	mu    sync.Mutex
	lines []string
}

func (c *countingCommander) Run(_ context.Context, inv runner.Invocation) (runner.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	line := inv.String()
	c.lines = append(c.lines, line)
	if strings.HasPrefix(line, "docker build") {
		return runner.Result{Output: "Successfully built 0123456789ab\n"}, nil
	}
	return runner.Result{}, nil
}

func (c *countingCommander) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// execute runs the CLI against a fresh project root and returns stdout and
// the commands that reached the runner.
func execute(t *testing.T, files map[string]string, args ...string) (string, *countingCommander, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("GITLAB_CI", "")

	root := t.TempDir()
	if _, ok := files["VERSION"]; !ok {
		files = mergeFiles(files, map[string]string{"VERSION": "1.2.0\n"})
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	spy := &countingCommander{}
	prev := newCommander
	newCommander = func(string, *slog.Logger) runner.Commander { return spy }
	t.Cleanup(func() { newCommander = prev })

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.Execute()
	return out.String(), spy, err
}

func mergeFiles(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func TestReleaseWithoutRegistryIssuesNoCommands(t *testing.T) {
	_, spy, err := execute(t, nil, "build", "--release")
	require.ErrorIs(t, err, component.ErrRegistryRequired)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Zero(t, spy.count())
}

func TestUnknownComponentIsUsageError(t *testing.T) {
	_, spy, err := execute(t, nil, "build", "-c", "bogus", "-c", "server")
	var ierr *component.InvalidComponentError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, []string{"bogus"}, ierr.Unknown)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Zero(t, spy.count())
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, _, err := execute(t, nil, "build", "--frobnicate")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestInvalidConfigIsUsageError(t *testing.T) {
	_, spy, err := execute(t, map[string]string{
		".claudiabuild.yml": "pipeline:\n  workers: 0\n",
	}, "build")
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Zero(t, spy.count())
}

func TestDryRunPrintsPlanOnly(t *testing.T) {
	out, spy, err := execute(t, nil, "build", "--all", "--dry-run")
	require.NoError(t, err)
	assert.Zero(t, spy.count())
	assert.Contains(t, out, "── Plan ")
	assert.Contains(t, out, "ami-preflight")
	assert.Contains(t, out, "claudia:latest")
}

func TestDefaultBuild(t *testing.T) {
	out, spy, err := execute(t, nil, "build", "-v", "1.0")
	require.NoError(t, err)
	assert.Equal(t, 4, spy.count())
	assert.Contains(t, out, "── Summary ")
	assert.Contains(t, out, "claudia:1.0")
	assert.Contains(t, out, "1.2.0")
}

func TestBuildFailureExitsOne(t *testing.T) {
	_, _, err := execute(t, map[string]string{"VERSION": "not-a-version\n"}, "build")
	require.Error(t, err)
	assert.Equal(t, exitFailure, ExitCode(err))
}

func TestComponentsListsCatalog(t *testing.T) {
	out, _, err := execute(t, nil, "components")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// rounded box: top, header, rule, six rows, bottom
	require.Len(t, lines, 10)
	assert.Contains(t, lines[1], "COMPONENT")
	assert.Contains(t, lines[3], "builder")
	assert.Contains(t, lines[3], "yes")
	assert.Contains(t, lines[7], "ami")
	assert.NotContains(t, lines[7], "yes")
	assert.Contains(t, lines[8], "docs")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "claudiabuild dev"), out)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, exitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, exitUsage, ExitCode(&usageError{errors.New("bad flag")}))
}
