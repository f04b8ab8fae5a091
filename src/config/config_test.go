package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingDefaultFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, defaults(), cfg)
	require.NoError(t, Validate(cfg))
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, defaultConfigFile, `
project:
  container_name: myapp
docker:
  push_retry: 5
  retry_interval: 3s
pipeline:
  fail_fast: true
`)
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "myapp", cfg.Project.ContainerName)
	assert.Equal(t, "claudia-builder", cfg.Project.BuilderImage)
	assert.Equal(t, 5, cfg.Docker.PushRetry)
	assert.Equal(t, 3*time.Second, cfg.Docker.RetryInterval.Std())
	assert.True(t, cfg.Pipeline.FailFast)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "build.toml", `
[ami]
min_packer_version = "1.5.0"
version_command = ["myappd", "version"]

[docker]
retry_interval = "250ms"
`)
	cfg, err := Load(dir, path)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", cfg.AMI.MinPackerVersion)
	assert.Equal(t, []string{"myappd", "version"}, cfg.AMI.VersionCommand)
	assert.Equal(t, 250*time.Millisecond, cfg.Docker.RetryInterval.Std())
	assert.Equal(t, "packer", cfg.AMI.PackerBinary)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, defaultConfigFile, "docker:\n  retry_interval: soon\n")
	_, err := Load(dir, "")
	require.Error(t, err)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := defaults()
	cfg.AMI.MinPackerVersion = ""
	cfg.Pipeline.Workers = 0
	cfg.Log.Format = "xml"

	err := Validate(cfg)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "ami.min_packer_version")
	assert.Contains(t, err.Error(), "pipeline.workers")
	assert.Contains(t, err.Error(), "log.format")
}

func TestValidateRejectsUnparsableMinimum(t *testing.T) {
	cfg := defaults()
	cfg.AMI.MinPackerVersion = "one.two"
	require.ErrorIs(t, Validate(cfg), ErrInvalid)
}

func TestSettingsPath(t *testing.T) {
	s, err := NewSettings("/repo", "1.2.0", "", *defaults())
	require.NoError(t, err)
	assert.Equal(t, "unknown", s.Revision)
	assert.Equal(t, filepath.Join("/repo", "ami", "docker-compose.yml"), s.Path("ami/docker-compose.yml"))
	assert.Equal(t, "/abs/packer.json", s.Path("/abs/packer.json"))
}
