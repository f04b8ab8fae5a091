package ami

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/runner"
)

// fakeCommander answers by the first matching command prefix.
type fakeCommander struct {
	responses map[string]string
	seen      []runner.Invocation
}

func (f *fakeCommander) Run(_ context.Context, inv runner.Invocation) (runner.Result, error) {
	f.seen = append(f.seen, inv)
	line := inv.String()
	for prefix, out := range f.responses {
		if strings.HasPrefix(line, prefix) {
			return runner.Result{Output: out}, nil
		}
	}
	return runner.Result{}, nil
}

func TestCredentialsEnvOnlySuppliedKeys(t *testing.T) {
	env := Credentials{Profile: "prod", SessionToken: "tok"}.Env()
	assert.Equal(t, map[string]string{"AWS_PROFILE": "prod", "AWS_SESSION_TOKEN": "tok"}, env)

	assert.Empty(t, Credentials{}.Env())

	full := Credentials{Profile: "p", AccessKeyID: "id", SecretAccessKey: "secret", SessionToken: "t"}.Env()
	assert.Len(t, full, 4)
}

func TestVerifyPacker(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		minimum string
		wantErr error
	}{
		{name: "equal", output: "1.0.1", minimum: "1.0.1"},
		{name: "newer", output: "Packer v1.9.4", minimum: "1.0.1"},
		{name: "older", output: "1.0.0", minimum: "1.0.1", wantErr: ErrPackerTooOld},
		{name: "missing minimum", output: "1.0.1", minimum: "", wantErr: config.ErrInvalid},
		{name: "bad minimum", output: "1.0.1", minimum: "x.y", wantErr: config.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &fakeCommander{responses: map[string]string{"packer --version": tt.output}}
			_, err := VerifyPacker(context.Background(), cmd, "packer", tt.minimum)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifyPackerUnparsableOutput(t *testing.T) {
	cmd := &fakeCommander{responses: map[string]string{"packer --version": "garbage"}}
	_, err := VerifyPacker(context.Background(), cmd, "packer", "1.0.1")
	var perr *build.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestRenderCompose(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "in.yml")
	out := filepath.Join(dir, "out.yml")
	require.NoError(t, os.WriteFile(tmpl, []byte("image: ${IMAGE_TAG}\nother: ${IMAGE_TAG}\n"), 0o644))

	require.NoError(t, RenderCompose(tmpl, out, "claudia:1.2.0"))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "image: claudia:1.2.0\nother: claudia:1.2.0\n", string(got))
}

func newTestBuilder(t *testing.T, cmd *fakeCommander) (*Builder, config.Settings) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ami"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ami", "docker-compose-ami.yml.in"), []byte("image: ${IMAGE_TAG}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "packer.json"), []byte("{}"), 0o644))

	settings, err := config.NewSettings(root, "1.2.0", "abc1234", *config.Defaults())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(settings, cmd, build.NewDocker("docker", cmd), logger), settings
}

func TestBuilderBuild(t *testing.T) {
	cmd := &fakeCommander{responses: map[string]string{
		"docker run --rm claudia:1.2.0 claudiad --version": "claudiad 1.2.0-abc1234 (Build Date: 2017-06-22T18:30:12)",
	}}
	b, settings := newTestBuilder(t, cmd)

	md, err := b.Build(context.Background(), "claudia:1.2.0", Credentials{Profile: "prod"})
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", md.Version)

	compose, err := os.ReadFile(settings.Path("ami/docker-compose.yml"))
	require.NoError(t, err)
	assert.Equal(t, "image: claudia:1.2.0\n", string(compose))

	require.Len(t, cmd.seen, 3)
	assert.Equal(t, runner.KindShell, cmd.seen[1].Kind())
	assert.Contains(t, cmd.seen[1].String(), "docker save 'claudia:1.2.0'")

	packer := cmd.seen[2]
	assert.Equal(t, []string{
		"packer", "build",
		"-var", "version=1.2.0",
		"-var", "full_version=1.2.0-abc1234",
		"-var", "build_timestamp=20170622183012",
		"packer.json",
	}, packer.Args())
	assert.Equal(t, map[string]string{"AWS_PROFILE": "prod"}, packer.Env())
}

func TestBuilderBuildRejectsUnparsableVersion(t *testing.T) {
	cmd := &fakeCommander{responses: map[string]string{"docker run": "claudiad dev"}}
	b, _ := newTestBuilder(t, cmd)

	_, err := b.Build(context.Background(), "claudia:latest", Credentials{})
	var perr *build.ParseError
	require.ErrorAs(t, err, &perr)
	// no save, no packer
	assert.Len(t, cmd.seen, 1)
}

func TestPreflight(t *testing.T) {
	cmd := &fakeCommander{responses: map[string]string{"packer --version": "1.2.0"}}
	b, settings := newTestBuilder(t, cmd)
	require.NoError(t, b.Preflight(context.Background()))

	require.NoError(t, os.Remove(settings.Path("packer.json")))
	err := b.Preflight(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
