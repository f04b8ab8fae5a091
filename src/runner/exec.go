package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// Process is a resolved command ready to spawn.
type Process struct {
	Path string
	Args []string
	Dir  string
	Env  map[string]string
}

// Executor spawns one process, feeds every line of its combined output to
// onLine, and reports the exit status. A non-zero exit is not an error; err
// is reserved for failures to start or read the process.
type Executor interface {
	Run(ctx context.Context, p Process, onLine func(string)) (exitCode int, err error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, p Process, onLine func(string)) (int, error) {
	if p.Path == "" {
		return -1, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Dir = p.Dir
	if len(p.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), p.Env)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", p.Path, err)
	}

	readErr := readLines(stdout, onLine)
	if readErr != nil {
		// keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait %s: %w", p.Path, waitErr)
	}
	if readErr != nil {
		return -1, fmt.Errorf("read output of %s: %w", p.Path, readErr)
	}
	return 0, nil
}

// readLines feeds r to onLine one line at a time until EOF. Lines have no
// length limit; docker progress output can run to megabytes without a
// newline.
func readLines(r io.Reader, onLine func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			onLine(strings.TrimRight(line, "\r\n"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// mergeEnv layers overrides on top of base, replacing existing keys.
func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
