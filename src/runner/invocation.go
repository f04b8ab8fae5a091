package runner

import (
	"maps"
	"strings"
	"time"
)

// DefaultRetryInterval is the pause between failed attempts when an
// invocation does not set its own.
const DefaultRetryInterval = 10 * time.Second

// Kind tags how an invocation's command is expressed.
type Kind int

const (
	KindArgv  Kind = iota // explicit argument list, no shell
	KindShell             // raw line handed to sh -c
)

// Invocation describes a single external command. Build one with Argv or
// Shell and refine it with the With* helpers, which return copies.
type Invocation struct {
	kind          Kind
	argv          []string
	line          string
	env           map[string]string // layered over the inherited environment
	Dir           string            // working directory; empty = runner root
	Retry         int               // additional attempts after the first
	RetryInterval time.Duration     // 0 = DefaultRetryInterval
}

// Argv returns an invocation that executes args[0] with the remaining
// arguments, without a shell.
func Argv(args ...string) Invocation {
	return Invocation{kind: KindArgv, argv: append([]string(nil), args...)}
}

// Shell returns an invocation that runs line through sh -c. Use it only when
// pipes or redirection are required.
func Shell(line string) Invocation {
	return Invocation{kind: KindShell, line: line}
}

// Kind reports how the command is expressed.
func (inv Invocation) Kind() Kind { return inv.kind }

// Args returns a copy of the argument list for argv invocations.
func (inv Invocation) Args() []string { return append([]string(nil), inv.argv...) }

// Env returns a copy of the environment overrides.
func (inv Invocation) Env() map[string]string { return maps.Clone(inv.env) }

// String renders the command line as it is logged.
func (inv Invocation) String() string {
	if inv.kind == KindShell {
		return inv.line
	}
	return strings.Join(inv.argv, " ")
}

// WithDir returns a copy running in dir.
func (inv Invocation) WithDir(dir string) Invocation {
	inv.Dir = dir
	return inv
}

// WithEnv returns a copy with env merged over any existing overrides.
func (inv Invocation) WithEnv(env map[string]string) Invocation {
	merged := make(map[string]string, len(inv.env)+len(env))
	maps.Copy(merged, inv.env)
	maps.Copy(merged, env)
	inv.env = merged
	return inv
}

// WithRetry returns a copy that is attempted up to 1+retry times, sleeping
// interval between failures.
func (inv Invocation) WithRetry(retry int, interval time.Duration) Invocation {
	inv.Retry = retry
	inv.RetryInterval = interval
	return inv
}

func (inv Invocation) attempts() int {
	if inv.Retry <= 0 {
		return 1
	}
	return 1 + inv.Retry
}

func (inv Invocation) interval() time.Duration {
	if inv.RetryInterval <= 0 {
		return DefaultRetryInterval
	}
	return inv.RetryInterval
}

// process resolves the invocation into what the executor spawns.
func (inv Invocation) process(root string) Process {
	p := Process{Dir: inv.Dir}
	if p.Dir == "" {
		p.Dir = root
	}
	switch inv.kind {
	case KindShell:
		p.Path = "sh"
		p.Args = []string{"-c", inv.line}
	default:
		if len(inv.argv) > 0 {
			p.Path = inv.argv[0]
			p.Args = append([]string(nil), inv.argv[1:]...)
		}
	}
	if len(inv.env) > 0 {
		p.Env = maps.Clone(inv.env)
	}
	return p
}
