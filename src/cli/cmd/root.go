package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/applatix/claudiabuild/src/component"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/logging"
	"github.com/applatix/claudiabuild/src/runner"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

// newCommander builds the command runner for a run. Tests replace it.
var newCommander = func(root string, logger *slog.Logger) runner.Commander {
	return runner.New(root, runner.WithLogger(logger))
}

// globals holds the persistent flags and what PersistentPreRunE derives
// from them.
type globals struct {
	cfgFile   string
	root      string
	verbose   bool
	logFormat string

	cfg    *config.Config
	logger *slog.Logger
	runID  string
}

// usageError marks bad flags and arguments.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "claudiabuild",
		Short: "Build and release orchestrator",
		Long:  "claudiabuild builds the claudia builder image, binaries, ui, docs, container and AMI.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip config loading for commands that don't need it.
			if cmd.Name() == "version" || cmd.Name() == "components" {
				return nil
			}
			return g.load(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "config file (default: <root>/.claudiabuild.yml)")
	root.PersistentFlags().StringVar(&g.root, "root", "", "source root (default: working directory)")
	root.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "stream command output")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json (overrides config)")

	root.AddCommand(newBuildCmd(g), newComponentsCmd(), newVersionCmd())
	return root
}

// load resolves the root, reads and validates the config, and builds the
// run logger.
func (g *globals) load(logOut io.Writer) error {
	if g.root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		g.root = wd
	}
	abs, err := filepath.Abs(g.root)
	if err != nil {
		return err
	}
	g.root = abs

	cfg, err := config.Load(g.root, g.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	g.cfg = cfg

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: g.verbose,
		Writer:  logOut,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	g.logger, g.runID = logging.WithRunID(logger)
	return nil
}

// Execute runs the root command.
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit status.
// Invalid requests and configuration exit 2; everything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var uerr *usageError
	if errors.As(err, &uerr) ||
		errors.Is(err, component.ErrInvalidRequest) ||
		errors.Is(err, config.ErrInvalid) {
		return exitUsage
	}
	return exitFailure
}
