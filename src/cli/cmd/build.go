package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/applatix/claudiabuild/src/ami"
	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/component"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/output"
	"github.com/applatix/claudiabuild/src/pipeline"
)

type buildFlags struct {
	components   []string
	all          bool
	release      bool
	noCache      bool
	registry     string
	imageVersion string
	publish      bool
	dryRun       bool
	reportDir    string
	creds        ami.Credentials
}

func newBuildCmd(g *globals) *cobra.Command {
	f := &buildFlags{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the selected components",
		Long: `Build the selected components in dependency order.

Without flags the builder, server, ui and container are built. --all adds
docs and the AMI. --release builds everything tagged with the project
version and pushes it to --registry.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, g, f)
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVarP(&f.components, "component", "c", nil, "component(s) to build: builder, server, ui, container, ami, docs")
	fl.BoolVar(&f.all, "all", false, "build every component")
	fl.BoolVar(&f.release, "release", false, "release build: every component, project version tag, push (requires --registry)")
	fl.BoolVar(&f.noCache, "no-cache", false, "build images without the docker layer cache")
	fl.StringVar(&f.registry, "registry", "", "registry to push the container image to")
	fl.StringVarP(&f.imageVersion, "image-version", "v", "latest", "container image tag")
	fl.BoolVar(&f.publish, "publish", false, "publish docs with mkdocs gh-deploy")
	fl.BoolVar(&f.dryRun, "dry-run", false, "show the plan without executing")
	fl.StringVar(&f.reportDir, "report-dir", "", "write a JUnit stage report to this directory")
	fl.StringVar(&f.creds.Profile, "aws-profile", "", "AWS profile for packer")
	fl.StringVar(&f.creds.AccessKeyID, "aws-access-key-id", "", "AWS access key id for packer")
	fl.StringVar(&f.creds.SecretAccessKey, "aws-secret-access-key", "", "AWS secret access key for packer")
	fl.StringVar(&f.creds.SessionToken, "aws-session-token", "", "AWS session token for packer")
	return cmd
}

func runBuild(cmd *cobra.Command, g *globals, f *buildFlags) error {
	cfg := g.cfg
	logger := g.logger
	w := cmd.OutOrStdout()
	color := output.UseColor()
	start := time.Now()

	projectVersion, err := build.ReadProjectVersion(config.Settings{Root: g.root}.Path(cfg.Project.VersionFile))
	if err != nil {
		return err
	}

	// The selection is validated before any command is issued.
	sel, err := component.Resolve(component.Request{
		Components:   f.components,
		All:          f.all,
		Release:      f.release,
		Registry:     f.registry,
		ImageVersion: f.imageVersion,
	}, projectVersion)
	if err != nil {
		return err
	}

	revision, err := build.GitRevision(g.root)
	if err != nil {
		logger.Debug("git revision unavailable", "error", err)
	}
	settings, err := config.NewSettings(g.root, projectVersion, revision, *cfg)
	if err != nil {
		return err
	}

	output.ContextBlock(w, append([]output.KV{
		{Key: "version", Value: settings.Version},
		{Key: "revision", Value: settings.Revision},
		{Key: "components", Value: sel.Components.String()},
		{Key: "run", Value: g.runID},
	}, output.CIContext()...))

	p := pipeline.New(settings, newCommander(settings.Root, logger), logger)
	opts := pipeline.Options{
		Selection:   sel,
		NoCache:     f.noCache,
		Publish:     f.publish,
		Credentials: f.creds,
	}

	if f.dryRun {
		sec := output.NewSection(w, "Plan", 0, color)
		for _, step := range p.Plan(opts) {
			sec.Row("%-14s→ %s", step.Stage, step.Action)
		}
		sec.Close()
		return nil
	}

	unlock, err := pipeline.Lock(settings.Root)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("releasing build lock", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output.SectionStart(w, "claudiabuild_build", "Build")
	report, runErr := p.Run(ctx, opts)
	output.SectionEnd(w, "claudiabuild_build")

	elapsed := time.Since(start)
	output.StageSummary(w, report.Stages, elapsed, color)

	if f.reportDir != "" {
		if err := output.WriteStageJUnit(f.reportDir, report.Stages, elapsed); err != nil {
			logger.Warn("writing stage report", "error", err)
		}
	}

	if runErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("build interrupted: %w", runErr)
		}
		return runErr
	}
	logger.Info("build complete", "image", report.ImageTag, "elapsed", elapsed.Round(time.Millisecond))
	return nil
}
