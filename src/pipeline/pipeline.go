// Package pipeline sequences the build stages: builder image, server and ui
// in parallel, docs, final container, registry push, and AMI.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/applatix/claudiabuild/src/ami"
	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/component"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/parallel"
	"github.com/applatix/claudiabuild/src/runner"
)

// Stage names as they appear in reports.
const (
	StagePreflight = "ami-preflight"
	StageBuilder   = "builder"
	StageServer    = "server"
	StageUI        = "ui"
	StageDocs      = "docs"
	StageContainer = "container"
	StagePush      = "push"
	StageAMI       = "ami"
)

// Options are the per-run inputs resolved from the command line.
type Options struct {
	Selection   component.Selection
	NoCache     bool
	Publish     bool
	Credentials ami.Credentials
}

// Report summarises a run. It is returned even when the run fails.
type Report struct {
	Stages       []build.StageResult
	BuilderImage string
	ImageTag     string
	ImageID      string
	RegistryRef  string
	Metadata     *build.VersionMetadata
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTempDir sets where scratch directories are created (default os.TempDir).
func WithTempDir(dir string) Option {
	return func(p *Pipeline) { p.tempDir = dir }
}

// Pipeline runs the fixed stage graph.
type Pipeline struct {
	settings config.Settings
	cmd      runner.Commander
	docker   *build.Docker
	ami      *ami.Builder
	logger   *slog.Logger
	tempDir  string
}

// New creates a pipeline issuing every external command through cmd.
func New(settings config.Settings, cmd runner.Commander, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	docker := build.NewDocker(settings.Config.Docker.Binary, cmd)
	p := &Pipeline{
		settings: settings,
		cmd:      cmd,
		docker:   docker,
		ami:      ami.NewBuilder(settings, cmd, docker, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the selected stages in dependency order. Any stage failure
// aborts everything downstream; concurrently running siblings are awaited
// before the failure is returned.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	sel := opts.Selection
	cfg := p.settings.Config
	rec := &recorder{logger: p.logger}
	report := &Report{
		BuilderImage: cfg.Project.BuilderImage,
		ImageTag:     build.ImageTag(cfg.Project.ContainerName, sel.ImageVersion),
	}
	finish := func(err error) (*Report, error) {
		report.Stages = rec.results()
		return report, err
	}
	fail := func(stage string, err error) (*Report, error) {
		return finish(fmt.Errorf("%s stage: %w", stage, err))
	}

	if sel.Has(component.AMI) {
		if err := rec.run(StagePreflight, func() (string, error) {
			return "", p.ami.Preflight(ctx)
		}); err != nil {
			return fail(StagePreflight, err)
		}
	}

	// ── Builder ───────────────────────────────────────────────────────────

	if sel.NeedsBuilder() {
		if err := rec.run(StageBuilder, func() (string, error) {
			id, err := p.buildBuilder(ctx, opts.NoCache)
			if err != nil {
				return "", err
			}
			report.BuilderImage = id
			return id, nil
		}); err != nil {
			return fail(StageBuilder, err)
		}
	} else {
		rec.skip(StageBuilder, "reusing "+report.BuilderImage)
	}
	builderImage := report.BuilderImage

	// ── Join: server + ui ─────────────────────────────────────────────────

	var joined []*joinStage
	if sel.Has(component.Server) {
		joined = append(joined, &joinStage{name: StageServer, build: p.buildServer})
	} else {
		rec.skip(StageServer, "not selected")
	}
	if sel.Has(component.UI) {
		joined = append(joined, &joinStage{name: StageUI, build: p.buildUI})
	} else {
		rec.skip(StageUI, "not selected")
	}
	tasks := make([]parallel.Task, len(joined))
	for i, js := range joined {
		js := js
		tasks[i] = parallel.Task{Name: js.name, Run: func(ctx context.Context) error {
			rec.started(js.name)
			var err error
			js.detail, err = js.build(ctx, builderImage)
			return err
		}}
	}
	outcomes, err := parallel.Run(ctx, parallel.Options{
		Limit:    cfg.Pipeline.Workers,
		FailFast: cfg.Pipeline.FailFast,
	}, tasks)
	for i, o := range outcomes {
		rec.finished(o.Name, joined[i].detail, o.Duration, o.Err)
	}
	if err != nil {
		return finish(fmt.Errorf("build join: %w", err))
	}

	// ── Docs ──────────────────────────────────────────────────────────────

	if sel.Has(component.Docs) {
		if err := rec.run(StageDocs, func() (string, error) {
			return p.buildDocs(ctx, builderImage, opts.Publish)
		}); err != nil {
			return fail(StageDocs, err)
		}
	} else {
		rec.skip(StageDocs, "not selected")
	}

	// ── Container + push ──────────────────────────────────────────────────

	if sel.Has(component.Container) {
		if err := rec.run(StageContainer, func() (string, error) {
			id, err := p.buildContainer(ctx, report.ImageTag, opts.NoCache)
			if err != nil {
				return "", err
			}
			report.ImageID = id
			return report.ImageTag + " (" + id + ")", nil
		}); err != nil {
			return fail(StageContainer, err)
		}

		if sel.Registry != "" {
			if err := rec.run(StagePush, func() (string, error) {
				ref, err := p.push(ctx, report.ImageTag, sel.Registry)
				if err != nil {
					return "", err
				}
				report.RegistryRef = ref
				return ref, nil
			}); err != nil {
				return fail(StagePush, err)
			}
		} else {
			rec.skip(StagePush, "no registry")
		}
	} else {
		rec.skip(StageContainer, "not selected")
		rec.skip(StagePush, "container not built")
	}

	// ── AMI ───────────────────────────────────────────────────────────────

	if sel.Has(component.AMI) {
		if err := rec.run(StageAMI, func() (string, error) {
			md, err := p.ami.Build(ctx, report.ImageTag, opts.Credentials)
			if err != nil {
				return "", err
			}
			report.Metadata = &md
			return md.FullVersion + " @ " + md.Timestamp, nil
		}); err != nil {
			return fail(StageAMI, err)
		}
	} else {
		rec.skip(StageAMI, "not selected")
	}

	return finish(nil)
}

// joinStage is a stage run inside the concurrent join. Each task writes
// only its own detail.
type joinStage struct {
	name   string
	build  func(ctx context.Context, builderImage string) (string, error)
	detail string
}

// recorder collects stage results.
type recorder struct {
	mu     sync.Mutex
	stages []build.StageResult
	logger *slog.Logger
}

func (r *recorder) run(name string, fn func() (string, error)) error {
	r.started(name)
	start := time.Now()
	detail, err := fn()
	r.finished(name, detail, time.Since(start), err)
	return err
}

func (r *recorder) started(name string) {
	r.logger.Info("stage started", "stage", name)
}

func (r *recorder) finished(name, detail string, elapsed time.Duration, err error) {
	res := build.StageResult{
		Name:     name,
		Status:   build.StatusSuccess,
		Detail:   detail,
		Duration: elapsed,
	}
	if err != nil {
		res.Status = build.StatusFailed
		res.Error = err
		res.Detail = err.Error()
		r.logger.Error("stage failed", "stage", name, "error", err)
	} else {
		r.logger.Info("stage finished", "stage", name, "duration", elapsed.Round(time.Millisecond))
	}
	r.add(res)
}

func (r *recorder) skip(name, reason string) {
	r.add(build.StageResult{Name: name, Status: build.StatusSkipped, Detail: reason})
}

func (r *recorder) add(res build.StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, res)
}

func (r *recorder) results() []build.StageResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]build.StageResult(nil), r.stages...)
}
