package pipeline

import (
	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/component"
)

// Step is one entry of a dry-run plan.
type Step struct {
	Stage  string
	Action string
}

// Plan lists the stages Run would execute for opts, in order, without
// issuing any command.
func (p *Pipeline) Plan(opts Options) []Step {
	sel := opts.Selection
	cfg := p.settings.Config
	tag := build.ImageTag(cfg.Project.ContainerName, sel.ImageVersion)
	var steps []Step

	if sel.Has(component.AMI) {
		steps = append(steps, Step{StagePreflight, "check " + cfg.AMI.PackerBinary + " >= " + cfg.AMI.MinPackerVersion})
	}
	if sel.NeedsBuilder() {
		steps = append(steps, Step{StageBuilder, "build " + cfg.Project.BuilderImage + " from " + cfg.Docker.BuilderDockerfile})
	}
	if sel.Has(component.Server) {
		steps = append(steps, Step{StageServer, "run " + cfg.Project.ServerBuildScript + " in builder (parallel)"})
	}
	if sel.Has(component.UI) {
		steps = append(steps, Step{StageUI, "run " + cfg.Project.UIBuildScript + " in builder (parallel)"})
	}
	if sel.Has(component.Docs) {
		action := "mkdocs build"
		if opts.Publish {
			action += ", gh-deploy"
		}
		steps = append(steps, Step{StageDocs, action})
	}
	if sel.Has(component.Container) {
		steps = append(steps, Step{StageContainer, "build " + tag + " from " + cfg.Docker.Dockerfile})
		if sel.Registry != "" {
			steps = append(steps, Step{StagePush, "push " + build.RegistryRef(sel.Registry, tag)})
		}
	}
	if sel.Has(component.AMI) {
		steps = append(steps, Step{StageAMI, "packer build " + cfg.AMI.PackerTemplate + " with " + tag})
	}
	return steps
}
