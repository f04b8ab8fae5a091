package build

// BuildStep is a single docker build invocation.
type BuildStep struct {
	Name       string
	Dockerfile string
	Context    string
	Tags       []string
	NoCache    bool
}

// Mount binds a host path into a container.
type Mount struct {
	Source string
	Target string
}

// RunSpec describes a throwaway container run.
type RunSpec struct {
	Image   string
	Env     map[string]string
	Mounts  []Mount
	Workdir string
	Command []string
}
