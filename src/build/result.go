package build

import "time"

// Stage statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StageResult captures the outcome of a single pipeline stage.
type StageResult struct {
	Name     string
	Status   string // "success", "failed", "skipped"
	Detail   string // image id, tag, or the reason a stage was skipped
	Duration time.Duration
	Error    error
}
