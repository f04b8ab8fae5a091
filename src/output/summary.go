package output

import (
	"io"
	"time"

	"github.com/applatix/claudiabuild/src/build"
)

// StageSummary writes one row per stage and a total line. The total is
// failed if any stage failed.
func StageSummary(w io.Writer, stages []build.StageResult, elapsed time.Duration, color bool) {
	sec := NewSection(w, "Summary", 0, color)
	overall := build.StatusSuccess
	for _, s := range stages {
		detail := s.Detail
		if s.Status == build.StatusSuccess && s.Duration > 0 {
			detail += " " + Dimmed("("+formatElapsed(s.Duration)+")", color)
		}
		SummaryRow(w, s.Name, s.Status, detail, color)
		if s.Status == build.StatusFailed {
			overall = build.StatusFailed
		}
	}
	sec.Separator()
	SummaryTotal(w, elapsed, overall, color)
	sec.Close()
}
