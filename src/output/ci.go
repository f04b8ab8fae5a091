package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/applatix/claudiabuild/src/build"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// GitLab collapsible section helpers.

func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", time.Now().Unix(), id, name)
}

func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id)
}

// CIContext returns the commit and pipeline identifiers exposed by the CI
// runner, for the context block.
func CIContext() []KV {
	if !IsCI() {
		return nil
	}
	var kv []KV
	if tag := os.Getenv("CI_COMMIT_TAG"); tag != "" {
		kv = append(kv, KV{"tag", tag})
	}
	if sha := os.Getenv("CI_COMMIT_SHORT_SHA"); sha != "" {
		kv = append(kv, KV{"sha", sha})
	} else if sha := os.Getenv("CI_COMMIT_SHA"); len(sha) >= 8 {
		kv = append(kv, KV{"sha", sha[:8]})
	}
	if pipe := os.Getenv("CI_PIPELINE_ID"); pipe != "" {
		kv = append(kv, KV{"pipeline", pipe})
	}
	return kv
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Skipped  int              `xml:"skipped,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr"`
}

// WriteStageJUnit writes stage results to dir/build.xml so CI can show each
// stage as a test case.
func WriteStageJUnit(dir string, stages []build.StageResult, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	suite := JUnitTestSuite{
		Name: "claudiabuild/stages",
		Time: fmt.Sprintf("%.3f", elapsed.Seconds()),
	}
	for _, s := range stages {
		tc := JUnitTestCase{
			Name:      s.Name,
			Classname: "claudiabuild.stage",
			Time:      fmt.Sprintf("%.3f", s.Duration.Seconds()),
		}
		switch s.Status {
		case build.StatusFailed:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("stage %s failed", s.Name),
				Type:    "stage",
				Body:    strings.TrimSpace(s.Detail),
			}
			suite.Failures++
		case build.StatusSkipped:
			tc.Skipped = &JUnitSkipped{Message: s.Detail}
			suite.Skipped++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}

	root := JUnitTestSuites{
		Name:     "claudiabuild",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Skipped:  suite.Skipped,
		Time:     suite.Time,
		Suites:   []JUnitTestSuite{suite},
	}

	path := filepath.Join(dir, "build.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	_, err = io.WriteString(f, "\n")
	return err
}
