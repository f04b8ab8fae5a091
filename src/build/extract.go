package build

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ParseError reports tool output that lacks an expected marker. It means the
// collaborator's output contract changed or the tool misbehaved.
type ParseError struct {
	Subject string // what was being looked for
	Output  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing %s: %v", e.Subject, e.Err)
	}
	return fmt.Sprintf("no %s found in output", e.Subject)
}

func (e *ParseError) Unwrap() error { return e.Err }

// VersionMetadata is parsed from the version line a built image prints.
type VersionMetadata struct {
	FullVersion string    // "1.2.0-8ac3f1e"
	Version     string    // "1.2.0"
	BuildDate   time.Time // as printed, no zone
	Timestamp   string    // "20170622183012"
}

const (
	buildDateLayout = "2006-01-02T15:04:05"
	timestampLayout = "20060102150405"
)

var (
	// Successfully built 1a2b3c4d5e6f
	builtRe = regexp.MustCompile(`Successfully built\s+(\w+)`)
	// claudiad 1.2.0-8ac3f1e (Build Date: 2017-06-22T18:30:12)
	versionLineRe = regexp.MustCompile(`^.*\s+(\d+\.\d+\.\d+-\S+)\s+\(Build Date: (.*)\)$`)
	// first dotted numeric token: "1.0.1", "Packer v1.9.4"
	dottedRe = regexp.MustCompile(`\d+(?:\.\d+)+`)
)

// ExtractImageID returns the image id from docker build output. Multi-stage
// builds announce several ids; the last one is the final image.
func ExtractImageID(output string) (string, error) {
	matches := builtRe.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return "", &ParseError{Subject: "successfully built marker", Output: output}
	}
	return matches[len(matches)-1][1], nil
}

// ExtractVersionMetadata parses "<name> <version>-<suffix> (Build Date: <date>)".
// When several lines match, the last one wins.
func ExtractVersionMetadata(output string) (VersionMetadata, error) {
	var m []string
	for _, line := range strings.Split(output, "\n") {
		if sub := versionLineRe.FindStringSubmatch(strings.TrimSpace(line)); sub != nil {
			m = sub
		}
	}
	if m == nil {
		return VersionMetadata{}, &ParseError{Subject: "version line", Output: output}
	}

	built, err := time.Parse(buildDateLayout, strings.TrimSpace(m[2]))
	if err != nil {
		return VersionMetadata{}, &ParseError{Subject: "build date", Output: output, Err: err}
	}

	full := m[1]
	bare, _, _ := strings.Cut(full, "-")
	return VersionMetadata{
		FullVersion: full,
		Version:     bare,
		BuildDate:   built,
		Timestamp:   built.Format(timestampLayout),
	}, nil
}

// ExtractDottedVersion returns the first dotted numeric version in output.
func ExtractDottedVersion(output string) (string, error) {
	v := dottedRe.FindString(output)
	if v == "" {
		return "", &ParseError{Subject: "dotted version", Output: output}
	}
	return v, nil
}
