// Package component resolves user-selected build components against the
// fixed catalog.
package component

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Name is a user-selectable build component.
type Name string

const (
	Builder   Name = "builder"
	Server    Name = "server"
	UI        Name = "ui"
	Container Name = "container"
	AMI       Name = "ami"
	Docs      Name = "docs"
)

// Catalog lists every component in pipeline order.
var Catalog = []Name{Builder, Server, UI, Container, AMI, Docs}

var descriptions = map[Name]string{
	Builder:   "image holding the go and node toolchains",
	Server:    "go binaries, compiled inside the builder",
	UI:        "static web assets, bundled inside the builder",
	Container: "runtime image tagged with the image version",
	AMI:       "machine image produced by packer from the container",
	Docs:      "mkdocs site, optionally published",
}

// Describe returns a one-line description of n.
func Describe(n Name) string { return descriptions[n] }

// Defaults is the selection when nothing is requested. Docs and AMI are opt-in.
var Defaults = []Name{Builder, Server, UI, Container}

var (
	// ErrInvalidRequest is matched by every resolution failure.
	ErrInvalidRequest = errors.New("invalid component request")
	// ErrRegistryRequired is returned for release mode without a registry.
	ErrRegistryRequired = fmt.Errorf("%w: registry must be supplied during release", ErrInvalidRequest)
)

// InvalidComponentError names requested components outside the catalog.
type InvalidComponentError struct {
	Unknown []string
}

func (e *InvalidComponentError) Error() string {
	return fmt.Sprintf("invalid component(s): %s", strings.Join(e.Unknown, ", "))
}

func (e *InvalidComponentError) Unwrap() error { return ErrInvalidRequest }

// Known reports whether s names a catalog component.
func Known(s string) bool {
	for _, n := range Catalog {
		if string(n) == s {
			return true
		}
	}
	return false
}

// Set is a set of component names.
type Set map[Name]bool

// NewSet builds a set from names.
func NewSet(names ...Name) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Has reports membership.
func (s Set) Has(n Name) bool { return s[n] }

// Names returns members in catalog order.
func (s Set) Names() []Name {
	var out []Name
	for _, n := range Catalog {
		if s[n] {
			out = append(out, n)
		}
	}
	return out
}

// String renders members in catalog order, comma separated.
func (s Set) String() string {
	names := s.Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

// Request is the raw selection from the command line.
type Request struct {
	Components   []string
	All          bool
	Release      bool
	Registry     string
	ImageVersion string
}

// Selection is a validated request.
type Selection struct {
	Components   Set
	Registry     string
	ImageVersion string
	Release      bool
}

// Has reports whether n was selected.
func (s Selection) Has(n Name) bool { return s.Components.Has(n) }

// NeedsBuilder reports whether the builder image must be built. When false,
// stages that need a builder reference reuse the default builder tag.
func (s Selection) NeedsBuilder() bool {
	return s.Has(Builder) || s.Has(Server) || s.Has(UI)
}

// Resolve validates req. Precedence: release, all, explicit names, defaults.
// Release mode requires a registry, selects everything, and forces the image
// version to releaseVersion.
func Resolve(req Request, releaseVersion string) (Selection, error) {
	sel := Selection{
		Registry:     strings.TrimSpace(req.Registry),
		ImageVersion: req.ImageVersion,
		Release:      req.Release,
	}
	if sel.ImageVersion == "" {
		sel.ImageVersion = "latest"
	}

	switch {
	case req.Release:
		if sel.Registry == "" {
			return Selection{}, ErrRegistryRequired
		}
		if releaseVersion == "" {
			return Selection{}, fmt.Errorf("%w: release version unknown", ErrInvalidRequest)
		}
		sel.ImageVersion = releaseVersion
		sel.Components = NewSet(Catalog...)

	case req.All:
		sel.Components = NewSet(Catalog...)

	case len(req.Components) > 0:
		if unknown := unknownNames(req.Components); len(unknown) > 0 {
			return Selection{}, &InvalidComponentError{Unknown: unknown}
		}
		sel.Components = make(Set, len(req.Components))
		for _, c := range req.Components {
			sel.Components[Name(c)] = true
		}

	default:
		sel.Components = NewSet(Defaults...)
	}

	return sel, nil
}

func unknownNames(requested []string) []string {
	seen := make(map[string]bool)
	var unknown []string
	for _, c := range requested {
		if Known(c) || seen[c] {
			continue
		}
		seen[c] = true
		unknown = append(unknown, c)
	}
	sort.Strings(unknown)
	return unknown
}
