package component

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnknownNames(t *testing.T) {
	_, err := Resolve(Request{Components: []string{"bogus", "server"}}, "1.2.0")

	var invalid *InvalidComponentError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{"bogus"}, invalid.Unknown)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestResolveUnknownNamesDeduplicatedAndSorted(t *testing.T) {
	_, err := Resolve(Request{Components: []string{"zeta", "alpha", "zeta", "ui"}}, "")
	var invalid *InvalidComponentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"alpha", "zeta"}, invalid.Unknown)
}

func TestResolveReleaseRequiresRegistry(t *testing.T) {
	_, err := Resolve(Request{Release: true}, "1.2.0")
	require.ErrorIs(t, err, ErrRegistryRequired)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestResolveRelease(t *testing.T) {
	sel, err := Resolve(Request{
		Release:      true,
		Registry:     "docker.io",
		ImageVersion: "custom",
		Components:   []string{"bogus"},
	}, "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, Catalog, sel.Components.Names())
	assert.Equal(t, "1.2.0", sel.ImageVersion)
	assert.Equal(t, "docker.io", sel.Registry)
	assert.True(t, sel.Release)
}

func TestResolveAllIgnoresExplicitNames(t *testing.T) {
	sel, err := Resolve(Request{All: true, Components: []string{"bogus"}}, "")
	require.NoError(t, err)
	assert.Equal(t, Catalog, sel.Components.Names())
	assert.Equal(t, "latest", sel.ImageVersion)
}

func TestResolveExplicit(t *testing.T) {
	sel, err := Resolve(Request{Components: []string{"docs", "container"}, ImageVersion: "dev"}, "")
	require.NoError(t, err)
	assert.Equal(t, []Name{Container, Docs}, sel.Components.Names())
	assert.Equal(t, "dev", sel.ImageVersion)
	assert.False(t, sel.NeedsBuilder())
}

func TestResolveDefaults(t *testing.T) {
	sel, err := Resolve(Request{}, "")
	require.NoError(t, err)
	assert.Equal(t, Defaults, sel.Components.Names())
	assert.True(t, sel.NeedsBuilder())
	assert.False(t, sel.Has(AMI))
	assert.False(t, sel.Has(Docs))
}

func TestNeedsBuilder(t *testing.T) {
	for _, n := range Catalog {
		sel := Selection{Components: NewSet(n)}
		want := n == Builder || n == Server || n == UI
		assert.Equal(t, want, sel.NeedsBuilder(), string(n))
	}
}

func TestSetString(t *testing.T) {
	assert.Equal(t, "builder, ui, docs", NewSet(Docs, UI, Builder).String())
}
