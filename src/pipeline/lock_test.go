package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockIsExclusive(t *testing.T) {
	root := t.TempDir()

	unlock, err := Lock(root)
	require.NoError(t, err)

	_, err = Lock(root)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = Lock(root)
	require.NoError(t, err)
	assert.NoError(t, unlock())
}
