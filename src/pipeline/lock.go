package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFile is created in the source root while a build runs.
const LockFile = ".claudiabuild.lock"

// ErrLocked is returned when another build holds the source root.
var ErrLocked = errors.New("another build is running in this source root")

// Lock takes the source-root lock without blocking. Two builds sharing a
// tree would race on the compose file, the image archive and the ui output.
func Lock(root string) (unlock func() error, err error) {
	lock := flock.New(filepath.Join(root, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire build lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrLocked, lock.Path())
	}
	return lock.Unlock, nil
}
