package ami

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/applatix/claudiabuild/src/build"
	"github.com/applatix/claudiabuild/src/config"
	"github.com/applatix/claudiabuild/src/runner"
)

// ErrPackerTooOld reports an installed packer below the configured minimum.
var ErrPackerTooOld = errors.New("packer version too old")

// VerifyPacker checks that the packer binary reports at least minimum and
// returns the installed version.
func VerifyPacker(ctx context.Context, cmd runner.Commander, binary, minimum string) (string, error) {
	if minimum == "" {
		return "", fmt.Errorf("%w: minimum packer version not set", config.ErrInvalid)
	}
	want, err := semver.NewVersion(minimum)
	if err != nil {
		return "", fmt.Errorf("%w: minimum packer version %q: %v", config.ErrInvalid, minimum, err)
	}

	res, err := cmd.Run(ctx, runner.Argv(binary, "--version"))
	if err != nil {
		return "", fmt.Errorf("checking packer version: %w", err)
	}
	raw, err := build.ExtractDottedVersion(res.Output)
	if err != nil {
		return "", fmt.Errorf("checking packer version: %w", err)
	}
	have, err := semver.NewVersion(raw)
	if err != nil {
		return "", fmt.Errorf("checking packer version: %q: %w", raw, err)
	}

	if have.LessThan(want) {
		return have.String(), fmt.Errorf("%w: packer %s+ required, found %s", ErrPackerTooOld, want, have)
	}
	return have.String(), nil
}
