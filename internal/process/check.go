package process

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Verifies that an executable can be launched.
//
// Runs "<executable> --version" and fails with [fault.ErrToolNotFound] if the
// process cannot be started or exits non-zero. Output goes to the runner's
// configured writers, so the version banner is visible in build logs.
func Check(ctx context.Context, r Runner, executable string) error {
	slog.Debug("checking tool", "executable", executable)

	result, err := r.Run(ctx, Command{Args: []string{executable, "--version"}})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: %s --version exited with code %d", fault.ErrToolNotFound, executable, result.ExitCode)
	}
	return nil
}
