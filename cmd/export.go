package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes the recorded periods to boletim-<ISO timestamp>.<ext>.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	opts, err := r.formatOptions()
	if err != nil {
		return err
	}

	sw, closeFn, err := r.openStopwatch()
	if err != nil {
		return err
	}
	defer closeFn()

	periods := sw.Periods()
	if len(periods) == 0 {
		return fmt.Errorf("nothing to export: %w", shared.ErrNoPeriods)
	}

	if cmd.Bool("stdout") {
		if _, err := r.output.Write(formatter.Render(periods, format, opts)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return r.writePlain("\n")
	}

	dir := cmd.String("output")
	if dir == "" {
		dir = r.config.Export.Directory
	}

	path, err := formatter.WriteExport(periods, dir, r.clock.Now(), format, opts)
	if err != nil {
		return fmt.Errorf("failed to export periods: %w", err)
	}
	r.logger.Info("exported periods", "path", path, "count", len(periods))
	r.writePlain("✓ Exported %d period(s) to %s\n", len(periods), path)

	if cmd.Bool("open") {
		if err := shared.OpenPath(path); err != nil {
			r.logger.Warn("failed to open export", "path", path, "error", err)
		}
	}
	return nil
}

// Clear deletes every recorded period after confirmation on stdin, unless --yes is given.
func (r *Runner) Clear(ctx context.Context, cmd *cli.Command) error {
	sw, closeFn, err := r.openStopwatch()
	if err != nil {
		return err
	}
	defer closeFn()

	if !cmd.Bool("yes") {
		r.writePlain("Limpar todos os períodos? [s/N] ")
		ok, err := r.confirm()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: periods kept", shared.ErrAborted)
		}
	}

	count := len(sw.Periods())
	if err := sw.Clear(); err != nil {
		return fmt.Errorf("failed to clear periods: %w", err)
	}
	return r.writePlain("✓ Cleared %d period(s)\n", count)
}

// confirm reads one line from the runner's input and reports whether it is an affirmative answer.
func (r *Runner) confirm() (bool, error) {
	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		// EOF without an answer declines.
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
