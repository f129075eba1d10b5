package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/timer"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// Start starts the stopwatch, or reports it if already running.
func (r *Runner) Start(ctx context.Context, cmd *cli.Command) error {
	return r.transition("start", (*timer.Stopwatch).Start)
}

// Pause records the current segment as a period.
func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	return r.transition("pause", (*timer.Stopwatch).Pause)
}

// Stop records the current segment, if any, and resets the clock.
func (r *Runner) Stop(ctx context.Context, cmd *cli.Command) error {
	return r.transition("stop", (*timer.Stopwatch).Stop)
}

func (r *Runner) transition(name string, fn func(*timer.Stopwatch) error) error {
	sw, closeFn, err := r.openStopwatch()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := fn(sw); err != nil {
		return fmt.Errorf("failed to %s stopwatch: %w", name, err)
	}

	snap := sw.Snapshot()
	r.logger.Debug(name, "state", timer.StateOf(snap), "periods", len(snap.Periods))
	return r.writePlain("%s\n", r.statusLine(snap))
}

// Status prints the clock, recorded periods and total.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	sw, closeFn, err := r.openStopwatch()
	if err != nil {
		return err
	}
	defer closeFn()

	snap := sw.Snapshot()
	if cmd.Bool("json") {
		return r.writeJSON(snap, cmd.Bool("pretty"))
	}

	opts, err := r.formatOptions()
	if err != nil {
		return err
	}

	r.writePlainHeader(r.config.UI.Title)
	r.writePlain("%s\n", r.statusLine(snap))

	if len(snap.Periods) == 0 {
		r.writePlainln("No periods recorded.")
	} else {
		r.writePlainln("Períodos:")
		for i, p := range snap.Periods {
			r.writePlain("%3d. %s → %s  %s\n",
				i+1,
				formatter.FormatDatetime(p.StartTime, opts),
				formatter.FormatDatetime(p.EndTime, opts),
				formatter.FormatTime(p.Duration),
			)
		}
	}
	return r.writePlain("\nTempo Total: %s\n", formatter.FormatTime(snap.Total))
}

// Run keeps the stopwatch ticking in the foreground until interrupted, printing the clock each second.
//
// On exit the tick task is cancelled. Unless --pause-on-exit is set the stored state stays
// running, so the next command resumes by wall clock.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sw, closeFn, err := r.openStopwatch()
	if err != nil {
		return err
	}
	defer closeFn()

	ticks := make(chan models.Snapshot, 16)
	unsubscribe := sw.Subscribe(func(snap models.Snapshot) {
		select {
		case ticks <- snap:
		default:
		}
	})
	defer unsubscribe()

	if sw.IsRunning() {
		r.writePlain("%s\n", formatter.FormatTime(sw.Elapsed()))
	} else if err := sw.Start(); err != nil {
		return fmt.Errorf("failed to start stopwatch: %w", err)
	}
	r.logger.Info("stopwatch running, press Ctrl+C to exit")

	for {
		select {
		case snap := <-ticks:
			r.writePlain("%s\n", formatter.FormatTime(snap.Elapsed))
		case <-ctx.Done():
			unsubscribe()
			for drained := false; !drained; {
				select {
				case snap := <-ticks:
					r.writePlain("%s\n", formatter.FormatTime(snap.Elapsed))
				default:
					drained = true
				}
			}
			return r.teardown(sw, cmd.Bool("pause-on-exit"))
		}
	}
}

func (r *Runner) teardown(sw *timer.Stopwatch, pause bool) error {
	if !pause {
		r.logger.Info("leaving stopwatch running", "elapsed", formatter.FormatTime(sw.Elapsed()))
		return nil
	}

	if err := sw.Pause(); err != nil {
		return fmt.Errorf("failed to pause stopwatch: %w", err)
	}
	return r.writePlain("%s\n", r.statusLine(sw.Snapshot()))
}

// statusLine renders the one-line summary printed after each command.
func (r *Runner) statusLine(snap models.Snapshot) string {
	line := fmt.Sprintf("%s %s", formatter.FormatTime(snap.Elapsed), timer.StateOf(snap))
	if snap.IsRunning && snap.SegmentStart != nil {
		line += fmt.Sprintf(" (started %s)", humanize.RelTime(*snap.SegmentStart, r.clock.Now(), "ago", "from now"))
	}
	return line + fmt.Sprintf(" · %d period(s), total %s", len(snap.Periods), formatter.FormatTime(snap.Total))
}
