// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/urfave/cli/v3"
)

// startCommand starts or resumes the stopwatch
func startCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "start",
		Usage:  "Start or resume the stopwatch",
		Action: r.Start,
	}
}

// pauseCommand ends the current segment and records it as a period
func pauseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "pause",
		Usage:  "Pause the stopwatch, recording the current period",
		Action: r.Pause,
	}
}

// stopCommand pauses and resets the clock
func stopCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stop",
		Usage:  "Stop the stopwatch and reset the clock to 00:00:00",
		Action: r.Stop,
	}
}

// statusCommand prints the clock, recorded periods and total
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "status",
		Aliases: []string{"st"},
		Usage:   "Show the clock, recorded periods and total time",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Status,
	}
}

// runCommand keeps the stopwatch ticking in the foreground
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the stopwatch in the foreground, printing the clock every second",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "pause-on-exit",
				Usage: "Pause (recording the period) instead of leaving the stopwatch running on exit",
			},
		},
		Action: r.Run,
	}
}

// exportCommand writes the boletim file
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export recorded periods to a boletim file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (defaults to export.directory)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (txt or md)",
				Value:   string(formatter.FormatText),
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the exported file with the default application",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "Write the boletim to stdout instead of a file",
			},
		},
		Action: r.Export,
	}
}

// clearCommand drops every recorded period
func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every recorded period and reset the stopwatch",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: r.Clear,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the SQLite database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive stopwatch.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive stopwatch",
		Action:  r.TUI,
	}
}
