package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/shared"
	"github.com/desertthunder/boletim/internal/store"
	"github.com/desertthunder/boletim/internal/timer"
	"github.com/urfave/cli/v3"
)

// StoreOpener opens the configured [store.Store] and returns a closer for its resources.
type StoreOpener func(*shared.Config) (store.Store, io.Closer, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	logger    *log.Logger
	output    io.Writer
	input     io.Reader
	clock     timer.Clock
	scheduler timer.Scheduler
	openStore StoreOpener
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Logger    *log.Logger
	Output    io.Writer
	Input     io.Reader
	Clock     timer.Clock
	Scheduler timer.Scheduler
	OpenStore StoreOpener
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Clock == nil {
		opts.Clock = timer.SystemClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timer.TickerScheduler{}
	}
	if opts.OpenStore == nil {
		opts.OpenStore = store.Open
	}

	return &Runner{
		config:    opts.Config,
		logger:    opts.Logger,
		output:    opts.Output,
		input:     opts.Input,
		clock:     opts.Clock,
		scheduler: opts.Scheduler,
		openStore: opts.OpenStore,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Before loads the configuration file, if present, and applies the log level.
//
// A missing file keeps the runner's current config.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return ctx, fmt.Errorf("failed to load %s: %w", configPath, err)
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", configPath)
	}

	level := r.config.Log.Level
	if flagLevel := cmd.String("log-level"); flagLevel != "" {
		level = flagLevel
	}
	ll, err := shared.ParseLogLevel(level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, ll)

	r.logger = shared.WithLogger(r.logger, "run_id", shared.GenerateID())
	return ctx, nil
}

func (r *Runner) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		startCommand, pauseCommand, stopCommand, statusCommand, runCommand,
		exportCommand, clearCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStopwatch opens the configured store and rebuilds the stopwatch from it.
//
// The returned func closes both; a running stopwatch stays running in the store.
func (r *Runner) openStopwatch() (*timer.Stopwatch, func(), error) {
	s, closer, err := r.openStore(r.config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", r.config.Storage.Driver, err)
	}

	sw, err := timer.New(timer.Options{
		Repository: store.NewTimerRepository(s),
		Clock:      r.clock,
		Scheduler:  r.scheduler,
		Logger:     r.logger,
	})
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	return sw, func() {
		sw.Close()
		if err := closer.Close(); err != nil {
			r.logger.Warn("failed to close store", "error", err)
		}
	}, nil
}

// formatOptions builds the datetime options for exports and listings from the config.
func (r *Runner) formatOptions() (formatter.Options, error) {
	loc, err := r.config.Export.Location()
	if err != nil {
		return formatter.Options{}, err
	}
	return formatter.Options{Layout: r.config.Export.DatetimeLayout, Location: loc}, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
