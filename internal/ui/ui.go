package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/shared"
	"github.com/desertthunder/boletim/internal/timer"
)

// DefaultTitle is the window title suffix and the title restored on quit.
const DefaultTitle = "Cronômetro"

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TimerView ViewState = iota
	ConfirmView
)

// Stopwatch is the part of [timer.Stopwatch] the TUI drives.
type Stopwatch interface {
	Start() error
	Pause() error
	Stop() error
	Clear() error
	Snapshot() models.Snapshot
	Subscribe(timer.Observer) (unsubscribe func())
}

// ExportFunc writes a boletim for periods and returns the file path.
type ExportFunc func(periods []models.Period) (string, error)

// Options contains the TUI collaborators. Zero values fall back to defaults.
type Options struct {
	Title  string
	Format formatter.Options
	Export ExportFunc
	Copy   func(string) error
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	sw          Stopwatch
	snap        models.Snapshot
	updates     chan models.Snapshot
	unsubscribe func()
	title       string
	format      formatter.Options
	export      ExportFunc
	copy        func(string) error
	width       int
	height      int
	viewport    viewport.Model
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model over sw and subscribes to its transitions.
//
// Call [Model.Close] once the program exits.
func NewModel(ctx context.Context, sw Stopwatch, opts Options) *Model {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Export == nil {
		opts.Export = func([]models.Period) (string, error) { return "", shared.ErrNotImplemented }
	}

	m := &Model{
		ctx:      ctx,
		view:     TimerView,
		sw:       sw,
		updates:  make(chan models.Snapshot, 16),
		title:    opts.Title,
		format:   opts.Format,
		export:   opts.Export,
		copy:     opts.Copy,
		viewport: viewport.New(60, 8),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.unsubscribe = sw.Subscribe(m.sendSnapshot)
	m.setSnapshot(sw.Snapshot())
	return m
}

// sendSnapshot is the stopwatch observer. It never blocks the stopwatch: when the
// buffer is full the update is dropped and the next one carries the latest state.
func (m *Model) sendSnapshot(snap models.Snapshot) {
	select {
	case m.updates <- snap:
	default:
	}
}

// Close stops receiving stopwatch updates.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init starts listening for stopwatch updates and sets the window title.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), tea.SetWindowTitle(m.windowTitle()))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 20)
		m.viewport.Height = max(msg.Height-12, 3)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		default:
			return m.handleTimerKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.setSnapshot(msg.data.(models.Snapshot))
		return m, tea.Batch(m.waitForSnapshot(), tea.SetWindowTitle(m.windowTitle()))

	case MsgShutdown:
		return m, m.quit()

	case MsgActionDone:
		res := msg.data.(actionResult)
		m.err = res.err
		if res.err == nil && res.action == "clear" {
			m.status = "Períodos apagados."
		}
		return m, nil

	case MsgExported:
		res := msg.data.(exportResult)
		m.err = res.err
		if res.err == nil {
			m.status = fmt.Sprintf("Exportado para %s", res.path)
		}
		return m, nil

	case MsgCopied:
		err, _ := msg.data.(error)
		m.err = err
		if err == nil {
			m.status = "Resumo copiado."
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ConfirmView:
		return m.renderConfirm()
	default:
		return m.renderTimer()
	}
}

func (m *Model) handleTimerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.toggle):
		if m.snap.IsRunning {
			return m, m.action("pause", m.sw.Pause)
		}
		return m, m.action("start", m.sw.Start)
	case key.Matches(msg, m.keys.stop):
		return m, m.action("stop", m.sw.Stop)
	case key.Matches(msg, m.keys.export):
		return m, m.exportPeriods()
	case key.Matches(msg, m.keys.copy):
		return m, m.copySummary()
	case key.Matches(msg, m.keys.clear):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = TimerView
		return m, m.action("clear", m.sw.Clear)
	case key.Matches(msg, m.keys.no):
		m.view = TimerView
		return m, nil
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	}
	return m, nil
}

// quit restores the window title before exiting.
func (m *Model) quit() tea.Cmd {
	return tea.Sequence(tea.SetWindowTitle(m.title), tea.Quit)
}

// setSnapshot stores snap, refreshes the period list and follows it to the newest period when it grew or shrank.
func (m *Model) setSnapshot(snap models.Snapshot) {
	changed := len(snap.Periods) != len(m.snap.Periods)
	m.snap = snap
	m.keys.setHasPeriods(len(snap.Periods) > 0)

	m.viewport.SetContent(renderPeriods(snap.Periods, m.format))
	if changed {
		m.viewport.GotoBottom()
	}
}

func (m *Model) windowTitle() string {
	return fmt.Sprintf("%s - %s", formatter.FormatTime(m.snap.Elapsed), m.title)
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-m.updates:
			return snapshotMsg(snap)
		case <-m.ctx.Done():
			return shutdownMsg()
		}
	}
}

func (m *Model) action(name string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg(name, fn())
	}
}

func (m *Model) exportPeriods() tea.Cmd {
	periods := m.snap.Periods
	return func() tea.Msg {
		if len(periods) == 0 {
			return exportedMsg("", shared.ErrNoPeriods)
		}
		path, err := m.export(periods)
		return exportedMsg(path, err)
	}
}

func (m *Model) copySummary() tea.Cmd {
	summary := string(formatter.ExportToText(m.snap.Periods, m.format))
	return func() tea.Msg {
		if err := m.copy(summary); err != nil {
			return copiedMsg(fmt.Errorf("failed to copy summary: %w", err))
		}
		return copiedMsg(nil)
	}
}

func (m *Model) renderTimer() string {
	title := styles.title.Render(m.title)

	clockStyle := styles.clock
	state := "Parado"
	switch {
	case m.snap.IsRunning:
		clockStyle = styles.running
		state = "Em andamento"
	case m.snap.Elapsed > 0:
		state = "Pausado"
	}
	clock := clockStyle.Render(formatter.FormatTime(m.snap.Elapsed))

	periods := fmt.Sprintf("Períodos (%d)", len(m.snap.Periods))
	total := fmt.Sprintf("Tempo Total: %s", styles.ok.Render(formatter.FormatTime(m.snap.Total)))

	footer := ""
	switch {
	case m.err != nil:
		footer = styles.err.Render(fmt.Sprintf("Erro: %v", m.err))
	case m.status != "":
		footer = styles.ok.Render(m.status)
	}

	return fmt.Sprintf("%s\n%s  %s\n\n%s\n%s\n%s\n%s\n\n%s",
		title,
		clock, styles.help.Render(state),
		periods,
		styles.box.Render(m.viewport.View()),
		total,
		footer,
		m.help.View(m.keys),
	)
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render("Limpar todos os períodos?")
	info := fmt.Sprintf("\n%d período(s) serão apagados. Tempo Total: %s\n",
		len(m.snap.Periods), formatter.FormatTime(m.snap.Total))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

// Err returns the last error shown by the TUI, if any.
func (m *Model) Err() error {
	if m.err == nil || errors.Is(m.err, context.Canceled) {
		return nil
	}
	return m.err
}
