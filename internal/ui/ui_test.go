package ui

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/shared"
	"github.com/desertthunder/boletim/internal/store"
	th "github.com/desertthunder/boletim/internal/testing"
	"github.com/desertthunder/boletim/internal/timer"
)

type harness struct {
	m       *Model
	sw      *timer.Stopwatch
	clock   *th.FakeClock
	sched   *th.ManualScheduler
	exports [][]models.Period
	copied  []string
	failing error
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		clock: th.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)),
		sched: th.NewManualScheduler(),
	}
	sw, err := timer.New(timer.Options{
		Repository: store.NewTimerRepository(store.NewMemoryStore()),
		Clock:      h.clock,
		Scheduler:  h.sched,
		Logger:     shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("timer.New() error = %v", err)
	}
	h.sw = sw

	ctx, cancel := context.WithCancel(context.Background())
	h.m = NewModel(ctx, sw, Options{
		Format: formatter.Options{Location: time.UTC},
		Export: func(periods []models.Period) (string, error) {
			if h.failing != nil {
				return "", h.failing
			}
			h.exports = append(h.exports, periods)
			return "/tmp/boletim-test.txt", nil
		},
		Copy: func(s string) error {
			if h.failing != nil {
				return h.failing
			}
			h.copied = append(h.copied, s)
			return nil
		},
	})

	t.Cleanup(func() {
		h.m.Close()
		cancel()
		sw.Close()
	})
	return h
}

func keyPress(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and, when it produces one of the model's messages, feeds it back.
func (h *harness) press(t *testing.T, s string) {
	t.Helper()

	_, cmd := h.m.Update(keyPress(s))
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		h.m.Update(msg)
	}
}

// sequence runs cmd and, if it yields a command sequence, each command in it, collecting the messages.
func sequence(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()

	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Slice {
		return []tea.Msg{msg}
	}

	var msgs []tea.Msg
	for i := range v.Len() {
		if c, ok := v.Index(i).Interface().(tea.Cmd); ok && c != nil {
			msgs = append(msgs, c())
		}
	}
	return msgs
}

// assertQuits checks that cmd restores the window title to title and then quits.
func assertQuits(t *testing.T, cmd tea.Cmd, title string) {
	t.Helper()

	var restored, quits bool
	for _, msg := range sequence(t, cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			quits = true
			continue
		}
		if v := reflect.ValueOf(msg); v.Kind() == reflect.String && v.String() == title {
			restored = true
		}
	}
	if !restored {
		t.Errorf("expected window title reset to %q", title)
	}
	if !quits {
		t.Error("expected quit")
	}
}

// drain applies every pending stopwatch update to the model.
func (h *harness) drain() int {
	n := 0
	for {
		select {
		case snap := <-h.m.updates:
			h.m.Update(snapshotMsg(snap))
			n++
		default:
			return n
		}
	}
}

func (h *harness) advance(n int) {
	for range n {
		h.clock.Advance(time.Second)
		h.sched.Fire()
	}
}

func TestModel(t *testing.T) {
	t.Run("initial view", func(t *testing.T) {
		h := newHarness(t)
		view := h.m.View()

		for _, want := range []string{DefaultTitle, "00:00:00", emptyPeriods, "Tempo Total"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}
		if h.m.windowTitle() != "00:00:00 - Cronômetro" {
			t.Errorf("unexpected window title %q", h.m.windowTitle())
		}
	})

	t.Run("start and pause with keys", func(t *testing.T) {
		h := newHarness(t)

		h.press(t, "s")
		if !h.sw.IsRunning() {
			t.Fatal("expected stopwatch running after s")
		}
		h.drain()
		if !h.m.snap.IsRunning {
			t.Error("expected model to receive running snapshot")
		}

		h.advance(3)
		if n := h.drain(); n != 3 {
			t.Errorf("expected 3 tick updates, got %d", n)
		}
		if !strings.Contains(h.m.View(), "00:00:03") {
			t.Error("expected clock to show 00:00:03")
		}
		if h.m.windowTitle() != "00:00:03 - Cronômetro" {
			t.Errorf("unexpected window title %q", h.m.windowTitle())
		}

		h.press(t, " ")
		h.drain()
		if h.sw.IsRunning() {
			t.Error("expected stopwatch paused after space")
		}
		if len(h.m.snap.Periods) != 1 {
			t.Fatalf("expected 1 period in model, got %d", len(h.m.snap.Periods))
		}
		if !strings.Contains(h.m.viewport.View(), "00:00:03") {
			t.Error("expected period list to show the period duration")
		}
	})

	t.Run("stop resets clock", func(t *testing.T) {
		h := newHarness(t)

		h.press(t, "s")
		h.advance(2)
		h.press(t, "x")
		h.drain()

		if h.m.snap.Elapsed != 0 || h.m.snap.Total != 2000 {
			t.Errorf("expected reset clock with 2000ms total, got %+v", h.m.snap)
		}
	})
}

func TestModelPeriodActions(t *testing.T) {
	t.Run("disabled without periods", func(t *testing.T) {
		h := newHarness(t)

		h.press(t, "e")
		h.press(t, "c")
		h.press(t, "d")

		if len(h.exports) != 0 || len(h.copied) != 0 {
			t.Error("expected export and copy to be disabled")
		}
		if h.m.view != TimerView {
			t.Error("expected clear to be disabled")
		}
	})

	withPeriod := func(t *testing.T) *harness {
		h := newHarness(t)
		h.press(t, "s")
		h.advance(3)
		h.press(t, "s")
		h.drain()
		return h
	}

	t.Run("export", func(t *testing.T) {
		h := withPeriod(t)

		h.press(t, "e")
		if len(h.exports) != 1 || len(h.exports[0]) != 1 {
			t.Fatalf("expected one export of one period, got %v", h.exports)
		}
		if !strings.Contains(h.m.View(), "/tmp/boletim-test.txt") {
			t.Error("expected export path in status line")
		}
	})

	t.Run("copy", func(t *testing.T) {
		h := withPeriod(t)

		h.press(t, "c")
		if len(h.copied) != 1 {
			t.Fatalf("expected one copy, got %d", len(h.copied))
		}
		if !strings.Contains(h.copied[0], "Período 1:") || !strings.HasSuffix(h.copied[0], "Tempo Total: 00:00:03") {
			t.Errorf("unexpected summary %q", h.copied[0])
		}
	})

	t.Run("errors are shown", func(t *testing.T) {
		h := withPeriod(t)
		h.failing = errors.New("disk full")

		h.press(t, "e")
		if !strings.Contains(h.m.View(), "disk full") {
			t.Error("expected export error in view")
		}
		if h.m.Err() == nil {
			t.Error("expected Err() to report the failure")
		}

		h.failing = nil
		h.press(t, "c")
		if h.m.Err() != nil {
			t.Errorf("expected error cleared by a successful action, got %v", h.m.Err())
		}
	})

	t.Run("clear declined", func(t *testing.T) {
		h := withPeriod(t)

		h.press(t, "d")
		if h.m.view != ConfirmView {
			t.Fatal("expected confirm view")
		}
		if !strings.Contains(h.m.View(), "Limpar todos os períodos?") {
			t.Error("expected confirmation prompt")
		}

		h.press(t, "n")
		if h.m.view != TimerView {
			t.Error("expected to return to timer view")
		}
		if len(h.sw.Periods()) != 1 {
			t.Error("declining should keep periods")
		}
	})

	for _, confirm := range []string{"s", "y"} {
		t.Run("clear confirmed with "+confirm, func(t *testing.T) {
			h := withPeriod(t)

			h.press(t, "d")
			h.press(t, confirm)
			h.drain()

			if len(h.sw.Periods()) != 0 || len(h.m.snap.Periods) != 0 {
				t.Error("expected periods cleared")
			}
			if h.sw.IsRunning() {
				t.Error("confirming should not start the stopwatch")
			}
			if h.m.keys.export.Enabled() {
				t.Error("expected export disabled after clear")
			}
			if !strings.Contains(h.m.View(), emptyPeriods) {
				t.Error("expected empty period list")
			}
		})
	}

	t.Run("confirm prompt offers s", func(t *testing.T) {
		h := withPeriod(t)

		h.press(t, "d")
		if !strings.Contains(h.m.View(), "s sim") {
			t.Errorf("expected s in confirm help, got %q", h.m.View())
		}
	})

	t.Run("space ignored while confirming", func(t *testing.T) {
		h := withPeriod(t)

		h.press(t, "d")
		h.press(t, " ")
		if h.sw.IsRunning() {
			t.Error("confirm view should not start the stopwatch")
		}
		if h.m.view != ConfirmView || len(h.sw.Periods()) != 1 {
			t.Error("expected to stay in the confirm view with periods intact")
		}
	})

	t.Run("ctrl+c while confirming quits without clearing", func(t *testing.T) {
		h := withPeriod(t)

		h.press(t, "d")
		_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		assertQuits(t, cmd, DefaultTitle)

		if len(h.sw.Periods()) != 1 {
			t.Error("quitting should keep periods")
		}
	})
}

func TestModelPlumbing(t *testing.T) {
	t.Run("observer never blocks", func(t *testing.T) {
		h := newHarness(t)

		done := make(chan struct{})
		go func() {
			for range 100 {
				h.m.sendSnapshot(models.Snapshot{})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sendSnapshot blocked on a full buffer")
		}
	})

	t.Run("cancel quits and restores the title", func(t *testing.T) {
		h := newHarness(t)
		ctx, cancel := context.WithCancel(context.Background())
		h.m.ctx = ctx
		cancel()

		msg, ok := h.m.waitForSnapshot()().(Msg)
		if !ok || msg.kind != MsgShutdown {
			t.Fatalf("expected shutdown msg after cancel, got %v", msg)
		}
		_, cmd := h.m.Update(msg)
		assertQuits(t, cmd, DefaultTitle)
	})

	t.Run("close unsubscribes", func(t *testing.T) {
		h := newHarness(t)
		h.m.Close()

		h.sw.Start()
		if n := len(h.m.updates); n != 0 {
			t.Errorf("expected no updates after Close, got %d", n)
		}
	})

	t.Run("window size", func(t *testing.T) {
		h := newHarness(t)
		h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

		if h.m.viewport.Width != 96 || h.m.viewport.Height != 28 {
			t.Errorf("unexpected viewport size %dx%d", h.m.viewport.Width, h.m.viewport.Height)
		}
	})

	t.Run("quit", func(t *testing.T) {
		for _, k := range []tea.KeyMsg{keyPress("q"), {Type: tea.KeyCtrlC}} {
			t.Run(k.String(), func(t *testing.T) {
				h := newHarness(t)
				_, cmd := h.m.Update(k)
				assertQuits(t, cmd, DefaultTitle)
			})
		}
	})
}

func TestRenderPeriods(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	periods := []models.Period{
		{StartTime: start, EndTime: start.Add(3 * time.Second), Duration: 3000},
		{StartTime: start.Add(time.Minute), EndTime: start.Add(time.Hour), Duration: 3_540_000},
	}

	out := renderPeriods(periods, formatter.Options{Location: time.UTC})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "01/05/2024, 09:00:00") || !strings.Contains(lines[0], "00:00:03") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "00:59:00") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}
