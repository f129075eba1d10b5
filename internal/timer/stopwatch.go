package timer

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/boletim/internal/formatter"
	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/shared"
	"golang.org/x/time/rate"
)

// ErrClosed is returned by transitions on a closed [Stopwatch].
var ErrClosed = errors.New("stopwatch closed")

// State is the stopwatch's position in its state machine.
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return ""
	}
}

// StateOf derives the state machine position from a snapshot.
func StateOf(snap models.Snapshot) State {
	switch {
	case snap.IsRunning:
		return Running
	case snap.Elapsed > 0:
		return Paused
	default:
		return Idle
	}
}

// Repository persists the period list and the timer state mirror.
type Repository interface {
	LoadPeriods() ([]models.Period, error)
	SavePeriods([]models.Period) error
	LoadState() (models.TimerState, error)
	SaveState(models.TimerState) error
}

// Observer receives the stopwatch state after each transition.
type Observer func(models.Snapshot)

// Options contains the collaborators of a [Stopwatch].
//
// Repository is required; the rest have real defaults.
type Options struct {
	Repository Repository
	Clock      Clock
	Scheduler  Scheduler
	Logger     *log.Logger
}

// Stopwatch is the timer state machine. It is safe for concurrent use; the tick task and
// user intents are serialised by one mutex.
type Stopwatch struct {
	mu     sync.Mutex
	repo   Repository
	clock  Clock
	sched  Scheduler
	logger *log.Logger

	running      bool
	elapsed      int64
	segmentStart *time.Time
	segmentBase  int64 // elapsed value when the current segment began
	periods      []models.Period

	cancelTick func()
	generation uint64
	closed     bool

	// last records read from or written to the repository by this process
	persisted    *models.TimerState
	savedPeriods int

	observers  map[int]Observer
	nextObsID  int
	tickLogger rate.Sometimes
}

// New rebuilds a [Stopwatch] from the persisted records and resumes ticking if a run was in progress.
//
// Unreadable records are logged and replaced by the initial values rather than failing startup.
func New(opts Options) (*Stopwatch, error) {
	if opts.Repository == nil {
		return nil, errors.New("timer: nil repository")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	s := &Stopwatch{
		repo:       opts.Repository,
		clock:      opts.Clock,
		sched:      opts.Scheduler,
		logger:     shared.WithLogger(opts.Logger, "component", "stopwatch"),
		observers:  make(map[int]Observer),
		tickLogger: rate.Sometimes{First: 1, Interval: time.Minute},
	}

	periods, err := s.repo.LoadPeriods()
	if err != nil {
		s.logger.Warn("discarding unreadable periods", "error", err)
		periods = []models.Period{}
	}
	s.periods = periods
	s.savedPeriods = len(periods)

	repair := false
	state, err := s.repo.LoadState()
	if err != nil {
		s.logger.Warn("discarding unreadable timer state", "error", err)
		state = models.InitialTimerState()
		repair = true
	}
	if state.LastRecordedTime < 0 {
		state.LastRecordedTime = 0
		repair = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !state.Consistent() {
		s.logger.Warn("timer state running flag and start disagree; treating as paused")
		repair = true
	}
	s.restoreLocked(state)
	if s.running {
		s.logger.Info("resumed running stopwatch", "since", *s.segmentStart, "elapsed", formatter.FormatTime(s.elapsed))
	}

	if !repair {
		s.persisted = &state
	} else if err := s.saveStateLocked(); err != nil {
		s.logger.Error("failed to repair timer state", "error", err)
	}
	return s, nil
}

// Start begins a new segment. Starting a running stopwatch is a no-op.
func (s *Stopwatch) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	adopted := s.syncLocked()
	if s.running {
		snap, obs := s.snapshotLocked(), s.observersLocked()
		s.mu.Unlock()
		if adopted {
			notify(obs, snap)
		}
		return nil
	}

	now := s.clock.Now()
	s.running = true
	s.segmentStart = &now
	s.segmentBase = s.elapsed
	s.scheduleLocked()

	err := s.saveStateLocked()
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	s.logger.Debug("started", "at", now, "elapsed", formatter.FormatTime(snap.Elapsed))
	notify(obs, snap)
	return err
}

// Pause ends the current segment, recording it as a period. The elapsed value is kept.
//
// Pausing without a segment in progress records nothing.
func (s *Stopwatch) Pause() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.syncLocked()
	err := s.endSegmentLocked()
	s.segmentBase = s.elapsed
	err = errors.Join(err, s.saveStateLocked())
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	s.logger.Debug("paused", "elapsed", formatter.FormatTime(snap.Elapsed), "periods", len(snap.Periods))
	notify(obs, snap)
	return err
}

// Stop pauses and resets the elapsed value to zero.
func (s *Stopwatch) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.syncLocked()
	err := s.endSegmentLocked()
	s.elapsed = 0
	s.segmentBase = 0
	err = errors.Join(err, s.saveStateLocked())
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	s.logger.Debug("stopped", "periods", len(snap.Periods), "total", formatter.FormatTime(snap.Total))
	notify(obs, snap)
	return err
}

// Clear drops every period and resets the stopwatch and its persisted record.
//
// Irreversible; callers confirm with the user first.
func (s *Stopwatch) Clear() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.cancelTickLocked()
	dropped := len(s.periods)
	s.periods = []models.Period{}
	s.running = false
	s.elapsed = 0
	s.segmentStart = nil
	s.segmentBase = 0

	periodsErr := s.repo.SavePeriods(s.periods)
	if periodsErr == nil {
		s.savedPeriods = 0
	}
	initial := models.InitialTimerState()
	stateErr := s.repo.SaveState(initial)
	if stateErr == nil {
		s.persisted = &initial
	}
	err := errors.Join(periodsErr, stateErr)
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	s.logger.Info("cleared periods", "count", dropped)
	notify(obs, snap)
	return err
}

// Close cancels the tick task. The persisted record is left as is, so a running
// stopwatch resumes by wall clock the next time it is loaded.
func (s *Stopwatch) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTickLocked()
	s.closed = true
	return nil
}

// Subscribe registers o to receive a snapshot after each transition.
func (s *Stopwatch) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextObsID++
	id := s.nextObsID
	s.observers[id] = o

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Snapshot returns the current state for rendering.
func (s *Stopwatch) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State reports the state machine position.
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateOf(models.Snapshot{IsRunning: s.running, Elapsed: s.elapsed})
}

// Elapsed returns the live elapsed value in milliseconds.
func (s *Stopwatch) Elapsed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// IsRunning reports whether a segment is in progress.
func (s *Stopwatch) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Periods returns a copy of the recorded periods.
func (s *Stopwatch) Periods() []models.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Period(nil), s.periods...)
}

// TotalTime returns the sum of all period durations in milliseconds.
func (s *Stopwatch) TotalTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.TotalDuration(s.periods)
}

// tick advances the elapsed value by one interval if gen is still the live schedule.
//
// If another process changed the records since the last write, their state is adopted
// instead of being overwritten.
func (s *Stopwatch) tick(gen uint64) {
	s.mu.Lock()
	if !s.running || s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	if s.syncLocked() {
		snap, obs := s.snapshotLocked(), s.observersLocked()
		s.mu.Unlock()
		notify(obs, snap)
		return
	}

	s.elapsed += TickInterval.Milliseconds()
	if err := s.saveStateLocked(); err != nil {
		s.logger.Error("failed to persist tick", "error", err)
	}
	snap, obs := s.snapshotLocked(), s.observersLocked()
	s.mu.Unlock()

	s.tickLogger.Do(func() {
		s.logger.Debug("tick", "elapsed", formatter.FormatTime(snap.Elapsed))
	})
	notify(obs, snap)
}

// endSegmentLocked stops ticking and, if a segment was in progress, appends and saves its period.
func (s *Stopwatch) endSegmentLocked() error {
	s.cancelTickLocked()
	s.running = false

	if s.segmentStart == nil {
		return nil
	}

	start := *s.segmentStart
	end := s.clock.Now()
	if end.Before(start) {
		end = start
	}
	s.segmentStart = nil

	duration := s.elapsed - s.segmentBase
	if duration < 0 {
		duration = 0
	}
	s.periods = append(s.periods, models.Period{StartTime: start, EndTime: end, Duration: duration})

	if err := s.repo.SavePeriods(s.periods); err != nil {
		return err
	}
	s.savedPeriods = len(s.periods)
	return nil
}

// syncLocked adopts the stored records when they differ from what this process last read
// or wrote, which means another process changed them. It reports whether it did.
func (s *Stopwatch) syncLocked() bool {
	if s.persisted == nil {
		return false
	}
	state, err := s.repo.LoadState()
	if err != nil {
		s.logger.Debug("skipping sync", "error", err)
		return false
	}
	periods, err := s.repo.LoadPeriods()
	if err != nil {
		s.logger.Debug("skipping sync", "error", err)
		return false
	}
	if sameState(state, *s.persisted) && len(periods) == s.savedPeriods {
		return false
	}

	s.logger.Info("stopwatch changed by another process", "running", state.IsRunning, "periods", len(periods))
	s.periods = periods
	s.savedPeriods = len(periods)
	s.restoreLocked(state)
	s.persisted = &state
	return true
}

// restoreLocked replaces the in-memory clock with a persisted state. A running state
// resumes by wall clock and ticking is rescheduled; anything else is treated as paused.
func (s *Stopwatch) restoreLocked(state models.TimerState) {
	s.cancelTickLocked()
	if state.IsRunning && state.CurrentStartTime != nil {
		start := *state.CurrentStartTime
		s.running = true
		s.segmentStart = &start
		s.segmentBase = state.LastRecordedTime
		s.elapsed = state.LastRecordedTime + max(s.clock.Now().Sub(start).Milliseconds(), 0)
		s.scheduleLocked()
		return
	}
	s.running = false
	s.segmentStart = nil
	s.elapsed = state.LastRecordedTime
	s.segmentBase = s.elapsed
}

func (s *Stopwatch) scheduleLocked() {
	s.cancelTickLocked()
	s.generation++
	gen := s.generation
	s.cancelTick = s.sched.Every(TickInterval, func() { s.tick(gen) })
}

func (s *Stopwatch) cancelTickLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	s.generation++
}

func (s *Stopwatch) saveStateLocked() error {
	state := models.TimerState{IsRunning: s.running, LastRecordedTime: s.elapsed}
	if s.running && s.segmentStart != nil {
		start := *s.segmentStart
		state.CurrentStartTime = &start
		state.LastRecordedTime = s.segmentBase
	}
	if err := s.repo.SaveState(state); err != nil {
		return err
	}
	s.persisted = &state
	return nil
}

// sameState compares start times at millisecond precision, the resolution they are stored at.
func sameState(a, b models.TimerState) bool {
	if a.IsRunning != b.IsRunning || a.LastRecordedTime != b.LastRecordedTime {
		return false
	}
	if a.CurrentStartTime == nil || b.CurrentStartTime == nil {
		return a.CurrentStartTime == b.CurrentStartTime
	}
	return a.CurrentStartTime.UnixMilli() == b.CurrentStartTime.UnixMilli()
}

func (s *Stopwatch) snapshotLocked() models.Snapshot {
	parts := formatter.CalculateTime(s.elapsed)
	snap := models.Snapshot{
		Elapsed:   s.elapsed,
		Hours:     parts.Hours,
		Minutes:   parts.Minutes,
		Seconds:   parts.Seconds,
		IsRunning: s.running,
		Periods:   append([]models.Period{}, s.periods...),
		Total:     models.TotalDuration(s.periods),
	}
	if s.segmentStart != nil {
		start := *s.segmentStart
		snap.SegmentStart = &start
	}
	return snap
}

func (s *Stopwatch) observersLocked() []Observer {
	obs := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	return obs
}

func notify(obs []Observer, snap models.Snapshot) {
	for _, o := range obs {
		o(snap)
	}
}
