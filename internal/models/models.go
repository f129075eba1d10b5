package models

import "time"

// Period is an immutable record of one run segment, appended when the segment is paused or stopped.
//
// Duration is the elapsed value accumulated by ticks during the segment, in milliseconds.
// It is not recomputed from EndTime - StartTime, so the two can differ by up to a tick.
type Period struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Duration  int64     `json:"duration"`
}

// TimerState is the persisted mirror of the stopwatch.
//
// CurrentStartTime is non-nil iff IsRunning. While running, LastRecordedTime holds the
// milliseconds accumulated before the current segment began; otherwise it holds the
// live elapsed value.
type TimerState struct {
	IsRunning        bool
	CurrentStartTime *time.Time
	LastRecordedTime int64
}

// InitialTimerState returns the state written by a fresh install or a clear.
func InitialTimerState() TimerState {
	return TimerState{}
}

// Consistent reports whether the running flag and segment start agree.
func (s TimerState) Consistent() bool {
	return s.IsRunning == (s.CurrentStartTime != nil)
}

// TotalDuration sums the durations of periods in milliseconds.
func TotalDuration(periods []Period) int64 {
	var total int64
	for _, p := range periods {
		total += p.Duration
	}
	return total
}

// Snapshot is the state the presentation layer renders.
type Snapshot struct {
	Elapsed      int64      `json:"elapsed"`
	Hours        int64      `json:"hours"`
	Minutes      int64      `json:"minutes"`
	Seconds      int64      `json:"seconds"`
	IsRunning    bool       `json:"isRunning"`
	SegmentStart *time.Time `json:"segmentStart,omitempty"`
	Periods      []Period   `json:"periods"`
	Total        int64      `json:"total"`
}
