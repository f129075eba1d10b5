package store

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/boletim/internal/models"
	"github.com/desertthunder/boletim/internal/shared"
)

const (
	PeriodsKey = "timer-periods"
	StateKey   = "timer-state"
)

// periodRecord is the stored form of [models.Period].
type periodRecord struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int64  `json:"duration"`
}

// stateRecord is the stored form of [models.TimerState].
type stateRecord struct {
	IsRunning        bool    `json:"isRunning"`
	CurrentStartTime *string `json:"currentStartTime"`
	LastRecordedTime int64   `json:"lastRecordedTime"`
}

// TimerRepository reads and writes the stopwatch records on a [Store].
type TimerRepository struct {
	store Store
}

// NewTimerRepository creates a new [TimerRepository] over s.
func NewTimerRepository(s Store) *TimerRepository {
	return &TimerRepository{store: s}
}

// LoadPeriods returns the stored periods in recorded order, or an empty slice if none were saved.
func (r *TimerRepository) LoadPeriods() ([]models.Period, error) {
	raw, ok, err := r.store.Get(PeriodsKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []models.Period{}, nil
	}

	var records []periodRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptState, PeriodsKey, err)
	}

	periods := make([]models.Period, 0, len(records))
	for i, rec := range records {
		start, err := shared.ParseISO(rec.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].startTime: %w", PeriodsKey, i, err)
		}
		end, err := shared.ParseISO(rec.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%s[%d].endTime: %w", PeriodsKey, i, err)
		}
		periods = append(periods, models.Period{StartTime: start, EndTime: end, Duration: rec.Duration})
	}
	return periods, nil
}

// SavePeriods replaces the stored period list.
func (r *TimerRepository) SavePeriods(periods []models.Period) error {
	records := make([]periodRecord, len(periods))
	for i, p := range periods {
		records[i] = periodRecord{
			StartTime: shared.FormatISO(p.StartTime),
			EndTime:   shared.FormatISO(p.EndTime),
			Duration:  p.Duration,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode periods: %w", err)
	}
	return r.store.Set(PeriodsKey, string(data))
}

// LoadState returns the stored timer state, or [models.InitialTimerState] if none was saved.
func (r *TimerRepository) LoadState() (models.TimerState, error) {
	raw, ok, err := r.store.Get(StateKey)
	if err != nil {
		return models.InitialTimerState(), err
	}
	if !ok || raw == "" {
		return models.InitialTimerState(), nil
	}

	var rec stateRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.InitialTimerState(), fmt.Errorf("%w: %s: %v", shared.ErrCorruptState, StateKey, err)
	}

	state := models.TimerState{IsRunning: rec.IsRunning, LastRecordedTime: rec.LastRecordedTime}
	if rec.CurrentStartTime != nil {
		start, err := shared.ParseISO(*rec.CurrentStartTime)
		if err != nil {
			return models.InitialTimerState(), fmt.Errorf("%s.currentStartTime: %w", StateKey, err)
		}
		state.CurrentStartTime = &start
	}
	return state, nil
}

// SaveState replaces the stored timer state.
func (r *TimerRepository) SaveState(state models.TimerState) error {
	rec := stateRecord{IsRunning: state.IsRunning, LastRecordedTime: state.LastRecordedTime}
	if state.CurrentStartTime != nil {
		s := shared.FormatISO(*state.CurrentStartTime)
		rec.CurrentStartTime = &s
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode timer state: %w", err)
	}
	return r.store.Set(StateKey, string(data))
}

// Reset writes an empty period list and the initial timer state.
func (r *TimerRepository) Reset() error {
	if err := r.SavePeriods(nil); err != nil {
		return err
	}
	return r.SaveState(models.InitialTimerState())
}
