// Package models defines the stopwatch's domain records.
//
//   - [Period] : one completed run segment with start, end and accumulated duration
//   - [TimerState] : the durable shadow of the live stopwatch, rewritten after every transition
//   - [Snapshot] : the read model handed to the CLI and TUI after each transition
//
// Durations are integer milliseconds so totals never drift.
package models
