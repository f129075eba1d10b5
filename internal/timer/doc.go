// Package timer implements the stopwatch state machine.
//
// # States
//
// A [Stopwatch] is [Idle], [Running] or [Paused]:
//
//  1. [Stopwatch.Start] : Idle/Paused → Running. Records the segment start; no period yet.
//  2. [Stopwatch.Pause] : Running → Paused. Appends a [models.Period] and keeps the elapsed value.
//  3. [Stopwatch.Stop] : pause, then reset the elapsed value to zero.
//  4. [Stopwatch.Clear] : any → Idle. Drops every period and resets the persisted record.
//
// While running, a [Scheduler] task adds exactly one second to the elapsed value per tick.
// Leaving Running cancels the task, and ticks from a cancelled task are discarded by generation.
//
// # Persistence
//
// Every transition, ticks included, rewrites the [models.TimerState] mirror through the
// [Repository]. [New] rebuilds the stopwatch from that mirror: a running record resumes with
// elapsed = lastRecordedTime + (now - currentStartTime), bridging any time the process was down.
//
// Several processes may share one store. Before each tick and each Start, Pause or Stop the
// stopwatch re-reads the records; if they differ from what it last read or wrote, another
// process changed them and they are adopted instead of being overwritten.
//
// # Observers
//
// [Stopwatch.Subscribe] registers callbacks that receive a [models.Snapshot] after each
// transition. Callbacks run outside the stopwatch lock and must not block.
package timer
