// Package store persists the stopwatch between processes.
//
// A [Store] is a plain string key/value interface with three backends:
//   - [MemoryStore] : in-process map, used by tests and the "memory" driver
//   - [FileStore] : a single JSON object file, rewritten atomically
//   - [SQLiteStore] : a kv_store table created by the embedded migrations
//
// [TimerRepository] layers the two logical records on top of any Store: the period list
// ("timer-periods") and the timer state ("timer-state"). Values are JSON and timestamps are
// ISO-8601 strings, so the repository is responsible for rehydrating them into [time.Time].
package store
