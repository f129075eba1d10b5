package timer

import (
	"sync"
	"time"
)

// TickInterval is the stopwatch resolution.
const TickInterval = time.Second

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real [Clock].
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Scheduler runs fn every d until the returned cancel func is called.
//
// cancel must be safe to call more than once.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// TickerScheduler runs tasks on a [time.Ticker] in their own goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
