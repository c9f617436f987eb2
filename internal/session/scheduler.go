package session

import "time"

// Scheduler defers a function call. The returned cancel reports whether the
// call was prevented from running.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) (cancel func() bool)
}

type timerScheduler struct{}

// NewTimerScheduler returns the production scheduler backed by time.AfterFunc.
// Tests inject a synchronous fake instead.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(delay time.Duration, fn func()) func() bool {
	return time.AfterFunc(delay, fn).Stop
}
