package rotation

import "time"

// Timer is a pending deferred task.
type Timer interface {
	// Stop removes the task. It reports false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs deferred tasks. Tasks may run on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler schedules tasks on the runtime timer wheel.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
