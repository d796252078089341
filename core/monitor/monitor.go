// Package monitor provides a mutual-exclusion lock paired with a wait/notify condition.
package monitor

import (
	"sync"
	"time"

	"github.com/rambollwong/rainbowsock/core/ioerr"
)

// ErrNotLocked is returned when Unlock, Wait or Notify is called on a monitor that is not locked.
// It matches ioerr.ErrState.
var ErrNotLocked = ioerr.New(ioerr.KindState, "monitor", "monitor is not locked")

// Monitor is the coordination contract exposed by sockets, streams and writers.
type Monitor interface {
	// Lock blocks until the caller acquires exclusive ownership.
	Lock()
	// Unlock releases ownership.
	Unlock() error
	// Wait releases the lock, suspends until notified and re-acquires the lock before returning.
	Wait() error
	// WaitTimeout is like Wait but also resumes once d has elapsed. d <= 0 waits without limit.
	WaitTimeout(d time.Duration) error
	// Notify wakes at most one waiter.
	Notify() error
	// NotifyAll wakes every waiter.
	NotifyAll() error
}

var _ Monitor = (*Mutex)(nil)

// Mutex is a non re-entrant Monitor. Go has no goroutine identity, so ownership is judged by the
// lock state: a goroutine must only call Unlock, Wait and Notify while it holds the lock it took.
// The zero value is an unlocked monitor. A Mutex must not be copied after first use.
type Mutex struct {
	once sync.Once
	sem  chan struct{}

	mu      sync.Mutex
	waiters []chan struct{}
}

func (m *Mutex) init() {
	m.once.Do(func() {
		m.sem = make(chan struct{}, 1)
	})
}

// Lock blocks until the monitor is acquired.
func (m *Mutex) Lock() {
	m.init()
	m.sem <- struct{}{}
}

// TryLock acquires the monitor if it is free and reports whether it did.
func (m *Mutex) TryLock() bool {
	m.init()
	select {
	case m.sem <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the monitor.
func (m *Mutex) Unlock() error {
	m.init()
	select {
	case <-m.sem:
		return nil
	default:
		return ErrNotLocked
	}
}

// Locked reports whether the monitor is currently held.
func (m *Mutex) Locked() bool {
	m.init()
	return len(m.sem) == 1
}

// Wait releases the lock and suspends until Notify or NotifyAll wakes the caller.
func (m *Mutex) Wait() error {
	return m.WaitTimeout(0)
}

// WaitTimeout releases the lock and suspends until notified or until d has elapsed.
// The lock is held again when it returns, whichever happened.
func (m *Mutex) WaitTimeout(d time.Duration) error {
	if !m.Locked() {
		return ErrNotLocked
	}
	w := make(chan struct{})
	m.mu.Lock()
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	<-m.sem

	if d <= 0 {
		<-w
	} else {
		timer := time.NewTimer(d)
		select {
		case <-w:
			timer.Stop()
		case <-timer.C:
			m.removeWaiter(w)
		}
	}

	m.sem <- struct{}{}
	return nil
}

func (m *Mutex) removeWaiter(w chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, waiter := range m.waiters {
		if waiter == w {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return
		}
	}
}

// Notify wakes the longest waiting goroutine, if any.
func (m *Mutex) Notify() error {
	if !m.Locked() {
		return ErrNotLocked
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.waiters) == 0 {
		return nil
	}
	close(m.waiters[0])
	m.waiters = m.waiters[1:]
	return nil
}

// NotifyAll wakes every waiting goroutine.
func (m *Mutex) NotifyAll() error {
	if !m.Locked() {
		return ErrNotLocked
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.waiters {
		close(w)
	}
	m.waiters = nil
	return nil
}
