package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rambollwong/rainbowsock/core/ioerr"
	"github.com/stretchr/testify/require"
)

func TestOperationsWithoutLock(t *testing.T) {
	var m Mutex
	require.ErrorIs(t, m.Unlock(), ErrNotLocked)
	require.ErrorIs(t, m.Wait(), ErrNotLocked)
	require.ErrorIs(t, m.WaitTimeout(10*time.Millisecond), ErrNotLocked)
	require.ErrorIs(t, m.Notify(), ErrNotLocked)
	require.ErrorIs(t, m.NotifyAll(), ErrNotLocked)
	require.True(t, errors.Is(m.Unlock(), ioerr.ErrState))
}

func TestWaitTimeoutReacquires(t *testing.T) {
	var m Mutex
	m.Lock()
	start := time.Now()
	require.NoError(t, m.WaitTimeout(50*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.True(t, m.Locked())
	require.False(t, m.TryLock())
	require.NoError(t, m.Unlock())
	require.True(t, m.TryLock())
	require.NoError(t, m.Unlock())
}

func TestNotifyWithoutWaiters(t *testing.T) {
	var m Mutex
	m.Lock()
	require.NoError(t, m.Notify())
	require.NoError(t, m.NotifyAll())
	require.NoError(t, m.Unlock())
}

func TestNotifyWakesWaiter(t *testing.T) {
	var (
		m     Mutex
		ready bool
		done  = make(chan error, 1)
	)
	go func() {
		m.Lock()
		for !ready {
			if err := m.Wait(); err != nil {
				done <- err
				return
			}
		}
		done <- m.Unlock()
	}()

	time.Sleep(20 * time.Millisecond)
	m.Lock()
	ready = true
	require.NoError(t, m.Notify())
	require.NoError(t, m.Unlock())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken up")
	}
}

func TestNotifyAllWakesEveryWaiter(t *testing.T) {
	const waiters = 5
	var (
		m       Mutex
		release bool
		entered int
		wg      sync.WaitGroup
	)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			entered++
			for !release {
				_ = m.WaitTimeout(time.Second)
			}
			_ = m.Unlock()
		}()
	}

	require.Eventually(t, func() bool {
		m.Lock()
		defer func() { _ = m.Unlock() }()
		return entered == waiters
	}, 2*time.Second, 5*time.Millisecond)

	m.Lock()
	release = true
	require.NoError(t, m.NotifyAll())
	require.NoError(t, m.Unlock())

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("NotifyAll did not wake all waiters")
	}
}
