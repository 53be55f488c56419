package scan

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerAfterFires(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	done := make(chan struct{})
	s.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never fired")
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Bool
	cancel := s.After(20*time.Millisecond, func() { fired.Store(true) })
	cancel()
	cancel() // idempotent

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestSchedulerCancelAll(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Int32
	for range 5 {
		s.After(20*time.Millisecond, func() { fired.Add(1) })
	}
	s.CancelAll()

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestSchedulerCloseRejectsNewTasks(t *testing.T) {
	s := NewScheduler()
	s.Close()

	var fired atomic.Bool
	cancel := s.After(time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, fired.Load())
}
