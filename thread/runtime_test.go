// This file is part of Framegate.
//
// Framegate is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Framegate is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Framegate.  If not, see <https://www.gnu.org/licenses/>.

package thread_test

import (
	"sync"
	"testing"
	"time"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/sched"
	"github.com/framegate/framegate/test"
	"github.com/framegate/framegate/thread"
)

func newRuntime() *thread.Runtime {
	return thread.NewRuntime(sched.NewScheduler(nil))
}

func TestCreateAndJoin(t *testing.T) {
	rt := newRuntime()

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		return 42
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, rt.NumLive(), 1)

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.(int), 42)

	// the record is retired by the join
	test.ExpectEquality(t, rt.NumLive(), 0)

	// a second join finds no thread
	_, err = rt.Join(nil, th)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.NoSuchThread))
}

func TestCreateRequiresFunction(t *testing.T) {
	rt := newRuntime()
	_, err := rt.Create("worker", nil)
	test.ExpectFailure(t, err)
}

func TestDetachMisuse(t *testing.T) {
	rt := newRuntime()

	hold := thread.NewSemaphore(0)
	th, err := rt.Create("worker", func(self *thread.Thread) any {
		hold.Wait(self)
		return nil
	})
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, rt.Detach(th))

	// detaching twice is a misuse error
	err = rt.Detach(th)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.AlreadyDetached))

	// a detached thread cannot be joined
	_, err = rt.Join(nil, th)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.NotJoinable))

	hold.Post()
}

func TestDetachedRetiresOnTermination(t *testing.T) {
	rt := newRuntime()

	hold := thread.NewSemaphore(0)
	th, err := rt.Create("worker", func(self *thread.Thread) any {
		hold.Wait(self)
		return nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, rt.Detach(th))
	test.ExpectEquality(t, rt.NumLive(), 1)

	hold.Post()

	// the record is released by the thread itself on termination
	deadline := time.Now().Add(time.Second)
	for rt.NumLive() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("detached thread record never retired")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTryJoin(t *testing.T) {
	rt := newRuntime()

	hold := thread.NewSemaphore(0)
	th, err := rt.Create("worker", func(self *thread.Thread) any {
		hold.Wait(self)
		return "done"
	})
	test.ExpectSuccess(t, err)

	_, err = rt.TryJoin(nil, th)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.NotTerminated))

	hold.Post()

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.(string), "done")
}

func TestJoinDeadline(t *testing.T) {
	rt := newRuntime()

	hold := thread.NewSemaphore(0)
	th, err := rt.Create("worker", func(self *thread.Thread) any {
		hold.Wait(self)
		return nil
	})
	test.ExpectSuccess(t, err)

	_, err = rt.JoinDeadline(nil, th, time.Now().Add(10*time.Millisecond))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.WaitTimedOut))

	// the timed-out join abandons its claim; a later join succeeds
	hold.Post()
	_, err = rt.Join(nil, th)
	test.ExpectSuccess(t, err)
}

func TestExitRunsCleanups(t *testing.T) {
	rt := newRuntime()

	var mu sync.Mutex
	var order []string

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		self.PushCleanup(func() {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
		})
		self.PushCleanup(func() {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
		})
		self.Exit("early")
		return "unreached"
	})
	test.ExpectSuccess(t, err)

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.(string), "early")

	// handlers run in reverse order of registration
	mu.Lock()
	defer mu.Unlock()
	test.ExpectEquality(t, len(order), 2)
	test.ExpectEquality(t, order[0], "second")
	test.ExpectEquality(t, order[1], "first")
}

func TestPopCleanupWithoutExecute(t *testing.T) {
	rt := newRuntime()

	executed := false
	th, err := rt.Create("worker", func(self *thread.Thread) any {
		self.PushCleanup(func() { executed = true })
		self.PopCleanup(false)
		self.Exit(nil)
		return nil
	})
	test.ExpectSuccess(t, err)

	_, err = rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, executed, false)
}

func TestCancelInSemaphoreWait(t *testing.T) {
	rt := newRuntime()

	var mu sync.Mutex
	cleaned := false

	hold := thread.NewSemaphore(0)
	th, err := rt.Create("worker", func(self *thread.Thread) any {
		self.PushCleanup(func() {
			mu.Lock()
			cleaned = true
			mu.Unlock()
		})
		hold.Wait(self)
		return "unreached"
	})
	test.ExpectSuccess(t, err)

	// let the worker reach the wait before cancelling
	time.Sleep(10 * time.Millisecond)
	test.ExpectSuccess(t, rt.Cancel(th))

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, thread.Canceled)

	mu.Lock()
	defer mu.Unlock()
	test.ExpectEquality(t, cleaned, true)
}

func TestCancelDisabled(t *testing.T) {
	rt := newRuntime()

	ready := thread.NewSemaphore(0)
	hold := thread.NewSemaphore(0)

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		old := self.SetCancelState(thread.CancelDisabled)
		if old != thread.CancelEnabled {
			return "bad initial state"
		}

		ready.Post()

		// the cancel request arrives while disabled. this wait must not
		// unwind
		hold.Wait(self)

		// re-enabling delivers the pending request
		self.SetCancelState(thread.CancelEnabled)
		self.TestCancel()
		return "unreached"
	})
	test.ExpectSuccess(t, err)

	ready.Wait(nil)
	test.ExpectSuccess(t, rt.Cancel(th))
	hold.Post()

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, thread.Canceled)
}

func TestCancelAtFrameGate(t *testing.T) {
	rt := newRuntime()

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		for {
			self.FrameSync()
		}
	})
	test.ExpectSuccess(t, err)

	// let the worker park at the gate before cancelling
	time.Sleep(10 * time.Millisecond)
	test.ExpectSuccess(t, rt.Cancel(th))

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, thread.Canceled)
}

func TestCancelHeldWhileDisabled(t *testing.T) {
	rt := newRuntime()

	sem := thread.NewSemaphore(0)
	ready := thread.NewSemaphore(0)
	hold := thread.NewSemaphore(0)
	progress := make(chan string, 1)

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		ready.Post()

		// wait for the request to be delivered. not passing self: this
		// wait must not itself act on the cancellation
		hold.Wait(nil)

		// with cancellation disabled the delivered request is held back
		// and a timed wait runs to its deadline
		self.SetCancelState(thread.CancelDisabled)
		err := sem.WaitDeadline(self, time.Now().Add(20*time.Millisecond))
		if !curated.Is(err, thread.WaitTimedOut) {
			progress <- "wait did not time out"
		} else {
			progress <- "survived"
		}

		// re-enabling lets the held request act at the next cancellation
		// point
		self.SetCancelState(thread.CancelEnabled)
		self.TestCancel()
		return "unreached"
	})
	test.ExpectSuccess(t, err)

	// the cancel request arrives, and is delivered, while enabled
	ready.Wait(nil)
	test.ExpectSuccess(t, rt.Cancel(th))
	hold.Post()

	test.ExpectEquality(t, <-progress, "survived")

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, thread.Canceled)
}

func TestBusyCancellationPointDoesNotStallFrame(t *testing.T) {
	rt := newRuntime()
	s := rt.Scheduler()

	stop := make(chan struct{})
	th, err := rt.Create("busy", func(self *thread.Thread) any {
		// consume the first frame then spin without returning to the
		// gate, polling for cancellation as a long computation would
		self.FrameSync()
		for {
			select {
			case <-stop:
				return "stopped"
			default:
			}
			self.TestCancel()
		}
	})
	test.ExpectSuccess(t, err)

	// each advance completes because the polling thread suspends at the
	// gate even though it never parks
	for i := 0; i < 3; i++ {
		f, err := s.Advance(input.Snapshot{})
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, f, uint64(i+1))
	}

	close(stop)
	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, "stopped")
}

func TestDeadlineHeldDuringStalledFrame(t *testing.T) {
	rt := newRuntime()
	s := rt.Scheduler()

	// a participant that never parks keeps any admitted frame from
	// completing
	hog := s.Register(false)

	sem := thread.NewSemaphore(0)
	ready := thread.NewSemaphore(0)
	hold := thread.NewSemaphore(0)

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		ready.Post()
		hold.Wait(nil)

		start := time.Now()
		err := sem.WaitDeadline(self, time.Now().Add(50*time.Millisecond))
		if !curated.Is(err, thread.WaitTimedOut) {
			return "wait did not time out"
		}
		if time.Since(start) >= 2*time.Second {
			return "deadline held open by the frame"
		}
		return "timed out on schedule"
	})
	test.ExpectSuccess(t, err)
	ready.Wait(nil)

	// the frame cannot complete while the hog is running. the worker's
	// deadline must hold regardless
	advanced := make(chan struct{})
	go func() {
		_, _ = s.Advance(input.Snapshot{})
		close(advanced)
	}()
	time.Sleep(10 * time.Millisecond)
	hold.Post()

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, "timed out on schedule")

	// the stalled frame completes once the hog departs
	hog.Leave()
	select {
	case <-advanced:
	case <-time.After(5 * time.Second):
		t.Fatal("frame did not complete after the stalled participant left")
	}
}

func TestCancelTerminatedThread(t *testing.T) {
	rt := newRuntime()

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		return nil
	})
	test.ExpectSuccess(t, err)

	_, err = rt.Join(nil, th)
	test.ExpectSuccess(t, err)

	err = rt.Cancel(th)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.NoSuchThread))
}

func TestCondSignal(t *testing.T) {
	rt := newRuntime()

	var mu sync.Mutex
	cond := thread.NewCond(&mu)
	delivered := false

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		mu.Lock()
		for !delivered {
			cond.Wait(self)
		}
		mu.Unlock()
		return "woken"
	})
	test.ExpectSuccess(t, err)

	mu.Lock()
	delivered = true
	mu.Unlock()
	cond.Broadcast()

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v.(string), "woken")
}

func TestCondDeadline(t *testing.T) {
	rt := newRuntime()

	var mu sync.Mutex
	cond := thread.NewCond(&mu)

	th, err := rt.Create("worker", func(self *thread.Thread) any {
		mu.Lock()
		defer mu.Unlock()
		return cond.WaitDeadline(self, time.Now().Add(10*time.Millisecond))
	})
	test.ExpectSuccess(t, err)

	v, err := rt.Join(nil, th)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, curated.Is(v.(error), thread.WaitTimedOut))
}

func TestSemaphoreCounting(t *testing.T) {
	sem := thread.NewSemaphore(2)
	test.ExpectEquality(t, sem.Value(), uint(2))

	test.ExpectSuccess(t, sem.TryWait())
	test.ExpectSuccess(t, sem.TryWait())

	err := sem.TryWait()
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.WouldBlock))

	sem.Post()
	test.ExpectEquality(t, sem.Value(), uint(1))
	test.ExpectSuccess(t, sem.TryWait())
}

func TestSemaphoreDeadline(t *testing.T) {
	sem := thread.NewSemaphore(0)

	err := sem.WaitDeadline(nil, time.Now().Add(10*time.Millisecond))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, thread.WaitTimedOut))

	// a post after the timeout is not lost
	sem.Post()
	test.ExpectEquality(t, sem.Value(), uint(1))
}
