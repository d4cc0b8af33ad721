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

package thread

import (
	"sync"
	"time"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/logger"
	"github.com/framegate/framegate/sched"
)

// Sentinel errors for the thread package. These mirror the error classes
// the native primitives report; the gated program may check for them.
const (
	// the thread handle does not refer to a live thread.
	NoSuchThread = "thread: no such thread"

	// the thread is not joinable (it has been detached or already joined).
	NotJoinable = "thread: thread is not joinable"

	// the thread has already been detached.
	AlreadyDetached = "thread: thread already detached"

	// another thread has already started a join on this thread.
	JoinInProgress = "thread: join already in progress"

	// TryJoin: the thread has not yet terminated.
	NotTerminated = "thread: thread has not terminated"

	// a timed wait reached its deadline.
	WaitTimedOut = "thread: wait timed out"
)

// ID uniquely identifies a thread within a Runtime.
type ID uint64

// Runtime owns the thread table and is the context object through which
// all thread operations are performed. There is normally exactly one
// Runtime per gated process, explicitly constructed during injection.
type Runtime struct {
	sched *sched.Scheduler

	// the thread table and its dedicated lock. entries are mutated only by
	// the owning thread and by the thread performing a join/detach
	crit struct {
		sync.Mutex
		threads map[ID]*Thread
		nextID  ID
	}
}

// NewRuntime is the preferred method of initialisation for the Runtime
// type.
func NewRuntime(s *sched.Scheduler) *Runtime {
	rt := &Runtime{sched: s}
	rt.crit.threads = make(map[ID]*Thread)
	return rt
}

// Scheduler returns the frame scheduler the runtime is attached to.
func (rt *Runtime) Scheduler() *sched.Scheduler {
	return rt.sched
}

// Create a new thread running fn. The thread's record is registered before
// the thread begins running user code, guaranteeing the record exists
// before any join or detach can observe it. The value returned by fn is
// the thread's exit value, retrievable through Join.
func (rt *Runtime) Create(name string, fn func(*Thread) any) (*Thread, error) {
	if fn == nil {
		return nil, curated.Errorf("thread: create: no thread function")
	}
	return rt.create(name, fn, false), nil
}

// Adopt registers the calling thread with the runtime. Used for the
// program's initial thread, which is not created through Create() but must
// still pass through the frame gate. An adopted thread is the designated
// main thread for the MainThreadDone completion policy and is not
// joinable. It leaves through an ordinary function return: the unwinds
// performed by Exit and cancellation are only recovered on threads
// started through Create, so neither may be used on an adopted thread.
func (rt *Runtime) Adopt(name string) *Thread {
	t := rt.newThread(name, true)
	t.crit.joinable = false
	logger.Logf(logger.Allow, "thread", "adopted %s [%d]", name, t.id)
	return t
}

func (rt *Runtime) newThread(name string, main bool) *Thread {
	t := &Thread{
		rt:       rt,
		name:     name,
		done:     make(chan struct{}),
		cancelCh: make(chan struct{}),
	}
	t.crit.joinable = true
	t.crit.cancelState = CancelEnabled
	t.crit.cancelType = CancelDeferred

	rt.crit.Lock()
	rt.crit.nextID++
	t.id = rt.crit.nextID
	rt.crit.threads[t.id] = t
	rt.crit.Unlock()

	t.part = rt.sched.Register(main)

	return t
}

func (rt *Runtime) create(name string, fn func(*Thread) any, main bool) *Thread {
	t := rt.newThread(name, main)
	logger.Logf(logger.Allow, "thread", "created %s [%d]", name, t.id)

	go func() {
		defer rt.finish(t)
		defer t.unwind()
		t.setRetval(fn(t))
	}()

	return t
}

// finish performs end-of-life bookkeeping for a terminated thread.
func (rt *Runtime) finish(t *Thread) {
	t.crit.Lock()
	t.crit.terminated = true
	detached := t.crit.detached
	t.crit.Unlock()

	close(t.done)
	t.part.Leave()

	// a detached thread releases its record immediately on termination.
	// a joinable thread's record is retired by the join that consumes it
	if detached {
		rt.retire(t)
	}
}

// retire removes the thread's record from the table. The first caller
// wins: a record is only ever retired once, no matter how termination and
// detachment interleave.
func (rt *Runtime) retire(t *Thread) {
	t.crit.Lock()
	if t.crit.retired {
		t.crit.Unlock()
		return
	}
	t.crit.retired = true
	t.crit.Unlock()

	rt.crit.Lock()
	delete(rt.crit.threads, t.id)
	rt.crit.Unlock()

	logger.Logf(logger.Allow, "thread", "retired %s [%d]", t.name, t.id)
}

// NumLive returns the number of live (unretired) thread records.
func (rt *Runtime) NumLive() int {
	rt.crit.Lock()
	defer rt.crit.Unlock()
	return len(rt.crit.threads)
}

// Join waits for the target thread to terminate, retires its record and
// returns its exit value. The calling thread, if managed (self not nil),
// is accounted as quiesced for the duration of the wait and the wait is a
// cancellation point.
func (rt *Runtime) Join(self, target *Thread) (any, error) {
	return rt.join(self, target, time.Time{}, true)
}

// JoinDeadline is Join with an absolute deadline. If the target has not
// terminated by the deadline the WaitTimedOut sentinel is returned and the
// target remains joinable. The deadline holds even while the frame gate is
// blocking on a frame boundary.
func (rt *Runtime) JoinDeadline(self, target *Thread, abstime time.Time) (any, error) {
	return rt.join(self, target, abstime, true)
}

// TryJoin reports the target's exit value if it has already terminated and
// the NotTerminated sentinel otherwise. It never blocks.
func (rt *Runtime) TryJoin(self, target *Thread) (any, error) {
	return rt.join(self, target, time.Time{}, false)
}

func (rt *Runtime) join(self, target *Thread, abstime time.Time, block bool) (any, error) {
	if target == nil {
		return nil, curated.Errorf(NoSuchThread)
	}

	// validate and claim the join under the record's lock
	target.crit.Lock()
	switch {
	case target.crit.retired:
		target.crit.Unlock()
		return nil, curated.Errorf(NoSuchThread)
	case target.crit.detached:
		target.crit.Unlock()
		return nil, curated.Errorf(NotJoinable)
	case !target.crit.joinable:
		target.crit.Unlock()
		return nil, curated.Errorf(NotJoinable)
	case target.crit.joinStarted:
		target.crit.Unlock()
		return nil, curated.Errorf(JoinInProgress)
	}
	target.crit.joinStarted = true
	target.crit.Unlock()

	// abandon the claim so a later join can succeed
	abandon := func() {
		target.crit.Lock()
		target.crit.joinStarted = false
		target.crit.Unlock()
	}

	if !block {
		select {
		case <-target.done:
		default:
			abandon()
			return nil, curated.Errorf(NotTerminated)
		}
	} else {
		var timeout <-chan time.Time
		if !abstime.IsZero() {
			timer := time.NewTimer(time.Until(abstime))
			defer timer.Stop()
			timeout = timer.C
		}

		var interrupt <-chan struct{}
		if self != nil {
			self.part.Quiesce()
			defer self.part.Wake()
			interrupt = self.interruptCh()
		}

		select {
		case <-target.done:
		case <-timeout:
			abandon()
			return nil, curated.Errorf(WaitTimedOut)
		case <-interrupt:
			// cancellation of the joining thread. the join claim is
			// abandoned and the thread unwinds (the deferred Wake runs
			// during the unwind)
			abandon()
			panic(cancelUnwind{})
		}
	}

	// the target has terminated. retire the record and collect the exit
	// value
	rt.retire(target)

	target.crit.Lock()
	defer target.crit.Unlock()
	return target.crit.retval, nil
}

// Detach marks the thread as never to be joined: its record is released
// automatically when it terminates. Detaching an already detached thread,
// or one on which a join has started, is a reported misuse error.
func (rt *Runtime) Detach(target *Thread) error {
	if target == nil {
		return curated.Errorf(NoSuchThread)
	}

	target.crit.Lock()
	switch {
	case target.crit.retired:
		target.crit.Unlock()
		return curated.Errorf(NoSuchThread)
	case target.crit.detached:
		target.crit.Unlock()
		return curated.Errorf(AlreadyDetached)
	case target.crit.joinStarted:
		target.crit.Unlock()
		return curated.Errorf(JoinInProgress)
	}
	target.crit.detached = true
	target.crit.joinable = false
	terminated := target.crit.terminated
	target.crit.Unlock()

	// a thread that had already terminated when detached is released
	// immediately
	if terminated {
		rt.retire(target)
	}

	return nil
}
