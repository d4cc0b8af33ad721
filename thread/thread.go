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
	"fmt"
	"sync"

	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/sched"
)

// Canceled is the exit value of a thread that was taken down by
// cancellation, equivalent to the native library's reserved cancel result.
var Canceled any = canceledResult{}

type canceledResult struct{}

func (canceledResult) String() string {
	return "canceled"
}

// exitUnwind and cancelUnwind are the panic values used to unwind a thread
// through Exit() and through a delivered cancellation. They never escape
// the thread's own goroutine.
type exitUnwind struct {
	value any
}

type cancelUnwind struct{}

// Thread is the bookkeeping record for one managed thread.
type Thread struct {
	id   ID
	rt   *Runtime
	name string

	part *sched.Participant

	// closed when the thread terminates
	done chan struct{}

	// closed when a cancellation has been delivered (requested while the
	// cancel state is enabled). waiting operations select on it through
	// interruptCh, which withholds the channel while cancellation is
	// disabled so a delivered request cannot act until re-enablement
	cancelCh chan struct{}

	// cleanup handlers. only the owning goroutine touches this slice
	cleanups []func()

	// fields below are protected by the record's own lock. they are
	// mutated only by the owning thread and the thread performing a
	// join/detach
	crit struct {
		sync.Mutex
		joinable        bool
		detached        bool
		joinStarted     bool
		terminated      bool
		retired         bool
		retval          any
		cancelState     CancelState
		cancelType      CancelType
		cancelPending   bool
		cancelDelivered bool
	}
}

func (t *Thread) String() string {
	return fmt.Sprintf("%s [%d]", t.name, t.id)
}

// ID returns the thread's identifier.
func (t *Thread) ID() ID {
	return t.id
}

// Name returns the name given to the thread at creation.
func (t *Thread) Name() string {
	return t.name
}

func (t *Thread) setRetval(v any) {
	t.crit.Lock()
	t.crit.retval = v
	t.crit.Unlock()
}

// unwind recovers the panic values used by Exit() and cancellation,
// running the thread's cleanup handlers in push order reversed. Any other
// panic value is re-raised untouched.
func (t *Thread) unwind() {
	r := recover()
	if r == nil {
		return
	}

	switch v := r.(type) {
	case exitUnwind:
		t.runCleanups()
		t.setRetval(v.value)
	case cancelUnwind:
		t.runCleanups()
		t.setRetval(Canceled)
	default:
		panic(r)
	}
}

// Exit terminates the calling thread with the given exit value, running
// any pushed cleanup handlers on the way out. Must only be called by the
// thread itself, and only by a thread started through Create: an adopted
// thread has no unwinding wrapper, so Exit on it escapes as a fatal
// panic.
func (t *Thread) Exit(v any) {
	panic(exitUnwind{value: v})
}

// PushCleanup registers a handler to be run if the thread exits through
// Exit() or is cancelled. Handlers run in reverse order of registration.
// Must only be called by the thread itself.
func (t *Thread) PushCleanup(f func()) {
	t.cleanups = append(t.cleanups, f)
}

// PopCleanup removes the most recently pushed cleanup handler, running it
// first if execute is true. Must only be called by the thread itself.
func (t *Thread) PopCleanup(execute bool) {
	if len(t.cleanups) == 0 {
		return
	}
	f := t.cleanups[len(t.cleanups)-1]
	t.cleanups = t.cleanups[:len(t.cleanups)-1]
	if execute {
		f()
	}
}

func (t *Thread) runCleanups() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
	t.cleanups = nil
}

// FrameSync passes the calling thread through the frame gate, returning
// the input snapshot for the frame about to run. Application threads call
// this once per logical frame.
//
// FrameSync is a cancellation point: a cancellation delivered while the
// thread is parked at the gate unwinds through the gate's cleanup path
// exactly as at any other cancellation point. Must only be called by the
// thread itself.
func (t *Thread) FrameSync() input.Snapshot {
	snap, err := t.part.FrameSync(t.interruptCh())
	if err != nil {
		// the park was interrupted by cancellation
		panic(cancelUnwind{})
	}
	return snap
}
