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
	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/logger"
)

// CancelState controls whether cancellation requests are acted upon.
type CancelState int

// List of valid CancelState values.
const (
	CancelEnabled CancelState = iota
	CancelDisabled
)

func (s CancelState) String() string {
	switch s {
	case CancelEnabled:
		return "enabled"
	case CancelDisabled:
		return "disabled"
	}
	return "unknown"
}

// CancelType controls when a delivered cancellation takes effect. Only
// deferred cancellation is honoured; asynchronous cancellation is accepted
// but acted upon at the next cancellation point, which is the strongest
// guarantee compatible with running cleanup handlers reliably.
type CancelType int

// List of valid CancelType values.
const (
	CancelDeferred CancelType = iota
	CancelAsynchronous
)

func (s CancelType) String() string {
	switch s {
	case CancelDeferred:
		return "deferred"
	case CancelAsynchronous:
		return "asynchronous"
	}
	return "unknown"
}

// Cancel requests cancellation of the target thread. The request is
// recorded immediately but takes effect only when the target next reaches
// a cancellation point with cancellation enabled.
func (rt *Runtime) Cancel(target *Thread) error {
	target.crit.Lock()
	defer target.crit.Unlock()

	if target.crit.terminated || target.crit.retired {
		return curated.Errorf(NoSuchThread)
	}

	target.crit.cancelPending = true
	target.deliverCancel()

	logger.Logf(logger.Allow, "thread", "cancel requested for %s", target)

	return nil
}

// deliverCancel closes the cancel channel if a request is pending and
// cancellation is currently enabled. Must be called with the record lock
// held. Closing happens at most once.
func (t *Thread) deliverCancel() {
	if t.crit.cancelPending && t.crit.cancelState == CancelEnabled && !t.crit.cancelDelivered {
		t.crit.cancelDelivered = true
		close(t.cancelCh)
	}
}

// interruptCh returns the channel a blocking operation selects on to
// observe cancellation. While cancellation is disabled the returned
// channel is nil: a request that has already been delivered is held back
// until the thread re-enables cancellation.
func (t *Thread) interruptCh() <-chan struct{} {
	t.crit.Lock()
	defer t.crit.Unlock()

	if t.crit.cancelState == CancelDisabled {
		return nil
	}
	return t.cancelCh
}

// SetCancelState changes the calling thread's cancel state, returning the
// previous state. Re-enabling cancellation while a request is pending
// delivers that request, to be acted upon at the next cancellation point.
func (t *Thread) SetCancelState(state CancelState) CancelState {
	t.crit.Lock()
	defer t.crit.Unlock()

	old := t.crit.cancelState
	t.crit.cancelState = state
	t.deliverCancel()
	return old
}

// SetCancelType changes the calling thread's cancel type, returning the
// previous type.
func (t *Thread) SetCancelType(typ CancelType) CancelType {
	t.crit.Lock()
	defer t.crit.Unlock()

	old := t.crit.cancelType
	t.crit.cancelType = typ
	return old
}

// TestCancel is an explicit cancellation point. If a cancellation has been
// delivered to the calling thread, and cancellation is enabled, it unwinds
// here, running any pushed cleanup handlers.
//
// TestCancel is also a suspension point at the frame gate: a thread busy
// in a long computation that polls for cancellation is accounted as
// quiesced for any frame that is mid-advance, so the computation and the
// frame cannot starve each other. Must only be called by the thread
// itself.
func (t *Thread) TestCancel() {
	if t.part != nil {
		t.part.Suspend()
	}

	t.crit.Lock()
	act := t.crit.cancelDelivered && t.crit.cancelState == CancelEnabled
	t.crit.Unlock()

	if act {
		panic(cancelUnwind{})
	}
}
