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
)

// Cond is a condition variable for managed threads. Unlike sync.Cond it
// supports timed waits and its waits are cancellation points. A thread
// blocked in a Cond wait is accounted as quiesced by the frame scheduler,
// so a frame can complete while threads sleep here.
//
// L must be held when calling Wait or WaitDeadline, as with sync.Cond.
type Cond struct {
	L sync.Locker

	mu      sync.Mutex
	waiters []chan struct{}
}

// NewCond is the preferred method of initialisation for the Cond type.
func NewCond(l sync.Locker) *Cond {
	return &Cond{L: l}
}

// Signal wakes one waiting thread, if there is one.
func (c *Cond) Signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) > 0 {
		close(c.waiters[0])
		c.waiters = c.waiters[1:]
	}
}

// Broadcast wakes all waiting threads.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
}

// remove takes ch off the waiter list. The return value is false if the
// channel had already been removed, meaning a Signal or Broadcast has
// consumed it.
func (c *Cond) remove(ch chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Wait blocks until the condition is signalled. On return L is held again.
// The wait is a cancellation point for self; on cancellation L is
// re-acquired before the thread unwinds, matching the native contract for
// cleanup handlers.
func (c *Cond) Wait(self *Thread) {
	_ = c.wait(self, time.Time{})
}

// WaitDeadline is Wait with an absolute deadline. If the condition is not
// signalled by the deadline the WaitTimedOut sentinel is returned. The
// deadline holds even while the frame gate is blocking on a frame
// boundary.
func (c *Cond) WaitDeadline(self *Thread, abstime time.Time) error {
	return c.wait(self, abstime)
}

func (c *Cond) wait(self *Thread, abstime time.Time) error {
	ch := make(chan struct{})
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	c.L.Unlock()

	var timeout <-chan time.Time
	if !abstime.IsZero() {
		timer := time.NewTimer(time.Until(abstime))
		defer timer.Stop()
		timeout = timer.C
	}

	var interrupt <-chan struct{}
	if self != nil {
		self.part.Quiesce()
		interrupt = self.interruptCh()
	}

	var err error
	canceled := false

	select {
	case <-ch:
	case <-timeout:
		if !c.remove(ch) {
			// a signal arrived after the deadline fired but before we
			// could withdraw. the wakeup must not be lost
			c.Signal()
		}
		err = curated.Errorf(WaitTimedOut)
	case <-interrupt:
		if !c.remove(ch) {
			c.Signal()
		}
		canceled = true
	}

	if self != nil {
		self.part.Wake()
	}
	c.L.Lock()

	if canceled {
		// L is held again before the unwind starts, so cleanup handlers
		// observe the same lock state as on a normal return
		panic(cancelUnwind{})
	}
	return err
}
