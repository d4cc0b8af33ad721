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

// Sentinel error for TryWait on a semaphore with no available count.
const WouldBlock = "thread: semaphore would block"

// Semaphore is a counting semaphore for managed threads. Waits are
// cancellation points and a waiting thread is accounted as quiesced by the
// frame scheduler.
type Semaphore struct {
	mu      sync.Mutex
	value   uint
	waiters []chan struct{}
}

// NewSemaphore is the preferred method of initialisation for the Semaphore
// type. The semaphore starts with the given count.
func NewSemaphore(value uint) *Semaphore {
	return &Semaphore{value: value}
}

// Post increments the semaphore, waking one waiting thread if any.
func (m *Semaphore) Post() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.waiters) > 0 {
		close(m.waiters[0])
		m.waiters = m.waiters[1:]
		return
	}
	m.value++
}

// Value returns the semaphore's current count.
func (m *Semaphore) Value() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// TryWait decrements the semaphore if its count is positive. If the count
// is zero the WouldBlock sentinel is returned and the semaphore is
// unchanged.
func (m *Semaphore) TryWait() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == 0 {
		return curated.Errorf(WouldBlock)
	}
	m.value--
	return nil
}

// Wait decrements the semaphore, blocking until the count is positive.
// The wait is a cancellation point for self.
func (m *Semaphore) Wait(self *Thread) {
	_ = m.wait(self, time.Time{})
}

// WaitDeadline is Wait with an absolute deadline. If the count does not
// become positive by the deadline the WaitTimedOut sentinel is returned.
// The deadline holds even while the frame gate is blocking on a frame
// boundary.
func (m *Semaphore) WaitDeadline(self *Thread, abstime time.Time) error {
	return m.wait(self, abstime)
}

// remove takes ch off the waiter list. The return value is false if the
// channel had already been removed, meaning a Post has handed its count to
// this waiter.
func (m *Semaphore) remove(ch chan struct{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.waiters {
		if w == ch {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Semaphore) wait(self *Thread, abstime time.Time) error {
	m.mu.Lock()
	if m.value > 0 {
		m.value--
		m.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

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
		// a Post handed its count directly to this waiter
	case <-timeout:
		if !m.remove(ch) {
			// the post landed after the deadline fired but before we
			// could withdraw. the count must not be lost
			m.Post()
		}
		err = curated.Errorf(WaitTimedOut)
	case <-interrupt:
		if !m.remove(ch) {
			m.Post()
		}
		canceled = true
	}

	if self != nil {
		self.part.Wake()
	}

	if canceled {
		panic(cancelUnwind{})
	}
	return err
}
