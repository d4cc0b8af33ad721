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

package sched

import (
	"sync"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/input"
)

// Sentinel errors for the sched package.
const (
	// a wait at the gate was interrupted by thread cancellation.
	Interrupted = "gate: wait interrupted by cancellation"

	// the gate has been released and no further frames can be admitted.
	Released = "gate: gate has been released"

	// a speed divisor of zero has no defined meaning and is never accepted.
	InvalidSpeedDivisor = "sched: speed divisor must be non-zero"
)

// Scheduler coordinates the admission of frames. All application threads
// rendezvous with the scheduler once per admitted frame; the controller
// link decides when each frame is admitted.
//
// The zero value is not usable. Use NewScheduler().
type Scheduler struct {
	policy CompletionPolicy

	// complete is signalled whenever a participant parks, blocks or leaves.
	// Advance() waits on it until the completion policy is satisfied.
	// associated with the crit mutex
	complete *sync.Cond

	// releasedCh is closed when the gate is released. it never closes for
	// any other reason so waiting on it is always safe
	releasedCh chan struct{}

	// crit contains the fields that are protected by the embedded mutex.
	// the lock is held only for short bookkeeping operations, never across
	// a frame's execution
	crit struct {
		sync.Mutex

		state State

		// number of frames admitted and completed. never decremented
		frame uint64

		// how many real polling ticks map to one logical frame when
		// running freely. always non-zero
		speedDivisor uint32

		// admission epoch. incremented once per admitted frame. the frame
		// counter increments only when the frame has also completed
		epoch uint64

		// the snapshot for the frame identified by epoch. threads read it
		// as they pass the gate and never before
		snapshot input.Snapshot

		// closed to admit a frame and immediately replaced
		admit chan struct{}

		// true from admission until the completion policy is satisfied.
		// used to serialise concurrent Advance calls and by Suspend
		advancing bool

		released bool

		participants map[*Participant]struct{}
		main         *Participant
	}
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. A nil policy selects AllQuiesced.
func NewScheduler(policy CompletionPolicy) *Scheduler {
	if policy == nil {
		policy = AllQuiesced
	}

	s := &Scheduler{
		policy:     policy,
		releasedCh: make(chan struct{}),
	}
	s.complete = sync.NewCond(&s.crit)
	s.crit.state = Paused
	s.crit.speedDivisor = 1
	s.crit.admit = make(chan struct{})
	s.crit.participants = make(map[*Participant]struct{})

	return s
}

type participantStatus int

const (
	// executing frame work
	statusRunning participantStatus = iota

	// parked at the gate waiting for the next frame to be admitted
	statusParked

	// blocked in a native wait (condition variable, semaphore, join)
	statusBlocked
)

// Participant is a thread's registration with the scheduler. Every gated
// thread holds exactly one Participant from registration to the moment it
// terminates.
type Participant struct {
	s *Scheduler

	// the following fields are protected by the scheduler's crit mutex
	status participantStatus
	epoch  uint64
	main   bool
}

// Register a new participant with the scheduler. A participant registered
// with main set to true is the designated main thread for the purposes of
// the MainThreadDone completion policy.
func (s *Scheduler) Register(main bool) *Participant {
	s.crit.Lock()
	defer s.crit.Unlock()

	p := &Participant{
		s: s,

		// the new thread has already had its chance at the current frame:
		// it runs as part of the frame that created it and parks for the
		// next admission
		epoch: s.crit.epoch,
		main:  main,
	}
	s.crit.participants[p] = struct{}{}
	if main {
		s.crit.main = p
	}

	return p
}

// Leave removes the participant from the scheduler. Called when the owning
// thread terminates.
func (p *Participant) Leave() {
	s := p.s
	s.crit.Lock()
	defer s.crit.Unlock()

	delete(s.crit.participants, p)
	if s.crit.main == p {
		s.crit.main = nil
	}

	// a departing thread may be the last thing a frame was waiting on
	s.complete.Broadcast()
}

// FrameSync passes the participant through the gate. If the current frame
// has not yet been seen by this participant the call returns immediately
// with the frame's snapshot. Otherwise the participant parks until the next
// frame is admitted.
//
// The interrupt channel, if not nil, aborts a park when it is closed and
// FrameSync returns the Interrupted sentinel. This is how thread
// cancellation is delivered to a parked thread.
func (p *Participant) FrameSync(interrupt <-chan struct{}) (input.Snapshot, error) {
	s := p.s

	s.crit.Lock()

	if s.crit.released {
		snap := s.crit.snapshot
		s.crit.Unlock()
		return snap, nil
	}

	// the thread has not yet consumed the current frame. this happens on
	// the first sync after the thread was woken mid-frame (by a condition
	// signal, a semaphore post or an expiring timed wait). it passes the
	// gate without parking so that it can never stall the frame it has
	// already taken part in
	if p.epoch != s.crit.epoch {
		p.epoch = s.crit.epoch
		snap := s.crit.snapshot
		s.crit.Unlock()
		return snap, nil
	}

	// park and wait for the next admission
	p.status = statusParked
	admit := s.crit.admit
	s.complete.Broadcast()
	s.crit.Unlock()

	select {
	case <-admit:
	case <-s.releasedCh:
	case <-interrupt:
		s.crit.Lock()
		p.status = statusRunning
		s.crit.Unlock()
		return input.Snapshot{}, curated.Errorf(Interrupted)
	}

	s.crit.Lock()
	defer s.crit.Unlock()

	p.status = statusRunning
	p.epoch = s.crit.epoch
	return s.crit.snapshot, nil
}

// Quiesce reports the participant as blocked in a native wait. A blocked
// participant counts as quiesced for frame completion: a frame is never
// held open waiting for a thread that is asleep on unrelated application
// state.
//
// Every Quiesce must be paired with a Wake.
func (p *Participant) Quiesce() {
	s := p.s
	s.crit.Lock()
	defer s.crit.Unlock()

	p.status = statusBlocked
	s.complete.Broadcast()
}

// Wake reverses a previous Quiesce.
func (p *Participant) Wake() {
	s := p.s
	s.crit.Lock()
	defer s.crit.Unlock()

	p.status = statusRunning
}

// Suspend momentarily accounts the participant as quiesced without
// parking it. If a frame is mid-advance the participant is held until
// that frame is declared complete; otherwise the call returns
// immediately. A thread busy in a long computation calls this from its
// cancellation points so that it can never hold a frame open.
func (p *Participant) Suspend() {
	s := p.s
	s.crit.Lock()
	defer s.crit.Unlock()

	if !s.crit.advancing || s.crit.released {
		return
	}

	p.status = statusBlocked
	s.complete.Broadcast()
	for s.crit.advancing && !s.crit.released {
		s.complete.Wait()
	}
	p.status = statusRunning
}

// Advance admits exactly one frame: the snapshot becomes the valid input
// for the frame, every parked thread is released for one pass through the
// gate, and the call blocks until the completion policy declares the frame
// complete. The updated frame counter is returned.
//
// Commands arrive over the controller link strictly one at a time so
// concurrent calls to Advance do not occur in normal operation; if they do
// each waits for the in-flight frame to complete before admitting its own.
func (s *Scheduler) Advance(snap input.Snapshot) (uint64, error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.crit.released || s.crit.state == Ending {
		return s.crit.frame, curated.Errorf(Released)
	}

	// one frame in flight at a time. a second admission while the first
	// is incomplete would let a thread observe snapshot N+1 while frame N
	// is still open
	for s.crit.advancing {
		s.complete.Wait()
		if s.crit.released || s.crit.state == Ending {
			return s.crit.frame, curated.Errorf(Released)
		}
	}
	s.crit.advancing = true

	prev := s.crit.state
	if prev == Paused {
		s.crit.state = Advancing
	}

	// publish the snapshot and admit the frame. the snapshot is stored
	// before the admit channel is closed so no thread can observe snapshot
	// N before frame N-1 was declared complete
	s.crit.snapshot = snap
	s.crit.epoch++
	close(s.crit.admit)
	s.crit.admit = make(chan struct{})

	// wait for the frame to run to completion. the lock is not held while
	// waiting
	for !s.policy.complete(s) {
		s.complete.Wait()
		if s.crit.released {
			break
		}
	}

	s.crit.frame++
	s.crit.advancing = false
	if s.crit.state == Advancing {
		s.crit.state = Paused
	}

	// wake serialised admissions and suspended threads
	s.complete.Broadcast()

	return s.crit.frame, nil
}

// TogglePause switches the scheduler between the Paused and Running states,
// returning the new state. Toggling twice in a row returns the scheduler to
// its original state.
func (s *Scheduler) TogglePause() State {
	s.crit.Lock()
	defer s.crit.Unlock()

	switch s.crit.state {
	case Paused:
		s.crit.state = Running
	case Running:
		s.crit.state = Paused
	}

	return s.crit.state
}

// SetRunning moves the scheduler directly to the Running or Paused state.
// It has no effect once the scheduler is Ending.
func (s *Scheduler) SetRunning(running bool) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.crit.state == Ending {
		return
	}
	if running {
		s.crit.state = Running
	} else {
		s.crit.state = Paused
	}
}

// SetSpeedDivisor sets how many real polling ticks map to one logical
// frame when running freely. A divisor of zero is rejected.
func (s *Scheduler) SetSpeedDivisor(divisor uint32) error {
	if divisor == 0 {
		return curated.Errorf(InvalidSpeedDivisor)
	}

	s.crit.Lock()
	defer s.crit.Unlock()
	s.crit.speedDivisor = divisor

	return nil
}

// SpeedDivisor returns the current speed divisor.
func (s *Scheduler) SpeedDivisor() uint32 {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.crit.speedDivisor
}

// Frame returns the current frame counter.
func (s *Scheduler) Frame() uint64 {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.crit.frame
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.crit.state
}

// Release the gate. All parked threads are freed and all future FrameSync
// calls return immediately: the target program falls back to free-running
// rather than hanging on a dead controller link. Release is idempotent and
// irreversible.
func (s *Scheduler) Release() {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.crit.released {
		return
	}
	s.crit.released = true
	close(s.releasedCh)

	// unstick a possible mid-frame Advance
	s.complete.Broadcast()
}

// End moves the scheduler to the terminal Ending state and releases the
// gate.
func (s *Scheduler) End() {
	s.crit.Lock()
	s.crit.state = Ending
	s.crit.Unlock()

	s.Release()
}
