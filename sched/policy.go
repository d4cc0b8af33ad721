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

// CompletionPolicy decides when an admitted frame is to be considered
// complete. The underlying source material is not precise about the exact
// criterion so the decision is pluggable rather than hard-coded.
type CompletionPolicy interface {
	// complete is called with the scheduler's internal lock held. it must
	// not block and must not call back into the scheduler
	complete(s *Scheduler) bool
}

type allQuiesced struct{}

// AllQuiesced declares a frame complete when every registered thread is
// either parked at the gate having consumed the current frame, or is
// blocked in a native wait (and so accounted for as quiesced). This is the
// default policy.
var AllQuiesced CompletionPolicy = allQuiesced{}

func (allQuiesced) complete(s *Scheduler) bool {
	for p := range s.crit.participants {
		if !p.quiescedFor(s.crit.epoch) {
			return false
		}
	}
	return true
}

type mainThreadDone struct{}

// MainThreadDone declares a frame complete as soon as the designated main
// thread has finished its per-frame work, regardless of what other threads
// are doing. If no main thread has been designated the policy behaves as
// AllQuiesced.
var MainThreadDone CompletionPolicy = mainThreadDone{}

func (mainThreadDone) complete(s *Scheduler) bool {
	if s.crit.main == nil {
		return allQuiesced{}.complete(s)
	}
	return s.crit.main.quiescedFor(s.crit.epoch)
}

// quiescedFor returns true if the participant will make no further progress
// in the frame identified by epoch. called with the scheduler lock held.
func (p *Participant) quiescedFor(epoch uint64) bool {
	switch p.status {
	case statusBlocked:
		// a thread asleep on application state takes no part in the frame
		return true
	case statusParked:
		// parked and the frame's snapshot consumed
		return p.epoch == epoch
	}
	return false
}
