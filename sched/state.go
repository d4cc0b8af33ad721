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

// State indicates the scheduler's state.
type State int

// List of possible scheduler states.
//
// Paused is the initial state: no frames are admitted except through an
// explicit single frame advance, which moves the scheduler through the
// transient Advancing state and back to Paused.
//
// Running admits a frame on every advance request and remains Running.
//
// Ending is terminal. It is entered on process exit or on an unrecoverable
// controller link failure, at which point the gate no longer restrains any
// thread.
const (
	Paused State = iota
	Advancing
	Running
	Ending
)

func (s State) String() string {
	switch s {
	case Paused:
		return "Paused"
	case Advancing:
		return "Advancing"
	case Running:
		return "Running"
	case Ending:
		return "Ending"
	}
	return ""
}
