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

// Package sched implements the frame scheduler: the authority over when
// simulated time advances in the gated program.
//
// The scheduler is a state machine with states Paused, Running and the
// transient Advancing (see the State type). Progress is measured in frames.
// A frame is admitted by the Advance() function, which publishes the
// frame's input snapshot, releases every thread parked at the gate for
// exactly one pass, and blocks until a CompletionPolicy declares the frame
// complete. Only then does the frame counter increment.
//
// Threads take part through the Participant type. A participant is in one
// of three states: running frame work, parked at the gate (FrameSync), or
// blocked in a native wait (Quiesce/Wake). Parked and blocked participants
// count as quiesced; a frame can not be declared complete while any
// participant is still running.
//
// The gate never reorders wakeups of the program's own synchronisation
// primitives and it never holds its internal lock across a frame's
// execution. If the controller link is lost the gate is released: all
// parked threads are freed and the program free-runs rather than hanging.
package sched
