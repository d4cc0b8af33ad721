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

// Package thread stands in for the native threading interface of the gated
// program. Every thread lifecycle and synchronisation operation the program
// would normally perform through its native library is performed through
// this package instead, which preserves the native contract while adding
// the bookkeeping the frame scheduler needs.
//
// The Runtime type is the single-instance context object owning the thread
// table. Threads are created with Create() and are represented by the
// Thread type: one record per live thread, retired exactly once by the
// join or detach that consumes it (or at termination for detached
// threads).
//
// Join, condition variable waits and semaphore waits are suspension
// points: a thread blocked in one of them reports itself quiesced to the
// frame scheduler so that a frame is never held open by a thread that is
// merely asleep on application state. Timed variants honour their deadline
// even while the gate is blocking on a frame boundary.
//
// Cancellation follows the native model with one documented restriction:
// cancellation is acted upon at cancellation points (TestCancel, Exit, the
// waiting operations and the per-frame gate sync) rather than at arbitrary
// instruction boundaries. Asynchronous cancel type is accepted and means
// the thread is taken down at the very next such point, including a park
// at the frame gate. Cancellation unwinds the thread, running any pushed
// cleanup handlers on the way out.
package thread
