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

// Package link implements the controller link, the byte-stream protocol
// between the external controller and the gated process. The protocol is
// strictly request/reply over a unix domain socket: fixed-size records,
// little-endian integers, one command in flight at a time.
//
// The Server type is the injected side; it translates wire commands into
// calls on a Dispatcher. The Client type is the controller side; its
// methods mirror the wire commands one for one.
//
// Loss of the connection in either direction never leaves the gated
// process hanging. The server releases the frame gate whenever a
// controller goes away, letting the application free-run until a new
// controller connects.
package link
