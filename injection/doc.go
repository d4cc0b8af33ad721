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

// Package injection assembles the injected side of framegate. A program
// links this package in and routes its thread operations through the
// Layer's runtime; the layer binds the controller link socket and from
// then on every frame of execution is admitted by the external
// controller.
//
// Injection is at link time rather than load time. The gated program
// imports the layer and registers its threads with it; there is no
// preloading of an already-built binary. In exchange the layer can offer
// honest cooperative suspension points instead of intercepted system
// calls.
package injection
