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

// Package input defines the key state information exchanged between the
// controller front-end and the gated program.
//
// The Snapshot type is a fixed size bit vector of key-down states. Exactly
// one snapshot is valid per admitted frame: the controller produces it at
// the moment the frame is requested and the scheduler makes it visible to
// every gated thread for the duration of that frame and no earlier.
//
// The Hotkeys type maps logical controller actions (frame advance,
// play/pause, the toggleable game keys) to physical keys. The SDLCapture
// type polls the host's keyboard through SDL and produces both the snapshot
// and any hotkey matches for the current polling tick.
package input
