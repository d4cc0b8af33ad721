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

package input

// Action is a logical controller action that can be bound to a physical key.
type Action int

// List of bindable actions. The first six correspond to the toggleable game
// keys offered by the controller menu.
const (
	ActionUp Action = iota
	ActionDown
	ActionLeft
	ActionRight
	ActionSpace
	ActionShift
	ActionPlayPause
	ActionFrameAdvance
	NumActions
)

func (a Action) String() string {
	switch a {
	case ActionUp:
		return "up"
	case ActionDown:
		return "down"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionSpace:
		return "space"
	case ActionShift:
		return "shift"
	case ActionPlayPause:
		return "playpause"
	case ActionFrameAdvance:
		return "frameadvance"
	}
	return "unknown"
}

// Key identifies a physical key. Values are SDL scancodes, capped to the
// Snapshot key space.
type Key int

// Hotkeys maps logical actions to physical keys. Read-only at steady state:
// it is populated from preferences (or defaults) during initialisation and
// only read thereafter.
type Hotkeys [NumActions]Key

// Lookup returns the action bound to the key, if any.
func (hk Hotkeys) Lookup(key Key) (Action, bool) {
	for a, k := range hk {
		if k == key {
			return Action(a), true
		}
	}
	return 0, false
}
