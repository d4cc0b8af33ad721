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

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/framegate/framegate/curated"
)

// DefaultHotkeys returns the default action bindings.
func DefaultHotkeys() Hotkeys {
	var hk Hotkeys
	hk[ActionUp] = Key(sdl.SCANCODE_UP)
	hk[ActionDown] = Key(sdl.SCANCODE_DOWN)
	hk[ActionLeft] = Key(sdl.SCANCODE_LEFT)
	hk[ActionRight] = Key(sdl.SCANCODE_RIGHT)
	hk[ActionSpace] = Key(sdl.SCANCODE_SPACE)
	hk[ActionShift] = Key(sdl.SCANCODE_LSHIFT)
	hk[ActionPlayPause] = Key(sdl.SCANCODE_PAUSE)
	hk[ActionFrameAdvance] = Key(sdl.SCANCODE_GRAVE)
	return hk
}

// Source of key state information for the controller. Implemented by
// SDLCapture and by test stubs.
type Source interface {
	// Poll the current key state, returning the snapshot for the frame
	// about to be requested and any actions whose key transitioned to down
	// since the previous poll.
	Poll() (Snapshot, []Action)

	// release resources used by the source
	Destroy()
}

// SDLCapture reads the host keyboard through SDL. A small window is created
// to receive keyboard focus; key state is only meaningful while that window
// (or the relayed target window) holds focus, in the same way the original
// X11 capture followed the focus window.
type SDLCapture struct {
	hotkeys Hotkeys
	window  *sdl.Window

	// key state at the previous poll, for hotkey edge detection
	prev []uint8
}

// NewSDLCapture is the preferred method of initialisation for the
// SDLCapture type.
func NewSDLCapture(hotkeys Hotkeys) (*SDLCapture, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, curated.Errorf("sdl capture: %v", err)
	}

	window, err := sdl.CreateWindow("framegate capture",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		240, 80, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, curated.Errorf("sdl capture: %v", err)
	}

	return &SDLCapture{
		hotkeys: hotkeys,
		window:  window,
	}, nil
}

// Poll implements the Source interface.
func (cap *SDLCapture) Poll() (Snapshot, []Action) {
	sdl.PumpEvents()

	// drain the event queue. key information is taken from the keyboard
	// state array rather than individual events
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
	}

	state := sdl.GetKeyboardState()

	var snap Snapshot
	var actions []Action

	for sc, down := range state {
		if down == 0 {
			continue
		}

		snap.Set(sc, true)

		// a hotkey matches on the down transition only
		if sc >= len(cap.prev) || cap.prev[sc] == 0 {
			if a, ok := cap.hotkeys.Lookup(Key(sc)); ok {
				actions = append(actions, a)
			}
		}
	}

	// remember state for the next edge detection
	if cap.prev == nil {
		cap.prev = make([]uint8, len(state))
	}
	copy(cap.prev, state)

	return snap, actions
}

// Destroy implements the Source interface.
func (cap *SDLCapture) Destroy() {
	if cap.window != nil {
		cap.window.Destroy()
		cap.window = nil
	}
	sdl.Quit()
}
