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

// Package control implements the interactive controller session. The
// session owns the controller end of the link, a key capture source and
// the controlling terminal. A numeric menu selects commands; while the
// session is in the running state frames are admitted automatically at
// the polling rate divided by the speed divisor.
package control

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/performance/limiter"
	"github.com/framegate/framegate/prefs"
)

// the session polls for input at 100 ticks per second, one poll every
// 10 milliseconds
const pollRate = 100

// menu command numbers. these are part of the user interface, not the
// wire protocol, although commands seven to eleven correspond to wire
// codes of the same value.
const (
	cmdExit         = 0
	cmdToggleUp     = 1
	cmdToggleDown   = 2
	cmdToggleLeft   = 3
	cmdToggleRight  = 4
	cmdToggleSpace  = 5
	cmdToggleShift  = 6
	cmdTogglePause  = 7
	cmdAdvanceFrame = 8
	cmdSetSpeed     = 9
	cmdSaveInputs   = 10
	cmdLoadInputs   = 11
)

// Session is an interactive controller session.
type Session struct {
	client  *link.Client
	src     input.Source
	prf     *prefs.Preferences
	trm     *terminal
	lim     *limiter.TickLimiter
	keypres chan byte

	running bool
	divisor uint32
	frame   uint64

	// toggled keys. merged into every outgoing snapshot until toggled
	// off again
	held input.Snapshot
	tgl  [cmdToggleShift + 1]bool
}

// NewSession is the preferred method of initialisation for the Session
// type. The session takes ownership of the client and the capture source.
func NewSession(client *link.Client, src input.Source, prf *prefs.Preferences) (*Session, error) {
	ses := &Session{
		client:  client,
		src:     src,
		prf:     prf,
		trm:     &terminal{},
		divisor: 1,
		keypres: make(chan byte),
	}

	if err := ses.trm.initialise(os.Stdin, os.Stdout); err != nil {
		return nil, err
	}

	lim, err := limiter.NewTickLimiter(pollRate)
	if err != nil {
		return nil, err
	}
	ses.lim = lim

	// the terminal is read a byte at a time regardless of mode. in
	// canonical mode the bytes arrive a full line at a time
	go func() {
		b := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(b)
			if err != nil {
				close(ses.keypres)
				return
			}
			if n == 1 {
				ses.keypres <- b[0]
			}
		}
	}()

	return ses, nil
}

// Run the session until the user exits or the link fails. The terminal is
// restored to canonical mode on return.
func (ses *Session) Run() error {
	defer ses.trm.canonicalMode()
	defer ses.src.Destroy()

	ses.drawMenu()

	for {
		line, ok, err := ses.readMenuLine()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		cmd, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			ses.trm.print("This command does not exist.\n")
			continue
		}

		done, err := ses.proceed(cmd)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		ses.drawMenu()
	}
}

// drawMenu prints the status line and the command menu.
func (ses *Session) drawMenu() {
	if ses.running {
		ses.trm.print("\033[7m[RUNNING ]\033[0m")
	} else {
		ses.trm.print("[ PAUSED ]")
	}
	ses.trm.print("      Speed divisor: %d     Frame counter: %d\n\n", ses.divisor, ses.frame)

	ses.trm.print("Available commands:\n\n")
	ses.trm.print("1 - Toggle UP.\n")
	ses.trm.print("2 - Toggle DOWN.\n")
	ses.trm.print("3 - Toggle LEFT.\n")
	ses.trm.print("4 - Toggle RIGHT.\n\n")
	ses.trm.print("5 - Toggle SPACE.\n")
	ses.trm.print("6 - Toggle SHIFT.\n\n")
	ses.trm.print("7 - Toggle PAUSE/RUNNING.\n")
	ses.trm.print("8 - Advance 1 frame.\n")
	ses.trm.print("9 - Set speed divisor.\n\n")
	ses.trm.print("10 - Save inputs.\n")
	ses.trm.print("11 - Load inputs.\n\n")
	ses.trm.print("0 - Exit.\n\n")
}

// proceed performs one menu command. The boolean return indicates that
// the session is over.
func (ses *Session) proceed(cmd int) (bool, error) {
	switch cmd {
	case cmdExit:
		return true, nil

	case cmdToggleUp, cmdToggleDown, cmdToggleLeft, cmdToggleRight, cmdToggleSpace, cmdToggleShift:
		ses.toggle(cmd)

	case cmdTogglePause:
		if err := ses.client.TogglePause(); err != nil {
			return false, err
		}
		ses.running = !ses.running
		if ses.running {
			return false, ses.runLoop()
		}

	case cmdAdvanceFrame:
		return false, ses.advance()

	case cmdSetSpeed:
		var divisor uint32
		for divisor == 0 {
			ses.trm.print("Enter non-null speed divisor factor: ")
			line, ok := ses.readLine()
			if !ok {
				return true, nil
			}
			v, err := strconv.ParseUint(strings.TrimSpace(line), 10, 32)
			if err != nil {
				continue
			}
			divisor = uint32(v)
		}
		if err := ses.client.SetSpeedDivisor(divisor); err != nil {
			return false, err
		}
		ses.divisor = divisor

	case cmdSaveInputs:
		ses.trm.print("Enter filename to save inputs in: ")
		name, ok := ses.readLine()
		if !ok {
			return true, nil
		}

		var start uint64
		for {
			ses.trm.print("Enter first frame to record: ")
			line, ok := ses.readLine()
			if !ok {
				return true, nil
			}
			v, err := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
			if err == nil {
				start = v
				break
			}
		}

		if err := ses.client.SaveRecording(ses.recordingPath(name), start); err != nil {
			return false, err
		}

	case cmdLoadInputs:
		ses.trm.print("Enter filename from which to load inputs: ")
		name, ok := ses.readLine()
		if !ok {
			return true, nil
		}

		loaded, err := ses.client.LoadRecording(ses.recordingPath(name))
		if err != nil {
			return false, err
		}
		if !loaded {
			ses.trm.print("Framegate couldn't load inputs.\n")
		}

	default:
		ses.trm.print("This command does not exist.\n")
	}

	return false, nil
}

// runLoop admits frames automatically until the user pauses, either with
// the play/pause hotkey in the capture window or any key in the
// controlling terminal. One frame is sent every speed-divisor ticks.
func (ses *Session) runLoop() error {
	ses.trm.cbreakMode()
	defer ses.trm.canonicalMode()

	ses.trm.print("\033[7m[RUNNING ]\033[0m any key to pause\n")

	ticks := uint32(0)
	for ses.running {
		ses.lim.Wait()

		select {
		case _, ok := <-ses.keypres:
			if !ok {
				return nil
			}
			return ses.pause()
		default:
		}

		snap, actions := ses.src.Poll()
		for _, a := range actions {
			switch a {
			case input.ActionPlayPause:
				return ses.pause()
			case input.ActionFrameAdvance:
				// a single step while running has no meaning. the frame
				// is already being admitted at the polling rate
			}
		}

		ticks++
		if ticks >= ses.divisor {
			ticks = 0
			frame, err := ses.client.AdvanceFrame(ses.merge(snap))
			if err != nil {
				return err
			}
			ses.frame = frame
		}
	}

	return nil
}

// pause leaves the running state, mirroring the change on the wire.
func (ses *Session) pause() error {
	if err := ses.client.TogglePause(); err != nil {
		return err
	}
	ses.running = false
	return nil
}

// advance admits a single frame with the currently captured input.
func (ses *Session) advance() error {
	snap, _ := ses.src.Poll()
	frame, err := ses.client.AdvanceFrame(ses.merge(snap))
	if err != nil {
		return err
	}
	ses.frame = frame
	return nil
}

// toggle flips the sticky state of one of the six toggleable keys.
func (ses *Session) toggle(cmd int) {
	action := input.Action(cmd - cmdToggleUp)
	key := int(ses.prf.Hotkeys[action])

	ses.tgl[cmd] = !ses.tgl[cmd]
	ses.held.Set(key, ses.tgl[cmd])

	if ses.tgl[cmd] {
		ses.trm.print("%s held down.\n", strings.ToUpper(action.String()))
	} else {
		ses.trm.print("%s released.\n", strings.ToUpper(action.String()))
	}
}

// merge folds the sticky toggles into a captured snapshot.
func (ses *Session) merge(snap input.Snapshot) input.Snapshot {
	for _, k := range ses.held.Keys() {
		snap.Set(k, true)
	}
	return snap
}

// recordingPath resolves a user-entered recording filename against the
// recording directory preference.
func (ses *Session) recordingPath(name string) string {
	name = strings.TrimSpace(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ses.prf.RecordingDir, name)
}

// readMenuLine assembles a menu line while continuing to poll the capture
// source. The frame-advance hotkey is the primary single-step mechanism
// and must work while the session is paused at the menu, without waiting
// for a line to be entered.
func (ses *Session) readMenuLine() (string, bool, error) {
	tck := time.NewTicker(time.Second / pollRate)
	defer tck.Stop()

	var sb strings.Builder
	for {
		select {
		case b, ok := <-ses.keypres:
			if !ok {
				return sb.String(), false, nil
			}
			if b == '\n' || b == '\r' {
				return sb.String(), true, nil
			}
			sb.WriteByte(b)

		case <-tck.C:
			_, actions := ses.src.Poll()
			for _, a := range actions {
				if a == input.ActionFrameAdvance {
					if err := ses.advance(); err != nil {
						return "", false, err
					}
				}
			}
		}
	}
}

// readLine assembles a line from the terminal byte channel. The boolean
// return is false if the terminal has been closed.
func (ses *Session) readLine() (string, bool) {
	var sb strings.Builder
	for {
		b, ok := <-ses.keypres
		if !ok {
			return sb.String(), false
		}
		if b == '\n' || b == '\r' {
			return sb.String(), true
		}
		sb.WriteByte(b)
	}
}
