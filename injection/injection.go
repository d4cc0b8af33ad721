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

package injection

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/logger"
	"github.com/framegate/framegate/paths"
	"github.com/framegate/framegate/recorder"
	"github.com/framegate/framegate/sched"
	"github.com/framegate/framegate/thread"
)

// name of the environment variable the launcher uses to tell the gated
// process where to bind its link socket.
const SocketEnv = "FRAMEGATE_SOCKET"

var hookOnce sync.Once
var hooked *Layer
var hookErr error

// Hook builds the process's injected layer on first use, configured from
// the environment the launcher provides, and returns the same layer on
// every subsequent call. Programs wanting more control construct a Layer
// directly with NewLayer.
func Hook() (*Layer, error) {
	hookOnce.Do(func() {
		hooked, hookErr = NewLayer("", nil)
	})
	return hooked, hookErr
}

// Layer is the injected side of framegate: the frame scheduler, the
// thread runtime and the controller link, wired together. It implements
// link.Dispatcher.
type Layer struct {
	sched *sched.Scheduler
	rt    *thread.Runtime
	srv   *link.Server

	crit struct {
		sync.Mutex

		// every admitted snapshot since process start. history[i] is the
		// snapshot of the i'th admitted frame; save-recording slices it
		history []input.Snapshot

		// active playback, if any. snapshots from the controller are
		// substituted with recorded ones while this is non-nil
		plb *recorder.Playback
	}
}

// NewLayer builds the injected layer and starts answering controller
// commands on the link socket at socketPath. An empty socketPath selects
// the path in the SocketEnv environment variable, or the default link
// socket path if that too is empty.
func NewLayer(socketPath string, policy sched.CompletionPolicy) (*Layer, error) {
	if socketPath == "" {
		socketPath = os.Getenv(SocketEnv)
	}

	lay := &Layer{}
	lay.sched = sched.NewScheduler(policy)
	lay.rt = thread.NewRuntime(lay.sched)

	var err error
	lay.srv, err = link.NewServer(socketPath, lay)
	if err != nil {
		return nil, err
	}

	go func() {
		// Serve returns when the listener is closed. the gate has been
		// released by then
		_ = lay.srv.Serve()
	}()

	// SIGUSR1 dumps the scheduler's object graph. the usual reason to
	// want this is a frame that never completes: the dump shows which
	// thread the gate is waiting on
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGUSR1)
		for range sig {
			lay.dumpSched()
		}
	}()

	return lay, nil
}

func (lay *Layer) dumpSched() {
	pth, err := paths.ResourcePath("sched.dot")
	if err != nil {
		logger.Logf(logger.Allow, "injection", "sched dump: %v", err)
		return
	}

	f, err := os.Create(pth)
	if err != nil {
		logger.Logf(logger.Allow, "injection", "sched dump: %v", err)
		return
	}
	defer f.Close()

	lay.sched.DumpGraph(f)
	logger.Logf(logger.Allow, "injection", "scheduler graph written to %s", pth)
}

// Runtime returns the thread runtime of the layer. The gated program
// creates and adopts its threads through this.
func (lay *Layer) Runtime() *thread.Runtime {
	return lay.rt
}

// Scheduler returns the frame scheduler of the layer.
func (lay *Layer) Scheduler() *sched.Scheduler {
	return lay.sched
}

// End shuts the layer down. The link socket is closed and all threads
// waiting at the gate are released.
func (lay *Layer) End() {
	lay.sched.End()
	_ = lay.srv.Close()
}

// TogglePause implements the link.Dispatcher interface.
func (lay *Layer) TogglePause() {
	state := lay.sched.TogglePause()
	logger.Logf(logger.Allow, "injection", "state: %s", state)
}

// AdvanceFrame implements the link.Dispatcher interface. While a playback
// is active the controller's snapshot is substituted with the recorded
// one; playback ends at the last recorded frame or at the first
// fingerprint mismatch.
func (lay *Layer) AdvanceFrame(snap input.Snapshot) uint64 {
	lay.crit.Lock()

	if lay.crit.plb != nil {
		if lay.crit.plb.EndFrame() {
			logger.Log(logger.Allow, "injection", "playback ended")
			lay.crit.plb = nil
		} else {
			recorded, err := lay.crit.plb.Next()
			if err != nil {
				logger.Logf(logger.Allow, "injection", "%v", err)
				lay.crit.plb = nil
			} else {
				snap = recorded
			}
		}
	}

	lay.crit.history = append(lay.crit.history, snap)
	lay.crit.Unlock()

	frame, err := lay.sched.Advance(snap)
	if err != nil {
		logger.Logf(logger.Allow, "injection", "%v", err)
	}
	return frame
}

// SetSpeedDivisor implements the link.Dispatcher interface.
func (lay *Layer) SetSpeedDivisor(divisor uint32) error {
	return lay.sched.SetSpeedDivisor(divisor)
}

// SaveRecording implements the link.Dispatcher interface. The input
// history from the start frame onward is written to the named file.
func (lay *Layer) SaveRecording(name string, start uint64) error {
	lay.crit.Lock()
	defer lay.crit.Unlock()

	if start > uint64(len(lay.crit.history)) {
		start = uint64(len(lay.crit.history))
	}

	rec, err := recorder.NewRecorder(name, start)
	if err != nil {
		return err
	}

	for i, snap := range lay.crit.history[start:] {
		if err := rec.Record(start+uint64(i), snap); err != nil {
			_ = rec.End()
			return err
		}
	}

	if err := rec.End(); err != nil {
		return err
	}

	logger.Logf(logger.Allow, "injection", "recording saved to %s (%d frames)", name, rec.NumFrames())
	return nil
}

// LoadRecording implements the link.Dispatcher interface. A failed load
// leaves any active playback untouched.
func (lay *Layer) LoadRecording(name string) bool {
	plb, err := recorder.NewPlayback(name)
	if err != nil {
		logger.Logf(logger.Allow, "injection", "%v", err)
		return false
	}

	lay.crit.Lock()
	lay.crit.plb = plb
	lay.crit.Unlock()

	logger.Logf(logger.Allow, "injection", "playback of %s (%d frames from frame %d)",
		name, plb.NumFrames(), plb.StartFrame)
	return true
}

// Release implements the link.Dispatcher interface. Called by the link
// when the controller goes away; threads waiting at the gate fall back to
// free-running rather than hanging forever.
func (lay *Layer) Release() {
	lay.sched.Release()
}
