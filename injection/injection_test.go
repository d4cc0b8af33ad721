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

package injection_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/framegate/framegate/injection"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/sched"
	"github.com/framegate/framegate/test"
	"github.com/framegate/framegate/thread"
)

// one gated worker thread, one controller, a full record and playback
// cycle over the real link socket.
func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	socket := filepath.Join(dir, "framegate.socket")
	recording := filepath.Join(dir, "session.rec")

	lay, err := injection.NewLayer(socket, nil)
	test.ExpectSuccess(t, err)

	// the gated program. it collects the snapshot it sees each frame
	var mu sync.Mutex
	var seen []input.Snapshot

	worker, err := lay.Runtime().Create("game loop", func(self *thread.Thread) any {
		for {
			snap := self.FrameSync()
			if lay.Scheduler().State() == sched.Ending {
				return nil
			}
			mu.Lock()
			seen = append(seen, snap)
			mu.Unlock()
		}
	})
	test.ExpectSuccess(t, err)

	client, err := link.Connect(socket, time.Second)
	test.ExpectSuccess(t, err)
	defer client.Close()

	var a input.Snapshot
	a.Set(10, true)
	var b input.Snapshot
	b.Set(20, true)

	// live session: two frames of controller input
	frame, err := client.AdvanceFrame(a)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, uint64(1))

	frame, err = client.AdvanceFrame(b)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, uint64(2))

	// save the session and replay it with empty controller input. the
	// recorded snapshots must be substituted for the controller's
	test.ExpectSuccess(t, client.SaveRecording(recording, 0))

	ok, err := client.LoadRecording(recording)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ok, true)

	_, err = client.AdvanceFrame(input.Snapshot{})
	test.ExpectSuccess(t, err)
	frame, err = client.AdvanceFrame(input.Snapshot{})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, uint64(4))

	lay.End()
	_, err = lay.Runtime().Join(nil, worker)
	test.ExpectSuccess(t, err)

	mu.Lock()
	defer mu.Unlock()
	test.ExpectEquality(t, len(seen), 4)
	test.ExpectEquality(t, seen[0], a)
	test.ExpectEquality(t, seen[1], b)
	test.ExpectEquality(t, seen[2], a)
	test.ExpectEquality(t, seen[3], b)
}

func TestLoadMissingRecording(t *testing.T) {
	dir := t.TempDir()
	socket := filepath.Join(dir, "framegate.socket")

	lay, err := injection.NewLayer(socket, nil)
	test.ExpectSuccess(t, err)
	defer lay.End()

	client, err := link.Connect(socket, time.Second)
	test.ExpectSuccess(t, err)
	defer client.Close()

	// a failed load reports failure over the wire and changes nothing
	ok, err := client.LoadRecording(filepath.Join(dir, "no-such.rec"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ok, false)

	frame, err := client.AdvanceFrame(input.Snapshot{})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, uint64(1))
}
