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

package link_test

import (
	"encoding/binary"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/test"
)

// recordingDispatcher notes every dispatched command so tests can check
// what reached the gated side.
type recordingDispatcher struct {
	mu         sync.Mutex
	frame      uint64
	paused     bool
	divisor    uint32
	lastSnap   input.Snapshot
	saved      string
	savedStart uint64
	loaded     string
	loadOK     bool
	released   int
}

func (d *recordingDispatcher) TogglePause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = !d.paused
}

func (d *recordingDispatcher) AdvanceFrame(snap input.Snapshot) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSnap = snap
	d.frame++
	return d.frame
}

func (d *recordingDispatcher) SetSpeedDivisor(divisor uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.divisor = divisor
	return nil
}

func (d *recordingDispatcher) SaveRecording(name string, start uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saved = name
	d.savedStart = start
	return nil
}

func (d *recordingDispatcher) LoadRecording(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaded = name
	return d.loadOK
}

func (d *recordingDispatcher) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released++
}

func startLink(t *testing.T, d link.Dispatcher) (*link.Server, *link.Client) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "framegate.socket")

	srv, err := link.NewServer(path, d)
	test.ExpectSuccess(t, err)
	go func() {
		_ = srv.Serve()
	}()

	client, err := link.Connect(path, time.Second)
	test.ExpectSuccess(t, err)

	return srv, client
}

func TestAdvanceFrameRoundTrip(t *testing.T) {
	d := &recordingDispatcher{}
	srv, client := startLink(t, d)
	defer srv.Close()
	defer client.Close()

	var snap input.Snapshot
	snap.Set(input.NumKeys-1, true)

	frame, err := client.AdvanceFrame(snap)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, uint64(1))

	frame, err = client.AdvanceFrame(snap)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, frame, uint64(2))

	d.mu.Lock()
	defer d.mu.Unlock()
	test.ExpectEquality(t, d.lastSnap, snap)
}

func TestTogglePauseAndSpeed(t *testing.T) {
	d := &recordingDispatcher{}
	srv, client := startLink(t, d)
	defer srv.Close()
	defer client.Close()

	test.ExpectSuccess(t, client.TogglePause())
	test.ExpectSuccess(t, client.SetSpeedDivisor(4))

	// both commands have no reply. a round trip on a replying command
	// proves they have been consumed in order
	_, err := client.AdvanceFrame(input.Snapshot{})
	test.ExpectSuccess(t, err)

	d.mu.Lock()
	defer d.mu.Unlock()
	test.ExpectEquality(t, d.paused, true)
	test.ExpectEquality(t, d.divisor, uint32(4))
}

func TestSaveAndLoadRecording(t *testing.T) {
	d := &recordingDispatcher{loadOK: true}
	srv, client := startLink(t, d)
	defer srv.Close()
	defer client.Close()

	test.ExpectSuccess(t, client.SaveRecording("session.rec", 120))

	ok, err := client.LoadRecording("session.rec")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ok, true)

	d.mu.Lock()
	defer d.mu.Unlock()
	test.ExpectEquality(t, d.saved, "session.rec")
	test.ExpectEquality(t, d.savedStart, uint64(120))
	test.ExpectEquality(t, d.loaded, "session.rec")
}

func TestLoadFailureFlag(t *testing.T) {
	d := &recordingDispatcher{loadOK: false}
	srv, client := startLink(t, d)
	defer srv.Close()
	defer client.Close()

	ok, err := client.LoadRecording("no-such-recording.rec")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ok, false)
}

func TestUnknownCodeIgnored(t *testing.T) {
	d := &recordingDispatcher{}

	path := filepath.Join(t.TempDir(), "framegate.socket")
	srv, err := link.NewServer(path, d)
	test.ExpectSuccess(t, err)
	defer srv.Close()
	go func() {
		_ = srv.Serve()
	}()

	// send an out-of-range code directly, bypassing the Client api
	conn, err := net.Dial("unix", path)
	test.ExpectSuccess(t, err)
	defer conn.Close()

	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], 99)
	_, err = conn.Write(raw[:])
	test.ExpectSuccess(t, err)

	// the link remains open and usable after the unknown code
	binary.LittleEndian.PutUint32(raw[:], 8)
	_, err = conn.Write(raw[:])
	test.ExpectSuccess(t, err)
	var snap [input.SnapshotSize]byte
	_, err = conn.Write(snap[:])
	test.ExpectSuccess(t, err)

	var reply [8]byte
	_, err = io.ReadFull(conn, reply[:])
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, binary.LittleEndian.Uint64(reply[:]), uint64(1))
}

func TestReleaseOnDisconnect(t *testing.T) {
	d := &recordingDispatcher{}
	srv, client := startLink(t, d)
	defer srv.Close()

	test.ExpectSuccess(t, client.Close())

	deadline := time.Now().Add(time.Second)
	for {
		d.mu.Lock()
		released := d.released
		d.mu.Unlock()
		if released > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("gate never released after controller disconnect")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestFilenameTooLong(t *testing.T) {
	d := &recordingDispatcher{}
	srv, client := startLink(t, d)
	defer srv.Close()
	defer client.Close()

	long := make([]byte, link.FilenameSize)
	for i := range long {
		long[i] = 'a'
	}
	err := client.SaveRecording(string(long), 0)
	test.ExpectFailure(t, err)
}
