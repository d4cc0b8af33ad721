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

package control

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/test"
)

// countingDispatch counts frame admissions and ignores everything else.
type countingDispatch struct {
	frames chan uint64
	frame  uint64
}

func (d *countingDispatch) TogglePause() {}

func (d *countingDispatch) AdvanceFrame(snap input.Snapshot) uint64 {
	d.frame++
	d.frames <- d.frame
	return d.frame
}

func (d *countingDispatch) SetSpeedDivisor(divisor uint32) error { return nil }

func (d *countingDispatch) SaveRecording(name string, start uint64) error { return nil }

func (d *countingDispatch) LoadRecording(name string) bool { return false }

func (d *countingDispatch) Release() {}

// edgeSource reports a single frame-advance key edge and nothing
// thereafter.
type edgeSource struct {
	fired bool
}

func (src *edgeSource) Poll() (input.Snapshot, []input.Action) {
	var snap input.Snapshot
	if src.fired {
		return snap, nil
	}
	src.fired = true
	return snap, []input.Action{input.ActionFrameAdvance}
}

func (src *edgeSource) Destroy() {}

func TestFrameAdvanceHotkeyWhilePaused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link.socket")

	dsp := &countingDispatch{frames: make(chan uint64, 1)}
	srv, err := link.NewServer(path, dsp)
	test.ExpectSuccess(t, err)
	defer srv.Close()
	go func() {
		_ = srv.Serve()
	}()

	client, err := link.Connect(path, 5*time.Second)
	test.ExpectSuccess(t, err)
	defer client.Close()

	ses := &Session{
		client:  client,
		src:     &edgeSource{},
		divisor: 1,
		keypres: make(chan byte),
	}

	type result struct {
		line string
		ok   bool
		err  error
	}
	res := make(chan result, 1)
	go func() {
		line, ok, err := ses.readMenuLine()
		res <- result{line: line, ok: ok, err: err}
	}()

	// the hotkey edge admits a frame even though no menu line has been
	// entered
	select {
	case f := <-dsp.frames:
		test.ExpectEquality(t, f, uint64(1))
	case <-time.After(5 * time.Second):
		t.Fatal("frame-advance hotkey ignored while paused")
	}

	// and the menu still reads a line afterwards
	for _, b := range []byte("7\n") {
		ses.keypres <- b
	}
	r := <-res
	test.ExpectSuccess(t, r.err)
	test.ExpectSuccess(t, r.ok)
	test.ExpectEquality(t, r.line, "7")
	test.ExpectEquality(t, ses.frame, uint64(1))
}
