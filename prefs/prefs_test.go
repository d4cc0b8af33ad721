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

package prefs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/link"
	"github.com/framegate/framegate/prefs"
	"github.com/framegate/framegate/test"
)

// run the test with a private resource directory in a temporary working
// directory
func tempResourceDir(t *testing.T) {
	t.Helper()

	wd, err := os.Getwd()
	test.ExpectSuccess(t, err)

	dir := t.TempDir()
	test.ExpectSuccess(t, os.Chdir(dir))
	test.ExpectSuccess(t, os.Mkdir(filepath.Join(dir, ".framegate"), 0700))

	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestDefaultsWhenMissing(t *testing.T) {
	tempResourceDir(t)

	p, err := prefs.Load()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p.SocketPath, link.DefaultSocketPath)
	test.ExpectEquality(t, p.Hotkeys, input.DefaultHotkeys())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tempResourceDir(t)

	p, err := prefs.Load()
	test.ExpectSuccess(t, err)

	p.SocketPath = "/tmp/other.socket"
	p.RecordingDir = "/tmp/recordings"
	p.Hotkeys[input.ActionFrameAdvance] = input.Key(99)
	test.ExpectSuccess(t, p.Save())

	q, err := prefs.Load()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, q.SocketPath, "/tmp/other.socket")
	test.ExpectEquality(t, q.RecordingDir, "/tmp/recordings")
	test.ExpectEquality(t, q.Hotkeys[input.ActionFrameAdvance], input.Key(99))

	// unchanged bindings survive the round trip
	test.ExpectEquality(t, q.Hotkeys[input.ActionUp], p.Hotkeys[input.ActionUp])
}
