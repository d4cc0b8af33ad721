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
	"encoding/hex"
	"strings"
)

// SnapshotSize is the number of bytes in a Snapshot. One bit per key for a
// key space of 256 keys, matching the width of an X11 keymap vector.
const SnapshotSize = 32

// NumKeys is the number of keys representable in a Snapshot.
const NumKeys = SnapshotSize * 8

// Snapshot is a capture of currently held keys. It is produced once per
// admitted frame and transmitted verbatim over the controller link.
type Snapshot [SnapshotSize]byte

// Set the down state for the numbered key. Keys outside the representable
// range are ignored.
func (sn *Snapshot) Set(key int, down bool) {
	if key < 0 || key >= NumKeys {
		return
	}
	if down {
		sn[key>>3] |= 1 << (key & 0x07)
	} else {
		sn[key>>3] &^= 1 << (key & 0x07)
	}
}

// IsSet returns the down state for the numbered key.
func (sn Snapshot) IsSet(key int) bool {
	if key < 0 || key >= NumKeys {
		return false
	}
	return sn[key>>3]&(1<<(key&0x07)) != 0
}

// Reset clears all key states.
func (sn *Snapshot) Reset() {
	*sn = Snapshot{}
}

// Any returns true if any key is held.
func (sn Snapshot) Any() bool {
	for _, b := range sn {
		if b != 0 {
			return true
		}
	}
	return false
}

// Keys returns the list of held key numbers.
func (sn Snapshot) Keys() []int {
	keys := make([]int, 0, 8)
	for k := 0; k < NumKeys; k++ {
		if sn.IsSet(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// String returns the snapshot as a hex string. The same encoding is used in
// recording files.
func (sn Snapshot) String() string {
	return hex.EncodeToString(sn[:])
}

// ParseSnapshot converts a hex string, as returned by String(), back into a
// Snapshot. ok is false if the string is not a valid snapshot encoding.
func ParseSnapshot(s string) (Snapshot, bool) {
	var sn Snapshot

	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil || len(b) != SnapshotSize {
		return sn, false
	}

	copy(sn[:], b)
	return sn, true
}
