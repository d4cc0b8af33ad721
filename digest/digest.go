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

// Package digest fingerprints input sequences. Each frame's snapshot is
// hashed together with the previous fingerprint, so a single value stands
// for the entire input history up to that frame. Recordings store the
// chained value per frame, letting playback detect divergence at the
// exact frame it happens.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/framegate/framegate/input"
)

// Input accumulates a chained fingerprint of input snapshots.
type Input struct {
	digest [sha1.Size]byte
	buffer [sha1.Size + input.SnapshotSize]byte
}

// NewInput is the preferred method of initialisation for the Input type.
func NewInput() *Input {
	return &Input{}
}

// Hash returns the current fingerprint as a hex string.
func (dig *Input) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest restores the fingerprint to its starting value.
func (dig *Input) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// Fold the snapshot for a new frame into the fingerprint. The previous
// fingerprint is chained at the head of the hashed data.
func (dig *Input) Fold(snap input.Snapshot) string {
	copy(dig.buffer[:], dig.digest[:])
	copy(dig.buffer[sha1.Size:], snap[:])
	dig.digest = sha1.Sum(dig.buffer[:])
	return dig.Hash()
}
