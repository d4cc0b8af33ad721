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

package link

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/framegate/framegate/curated"
)

// Command codes carried over the controller link. Codes one to six are
// reserved for controller-local toggles and are accepted as no-ops so a
// future controller revision can forward them without breaking older
// gated processes.
const (
	CmdToggleUp      uint32 = 1
	CmdToggleDown    uint32 = 2
	CmdToggleLeft    uint32 = 3
	CmdToggleRight   uint32 = 4
	CmdToggleSpace   uint32 = 5
	CmdToggleShift   uint32 = 6
	CmdTogglePause   uint32 = 7
	CmdAdvanceFrame  uint32 = 8
	CmdSetSpeed      uint32 = 9
	CmdSaveRecording uint32 = 10
	CmdLoadRecording uint32 = 11
)

// FilenameSize is the fixed size of the filename buffer in save and load
// commands. Shorter names are NUL padded.
const FilenameSize = 1024

// DefaultSocketPath is where the gated process binds its link socket when
// no other path has been arranged.
const DefaultSocketPath = "/tmp/framegate.socket"

// Sentinel errors for the link package.
const (
	// the filename in a save/load command exceeds the wire buffer.
	FilenameTooLong = "link: filename too long for wire buffer"

	// the link was closed by the peer.
	LinkClosed = "link: connection closed"
)

// all integers on the wire are little-endian fixed-width values
var wireOrder = binary.LittleEndian

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	wireOrder.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return wireOrder.Uint32(b[:]), nil
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	wireOrder.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return wireOrder.Uint64(b[:]), nil
}

// writeFilename sends a name as a fixed-size NUL padded buffer.
func writeFilename(w io.Writer, name string) error {
	if len(name) >= FilenameSize {
		return curated.Errorf(FilenameTooLong)
	}
	var b [FilenameSize]byte
	copy(b[:], name)
	_, err := w.Write(b[:])
	return err
}

// readFilename receives a fixed-size NUL padded filename buffer.
func readFilename(r io.Reader) (string, error) {
	var b [FilenameSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b[:], 0); i >= 0 {
		return string(b[:i]), nil
	}
	return string(b[:]), nil
}
