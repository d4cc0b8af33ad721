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

package recorder

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/digest"
	"github.com/framegate/framegate/input"
)

// Sentinel errors for playback.
const (
	// the recording's chained fingerprint does not match the input
	// sequence being replayed.
	PlaybackHashError = "playback: recording diverged at frame %d"

	// playback has run out of recorded frames.
	PlaybackEnded = "playback: no more recorded frames"
)

type playbackEntry struct {
	frame uint64
	snap  input.Snapshot
	hash  string

	// the line in the recording file the entry appears on
	line int
}

// Playback replays the input snapshots of a previously recorded session,
// one per frame, verifying the chained fingerprint as it goes.
type Playback struct {
	transcript string

	// header values as read from the recording file
	SessionID  string
	StartFrame uint64

	sequence []playbackEntry
	seqCt    int

	digest *digest.Input
}

func (plb *Playback) String() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", plb.seqCt, len(plb.sequence),
		100*(float64(plb.seqCt)/float64(len(plb.sequence))))
}

// NewPlayback is the preferred method of initialisation for the Playback
// type.
func NewPlayback(transcript string) (*Playback, error) {
	plb := &Playback{
		transcript: transcript,
		sequence:   make([]playbackEntry, 0),
		digest:     digest.NewInput(),
	}

	tf, err := os.Open(transcript)
	if err != nil {
		return nil, curated.Errorf("playback: %v", err)
	}
	buffer, err := io.ReadAll(tf)
	if err != nil {
		_ = tf.Close()
		return nil, curated.Errorf("playback: %v", err)
	}
	if err := tf.Close(); err != nil {
		return nil, curated.Errorf("playback: %v", err)
	}

	lines := strings.Split(string(buffer), "\n")

	if err := plb.readHeader(lines); err != nil {
		return nil, err
	}

	for i := numHeaderLines; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}

		toks := strings.Split(lines[i], fieldSep)
		if len(toks) != numFields {
			return nil, curated.Errorf("playback: expected %d fields at line %d", numFields, i+1)
		}

		entry := playbackEntry{line: i + 1, hash: toks[fieldHash]}

		entry.frame, err = strconv.ParseUint(toks[fieldFrame], 10, 64)
		if err != nil {
			return nil, curated.Errorf("playback: %v at line %d", err, i+1)
		}

		var ok bool
		entry.snap, ok = input.ParseSnapshot(toks[fieldSnapshot])
		if !ok {
			return nil, curated.Errorf("playback: bad snapshot encoding at line %d", i+1)
		}

		plb.sequence = append(plb.sequence, entry)
	}

	return plb, nil
}

func (plb *Playback) readHeader(lines []string) error {
	if len(lines) < numHeaderLines {
		return curated.Errorf("playback: not a recording file")
	}
	if lines[lineVersion] != magic {
		return curated.Errorf("playback: unrecognised recording version")
	}

	plb.SessionID = lines[lineSessionID]

	var err error
	plb.StartFrame, err = strconv.ParseUint(lines[lineStartFrame], 10, 64)
	if err != nil {
		return curated.Errorf("playback: bad start frame: %v", err)
	}

	return nil
}

// NumFrames returns the total number of recorded frames.
func (plb *Playback) NumFrames() int {
	return len(plb.sequence)
}

// EndFrame returns true if playback has replayed every recorded frame.
func (plb *Playback) EndFrame() bool {
	return plb.seqCt >= len(plb.sequence)
}

// Next returns the input snapshot for the next frame of the recording,
// verifying the chained fingerprint. A fingerprint mismatch means the file
// has been corrupted or tampered with and stops the playback at the frame
// of divergence.
func (plb *Playback) Next() (input.Snapshot, error) {
	if plb.EndFrame() {
		return input.Snapshot{}, curated.Errorf(PlaybackEnded)
	}

	entry := plb.sequence[plb.seqCt]

	hash := plb.digest.Fold(entry.snap)
	if hash != entry.hash {
		// poison the sequence so playback cannot continue past the
		// divergence
		plb.seqCt = len(plb.sequence)
		return input.Snapshot{}, curated.Errorf(PlaybackHashError, entry.frame)
	}

	plb.seqCt++
	return entry.snap, nil
}
