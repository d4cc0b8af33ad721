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

// Package recorder writes and replays input recordings. A recording is a
// line-oriented text file: a short header followed by one line per frame
// carrying the frame number, the input snapshot and a chained fingerprint
// of the input history. The fingerprint lets playback detect divergence at
// the exact frame it happens rather than at the end of the session.
package recorder

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/digest"
	"github.com/framegate/framegate/input"
)

// Recorder transcribes one input snapshot per frame to a recording file.
type Recorder struct {
	output *os.File

	// session id written to the header. exposed for logging
	SessionID string

	digest *digest.Input

	// frames recorded so far
	numFrames int
}

// NewRecorder is the preferred method of initialisation for the Recorder
// type. The start frame is the frame counter value at which playback of
// the finished recording is expected to begin.
func NewRecorder(transcript string, startFrame uint64) (*Recorder, error) {
	rec := &Recorder{
		SessionID: uuid.NewString(),
		digest:    digest.NewInput(),
	}

	var err error
	rec.output, err = os.Create(transcript)
	if err != nil {
		return nil, curated.Errorf("recorder: %v", err)
	}

	if err := rec.writeHeader(startFrame); err != nil {
		return nil, err
	}

	return rec, nil
}

func (rec *Recorder) writeHeader(startFrame uint64) error {
	lines := make([]string, numHeaderLines)
	lines[lineVersion] = magic
	lines[lineSessionID] = rec.SessionID
	lines[lineStartFrame] = fmt.Sprintf("%d", startFrame)
	lines[lineDate] = time.Now().Format(time.RFC3339)

	line := strings.Join(lines, "\n") + "\n"

	n, err := io.WriteString(rec.output, line)
	if err != nil {
		_ = rec.output.Close()
		return curated.Errorf("recorder: %v", err)
	}
	if n != len(line) {
		_ = rec.output.Close()
		return curated.Errorf("recorder: output truncated")
	}

	return nil
}

// Record transcribes the input snapshot for one frame.
func (rec *Recorder) Record(frame uint64, snap input.Snapshot) error {
	hash := rec.digest.Fold(snap)

	line := fmt.Sprintf("%d%s%s%s%s\n", frame, fieldSep, snap.String(), fieldSep, hash)

	n, err := io.WriteString(rec.output, line)
	if err != nil {
		return curated.Errorf("recorder: %v", err)
	}
	if n != len(line) {
		return curated.Errorf("recorder: output truncated")
	}

	rec.numFrames++
	return nil
}

// NumFrames returns the number of frames recorded so far.
func (rec *Recorder) NumFrames() int {
	return rec.numFrames
}

// End closes the recording file. The Recorder must not be used after End.
func (rec *Recorder) End() error {
	if err := rec.output.Close(); err != nil {
		return curated.Errorf("recorder: %v", err)
	}
	return nil
}
