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
	"io"
	"net"
	"time"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/input"
)

// Client is the controller side of the link. Its methods mirror the wire
// commands; each is a synchronous request/reply exchange. A Client is not
// safe for concurrent use, matching the one-in-flight rule of the
// protocol.
type Client struct {
	conn net.Conn
}

// Connect dials the link socket at path. The connection attempt is
// retried until the deadline passes, allowing the controller to start
// before the gated process has bound its socket.
func Connect(path string, deadline time.Duration) (*Client, error) {
	if path == "" {
		path = DefaultSocketPath
	}

	end := time.Now().Add(deadline)
	for {
		conn, err := net.Dial("unix", path)
		if err == nil {
			return &Client{conn: conn}, nil
		}
		if time.Now().After(end) {
			return nil, curated.Errorf("link: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Close the connection to the gated process.
func (c *Client) Close() error {
	return c.conn.Close()
}

// TogglePause switches the gated process between the paused and running
// states.
func (c *Client) TogglePause() error {
	return writeUint32(c.conn, CmdTogglePause)
}

// AdvanceFrame admits exactly one frame with the given input snapshot and
// returns the updated frame counter.
func (c *Client) AdvanceFrame(snap input.Snapshot) (uint64, error) {
	if err := writeUint32(c.conn, CmdAdvanceFrame); err != nil {
		return 0, curated.Errorf("link: %v", err)
	}
	if _, err := c.conn.Write(snap[:]); err != nil {
		return 0, curated.Errorf("link: %v", err)
	}
	frame, err := readUint64(c.conn)
	if err != nil {
		return 0, curated.Errorf("link: %v", err)
	}
	return frame, nil
}

// SetSpeedDivisor asks the gated process to admit free-running frames at
// one per divisor polling ticks.
func (c *Client) SetSpeedDivisor(divisor uint32) error {
	if err := writeUint32(c.conn, CmdSetSpeed); err != nil {
		return curated.Errorf("link: %v", err)
	}
	return writeUint32(c.conn, divisor)
}

// SaveRecording asks the gated process to write its input recording to
// the named file.
func (c *Client) SaveRecording(name string, start uint64) error {
	if err := writeUint32(c.conn, CmdSaveRecording); err != nil {
		return curated.Errorf("link: %v", err)
	}
	if err := writeFilename(c.conn, name); err != nil {
		return err
	}
	return writeUint64(c.conn, start)
}

// LoadRecording asks the gated process to load the named recording for
// playback. The returned flag indicates whether the load succeeded.
func (c *Client) LoadRecording(name string) (bool, error) {
	if err := writeUint32(c.conn, CmdLoadRecording); err != nil {
		return false, curated.Errorf("link: %v", err)
	}
	if err := writeFilename(c.conn, name); err != nil {
		return false, err
	}
	var flag [1]byte
	if _, err := io.ReadFull(c.conn, flag[:]); err != nil {
		return false, curated.Errorf("link: %v", err)
	}
	return flag[0] == 1, nil
}
