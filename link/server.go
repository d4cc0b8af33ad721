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
	"os"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/logger"
)

// Dispatcher is the surface of the gated process that the link drives.
// Commands arrive strictly one at a time; implementations never see
// concurrent calls from the same link.
type Dispatcher interface {
	// toggle between the paused and running states
	TogglePause()

	// admit exactly one frame with the given input snapshot, returning
	// the updated frame counter once the frame has run to completion
	AdvanceFrame(snap input.Snapshot) uint64

	// set the speed divisor for free-running frames. a zero divisor is
	// rejected with an error
	SetSpeedDivisor(divisor uint32) error

	// save the input recording to the named file, with playback expected
	// to begin at the given start frame
	SaveRecording(name string, start uint64) error

	// load a recording for playback. the return value indicates success
	LoadRecording(name string) bool

	// the controller has gone away. any threads waiting at the frame
	// gate must be released rather than left hanging
	Release()
}

// Server is the injected side of the controller link. It answers each
// command synchronously; the controller is the sole writer of commands
// and sole reader of replies.
type Server struct {
	path     string
	ln       net.Listener
	dispatch Dispatcher
}

// NewServer binds the link socket at path, removing any stale socket file
// left by a previous run.
func NewServer(path string, dispatch Dispatcher) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath
	}

	// a stale socket file from a crashed run prevents binding
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, curated.Errorf("link: %v", err)
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, curated.Errorf("link: %v", err)
	}

	logger.Logf(logger.Allow, "link", "listening on %s", path)

	return &Server{
		path:     path,
		ln:       ln,
		dispatch: dispatch,
	}, nil
}

// Path returns the filesystem path the link socket is bound at.
func (srv *Server) Path() string {
	return srv.path
}

// Serve accepts controller connections one at a time and runs the
// command loop for each. It returns when the listener is closed. Loss of
// an individual connection releases the gate and waits for the next
// controller.
func (srv *Server) Serve() error {
	for {
		conn, err := srv.ln.Accept()
		if err != nil {
			// the listener has been closed. this is the normal way out
			srv.dispatch.Release()
			return curated.Errorf(LinkClosed)
		}

		logger.Log(logger.Allow, "link", "controller connected")
		srv.command(conn)
		logger.Log(logger.Allow, "link", "controller disconnected")

		srv.dispatch.Release()
		_ = conn.Close()
	}
}

// Close shuts the link down. Any blocked Serve call returns.
func (srv *Server) Close() error {
	err := srv.ln.Close()
	_ = os.Remove(srv.path)
	return err
}

// command runs the request/reply loop for one controller connection,
// returning when the connection fails or is closed.
func (srv *Server) command(conn net.Conn) {
	for {
		code, err := readUint32(conn)
		if err != nil {
			if err != io.EOF {
				logger.Logf(logger.Allow, "link", "read: %v", err)
			}
			return
		}

		if err := srv.one(conn, code); err != nil {
			logger.Logf(logger.Allow, "link", "command %d: %v", code, err)
			return
		}
	}
}

// one reads the payload for a single command, dispatches it and writes
// the reply. An error return means the connection itself has failed;
// protocol misuse is reported and ignored without tearing the link down.
func (srv *Server) one(conn net.Conn, code uint32) error {
	switch code {
	case CmdTogglePause:
		srv.dispatch.TogglePause()

	case CmdAdvanceFrame:
		var raw [input.SnapshotSize]byte
		if _, err := io.ReadFull(conn, raw[:]); err != nil {
			return err
		}
		frame := srv.dispatch.AdvanceFrame(input.Snapshot(raw))
		return writeUint64(conn, frame)

	case CmdSetSpeed:
		divisor, err := readUint32(conn)
		if err != nil {
			return err
		}
		if err := srv.dispatch.SetSpeedDivisor(divisor); err != nil {
			// an invalid divisor has no wire reply. report and carry on
			logger.Logf(logger.Allow, "link", "set speed: %v", err)
		}

	case CmdSaveRecording:
		name, err := readFilename(conn)
		if err != nil {
			return err
		}
		start, err := readUint64(conn)
		if err != nil {
			return err
		}
		if err := srv.dispatch.SaveRecording(name, start); err != nil {
			logger.Logf(logger.Allow, "link", "save recording: %v", err)
		}

	case CmdLoadRecording:
		name, err := readFilename(conn)
		if err != nil {
			return err
		}
		var flag [1]byte
		if srv.dispatch.LoadRecording(name) {
			flag[0] = 1
		}
		if _, err := conn.Write(flag[:]); err != nil {
			return err
		}

	default:
		if code >= CmdToggleUp && code <= CmdToggleShift {
			// controller-local toggles. nothing for the gated process to
			// do but they are within the known range
			return nil
		}

		// out of range. no payload is read and no state changes
		logger.Logf(logger.Allow, "link", "ignoring unknown command code %d", code)
	}

	return nil
}
