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

// Package launcher starts a gated program and hands its link socket to
// the controller. The program runs on its own pty so its terminal output
// does not interleave with the controller's menu.
package launcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/injection"
	"github.com/framegate/framegate/logger"
)

// how long Launch waits for the gated program to bind its link socket.
const socketWait = 10 * time.Second

// Launcher supervises one gated program process.
type Launcher struct {
	cmd *exec.Cmd
	pty *os.File

	// filesystem path the gated program was told to bind its link socket
	// at
	SocketPath string
}

// Launch starts the gated program with the link socket path in its
// environment and waits for the socket to be bound. The returned Launcher
// owns the process.
func Launch(binary string, args []string, socketPath string) (*Launcher, error) {
	lnc := &Launcher{SocketPath: socketPath}

	lnc.cmd = exec.Command(binary, args...)
	lnc.cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%s", injection.SocketEnv, socketPath))

	var err error
	lnc.pty, err = pty.Start(lnc.cmd)
	if err != nil {
		return nil, curated.Errorf("launcher: %v", err)
	}

	logger.Logf(logger.Allow, "launcher", "started %s (pid %d)", binary, lnc.cmd.Process.Pid)

	// the program binds the socket during its own initialisation. wait
	// for it to appear before handing control to the controller
	deadline := time.Now().Add(socketWait)
	for {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			lnc.Kill()
			return nil, curated.Errorf("launcher: %s never bound its link socket", binary)
		}
		time.Sleep(50 * time.Millisecond)
	}

	return lnc, nil
}

// Output returns the gated program's pty. Reading it drains the program's
// terminal output.
func (lnc *Launcher) Output() io.Reader {
	return lnc.pty
}

// Wait blocks until the gated program exits.
func (lnc *Launcher) Wait() error {
	defer lnc.pty.Close()
	if err := lnc.cmd.Wait(); err != nil {
		return curated.Errorf("launcher: %v", err)
	}
	return nil
}

// Kill the gated program. The process is not given a chance to clean up.
func (lnc *Launcher) Kill() {
	_ = lnc.cmd.Process.Kill()
	_ = lnc.pty.Close()
}
