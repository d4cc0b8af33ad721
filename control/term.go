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
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// terminal wraps "github.com/pkg/term/termios" with friendlier names for
// the two modes the controller uses. the menu reads whole lines in
// canonical mode; the running loop wants single keypresses and so uses
// cbreak mode.
type terminal struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios
}

func (trm *terminal) initialise(inputFile, outputFile *os.File) error {
	if inputFile == nil || outputFile == nil {
		return fmt.Errorf("terminal requires input and output files")
	}

	trm.input = inputFile
	trm.output = outputFile

	// remember the terminal's current attributes so canonicalMode can
	// restore them
	if err := termios.Tcgetattr(trm.input.Fd(), &trm.canAttr); err != nil {
		return err
	}
	trm.cbreakAttr = trm.canAttr
	termios.Cfmakecbreak(&trm.cbreakAttr)

	return nil
}

// canonicalMode puts terminal into normal, everyday canonical mode
func (trm *terminal) canonicalMode() {
	_ = termios.Tcsetattr(trm.input.Fd(), termios.TCIFLUSH, &trm.canAttr)
}

// cbreakMode puts terminal into cbreak mode
func (trm *terminal) cbreakMode() {
	_ = termios.Tcsetattr(trm.input.Fd(), termios.TCIFLUSH, &trm.cbreakAttr)
}

func (trm *terminal) print(s string, a ...any) {
	trm.output.WriteString(fmt.Sprintf(s, a...))
	_ = trm.output.Sync()
}
