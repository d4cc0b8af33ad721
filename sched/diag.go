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

package sched

import (
	"fmt"
	"io"

	"github.com/bradleyjkemp/memviz"
)

// DumpGraph writes a graphviz (dot) representation of the scheduler's
// internal object graph to the io.Writer. Useful when diagnosing a frame
// that never completes: the participant statuses at the moment of the dump
// show which thread the gate is waiting on.
func (s *Scheduler) DumpGraph(output io.Writer) {
	s.crit.Lock()
	summary := fmt.Sprintf("// frame %d, epoch %d, state %s, participants %d\n",
		s.crit.frame, s.crit.epoch, s.crit.state, len(s.crit.participants))
	s.crit.Unlock()

	io.WriteString(output, summary)
	memviz.Map(output, s)
}
