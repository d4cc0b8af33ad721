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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/framegate/framegate/curated"
	"github.com/framegate/framegate/input"
	"github.com/framegate/framegate/sched"
	"github.com/framegate/framegate/thread"
)

// pollRate is the polling cadence of the controller, in ticks per second.
// frame throughput is reported relative to this.
const pollRate = 100

// Check measures how fast the frame gate can admit frames with the given
// number of worker threads parked at it. The workload is synthetic: each
// worker does nothing per frame but pass through the gate, so the result
// is an upper bound on frame throughput for a real program.
func Check(output io.Writer, profile Profile, runTime string, numThreads int) error {
	if numThreads < 1 {
		return curated.Errorf("performance: at least one thread required")
	}

	duration, err := time.ParseDuration(runTime)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	s := sched.NewScheduler(sched.AllQuiesced)
	rt := thread.NewRuntime(s)

	workers := make([]*thread.Thread, numThreads)
	for i := range workers {
		workers[i], err = rt.Create(fmt.Sprintf("worker %d", i), func(self *thread.Thread) any {
			for {
				self.FrameSync()
				if s.State() == sched.Ending {
					return nil
				}
			}
		})
		if err != nil {
			return err
		}
	}

	startFrame := s.Frame()
	startTime := time.Now()

	err = cpuProfile(profile, "cpu.profile", func() error {
		timesUp := make(chan bool)
		time.AfterFunc(duration, func() {
			timesUp <- true
		})

		for {
			select {
			case <-timesUp:
				return nil
			default:
			}

			if _, err := s.Advance(input.Snapshot{}); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime).Seconds()
	numFrames := int(s.Frame() - startFrame)

	// free the workers and wait for them to finish
	s.End()
	for _, w := range workers {
		if _, err := rt.Join(nil, w); err != nil {
			return err
		}
	}

	fps, accuracy := CalcFPS(numFrames, elapsed, pollRate)
	fmt.Fprintf(output, "%d frames in %.2fs: %.2f fps (%.1f%% of polling rate, %d threads)\n",
		numFrames, elapsed, fps, accuracy, numThreads)

	return memProfile(profile, "mem.profile")
}
