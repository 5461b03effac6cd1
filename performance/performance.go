// This file is part of Periphcore.
//
// Periphcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Periphcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Periphcore.  If not, see <https://www.gnu.org/licenses/>.

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/flash"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/hardware/timer"
	"github.com/Ardelean-Calin/periphcore/silicon"
)

// only check for the end of the measurement period every performanceBrake
// tick batches. checking the timer channel is relatively expensive
const performanceBrake = 100

// Check the performance of the simulated machine.
//
// The machine is run flat out for the specified duration, split evenly
// between two workloads: a 16MHz timer with a compare-to-clear shortcut, and
// a flash erase/program cycle. A cpu profile, a memory profile, a trace (or a
// combination of those) is created as defined by the Profile argument.
//
// The batch argument is the number of base clock cycles advanced per call to
// the machine's Tick(). Larger batches amortise the locking overhead of the
// machine.
func Check(output io.Writer, profile Profile, duration string, batch int) error {
	if batch < 1 {
		return curated.Errorf("performance: tick batch must be positive (%d)", batch)
	}

	mc := silicon.NewMachine()

	// the timer workload keeps the compare machinery busy: the counter runs
	// to the compare value and is cleared by the shortcut, over and over
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetFrequency(timer.F16MHz)
	ch := tmr.Channel(0)
	ch.Write(1000)
	ch.EnableShortcutClear()
	tmr.Start()

	// the flash workload erases one sector and reprograms part of it, over
	// and over
	fl := flash.NewFlash(mc)
	sector, err := flash.SectorAt(regmap.FlashOrigin + regmap.FlashSectorSize)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	block := make([]byte, 64)
	for i := range block {
		block[i] = byte(i)
	}

	// parse supplied duration
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	var cycles int64
	var clockSeconds float64
	var erases int64
	var writes int64
	var flashSeconds float64

	runner := func() error {
		// first phase: the base clock and the timer
		done := time.After(dur / 2)
		start := time.Now()

		brake := 0
		running := true
		for running {
			mc.Tick(batch)
			cycles += int64(batch)

			brake++
			if brake >= performanceBrake {
				brake = 0
				select {
				case <-done:
					running = false
				default:
				}
			}
		}
		clockSeconds = time.Since(start).Seconds()

		// second phase: the flash engine. every pass is expensive so the
		// timer channel is checked every pass
		fl.Unlock()
		defer fl.Lock()

		done = time.After(dur - dur/2)
		start = time.Now()

		running = true
		for running {
			if err := fl.EraseSector(sector); err != nil {
				return err
			}
			erases++

			if err := fl.Write(sector.Start, block); err != nil {
				return err
			}
			writes++

			select {
			case <-done:
				running = false
			default:
			}
		}
		flashSeconds = time.Since(start).Seconds()

		return nil
	}

	// launch runner directly or through the profiler, depending on supplied
	// arguments
	err = RunProfiler(profile, "performance", runner)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	mhz, speedup := CalcClock(cycles, clockSeconds)
	output.Write([]byte(fmt.Sprintf("%.2f MHz simulated clock (x%.1f the real device) over %.2f seconds\n",
		mhz, speedup, clockSeconds)))

	ops := float64(erases+writes) / flashSeconds
	output.Write([]byte(fmt.Sprintf("%.0f flash operations per second (%d erases, %d writes) over %.2f seconds\n",
		ops, erases, writes, flashSeconds)))

	return nil
}
