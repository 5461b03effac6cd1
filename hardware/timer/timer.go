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

package timer

import (
	"fmt"

	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/ppi"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/logger"
)

// core carries the state shared by the driver in all three modes. The
// mode-independent operations are defined on core and promoted into
// TimerCounter, Timer and Counter through embedding.
type core struct {
	mem      bus.Bus
	regs     regmap.TCU
	instance int
}

// TimerCounter is an unconfigured timer/counter unit. It is the type returned
// by New() and the only type from which Timer and Counter can be reached.
type TimerCounter struct {
	core

	// set by the first transition. the zero value means the handle is live
	transitioned bool
}

// New is the preferred method of initialisation for the TimerCounter type.
// It binds the numbered physical instance and puts it into a known state:
// stopped, counter at zero, all four capture/compare registers zeroed and
// every shortcut disabled.
//
// Binding has no error path. The instance number is checked against the
// number of units on the device and an impossible instance panics.
//
// Re-binding an instance while handles from a previous binding are still in
// use is not detected. The caller must not do that.
func New(mem bus.Bus, instance int) *TimerCounter {
	t := &TimerCounter{
		core: core{
			mem:      mem,
			regs:     regmap.TCURegisters(instance),
			instance: instance,
		},
	}

	t.Stop()
	t.Clear()
	for i := 0; i < regmap.NumCC; i++ {
		t.mem.Write32(t.regs.CC[i], 0)
	}
	t.mem.Write32(t.regs.Shorts, 0)

	logger.Logf(logger.Allow, "timer", "bound instance %d", instance)

	return t
}

// IntoTimer transitions the unit into timer mode, in which the counter
// increments at the frequency selected with SetFrequency().
//
// The transition is one-way and consumes the TimerCounter. A second
// transition attempt on the same handle panics.
func (t *TimerCounter) IntoTimer() *Timer {
	t.transition(regmap.TCUModeTimer)
	logger.Logf(logger.Allow, "timer", "instance %d: timer mode", t.instance)
	return &Timer{core: t.core}
}

// IntoCounter transitions the unit into counter mode, in which the counter
// increments once for every trigger of the count task.
//
// The transition is one-way and consumes the TimerCounter. A second
// transition attempt on the same handle panics.
func (t *TimerCounter) IntoCounter() *Counter {
	// the low power counter mode is used in preference to the deprecated
	// counter mode value
	t.transition(regmap.TCUModeLowPowerCounter)
	logger.Logf(logger.Allow, "timer", "instance %d: counter mode", t.instance)
	return &Counter{core: t.core}
}

func (t *TimerCounter) transition(mode uint32) {
	if t.transitioned {
		panic(fmt.Sprintf("timer: instance %d: transition of a consumed handle", t.instance))
	}
	t.transitioned = true
	t.mem.Write32(t.regs.Mode, mode)
}

// Timer is a timer/counter unit in timer mode.
type Timer struct {
	core
}

// SetFrequency selects the tick frequency. The unit is stopped before the
// prescaler is written; changing the prescaler of a running timer is
// undefined behaviour on the real device.
func (t *Timer) SetFrequency(f Frequency) {
	t.Stop()
	t.mem.Write32(t.regs.Prescaler, uint32(f))
}

// Counter is a timer/counter unit in counter mode.
type Counter struct {
	core
}

// TaskCount returns a handle to the count task. Each trigger of the task
// increments the counter by one. The count task is only honoured by the
// hardware in counter mode, which is why the handle cannot be exported from
// the other modes.
func (c *Counter) TaskCount() ppi.Task {
	return ppi.TaskAt(c.regs.TasksCount)
}

// Start the unit. In timer mode the counter begins incrementing at the
// selected frequency; in counter mode the unit begins honouring count
// triggers.
//
// Like all task triggers, Start is a fire-and-forget write. There is nothing
// to observe for completion and no failure path.
func (c *core) Start() {
	c.mem.Write32(c.regs.TasksStart, 1)
}

// Stop the unit. The counter value is retained.
func (c *core) Stop() {
	c.mem.Write32(c.regs.TasksStop, 1)
}

// Clear resets the counter to zero. The unit keeps running if it was running.
func (c *core) Clear() {
	c.mem.Write32(c.regs.TasksClear, 1)
}

// Shutdown stops the unit and powers it down.
func (c *core) Shutdown() {
	c.mem.Write32(c.regs.TasksShutdown, 1)
}

// SetBitmode selects the counting width. The unit is stopped before the
// width is written; changing the width of a running timer is undefined
// behaviour on the real device.
//
// Setting the same width twice is harmless and leaves the hardware in the
// same state.
func (c *core) SetBitmode(b Bitmode) {
	c.Stop()
	c.mem.Write32(c.regs.Bitmode, uint32(b))
}

// Bitmode reads back the currently selected counting width.
func (c *core) Bitmode() Bitmode {
	return Bitmode(c.mem.Read32(c.regs.Bitmode))
}

// Instance returns the physical instance number the driver is bound to.
func (c *core) Instance() int {
	return c.instance
}

// Channel returns a handle to one of the four capture/compare channels.
// Channel panics for an index outside [0,4); the modelled variant has exactly
// four channels and asking for any other is a contract violation, not a
// recoverable condition.
//
// Handles for different channels of the same unit may be used concurrently.
func (c *core) Channel(n int) *Channel {
	if n < 0 || n >= regmap.NumCC {
		panic(fmt.Sprintf("timer: instance %d: no such capture/compare channel (%d)", c.instance, n))
	}
	return &Channel{mem: c.mem, regs: c.regs, n: n}
}

// TaskStart returns a handle to the start task, for wiring through the
// interconnect.
func (c *core) TaskStart() ppi.Task {
	return ppi.TaskAt(c.regs.TasksStart)
}

// TaskStop returns a handle to the stop task, for wiring through the
// interconnect.
func (c *core) TaskStop() ppi.Task {
	return ppi.TaskAt(c.regs.TasksStop)
}

// TaskClear returns a handle to the clear task, for wiring through the
// interconnect.
func (c *core) TaskClear() ppi.Task {
	return ppi.TaskAt(c.regs.TasksClear)
}

// TaskShutdown returns a handle to the shutdown task, for wiring through the
// interconnect.
func (c *core) TaskShutdown() ppi.Task {
	return ppi.TaskAt(c.regs.TasksShutdown)
}
