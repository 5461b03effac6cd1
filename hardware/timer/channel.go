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
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/ppi"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
)

// Channel is a handle to one capture/compare channel of a timer/counter
// unit. Channel handles are created with the Channel() function of the
// driver.
//
// The handle does not own the unit. It owns the channel's capture/compare
// register and, in the registers shared between channels, only the bits
// belonging to its own channel index.
type Channel struct {
	mem  bus.Bus
	regs regmap.TCU
	n    int
}

// Index returns the channel's index within its unit.
func (ch *Channel) Index() int {
	return ch.n
}

// Read returns the value stored in the channel's capture/compare register.
func (ch *Channel) Read() uint32 {
	return ch.mem.Read32(ch.regs.CC[ch.n])
}

// Write stores a compare value in the channel's capture/compare register.
// The full 32-bit range is accepted; values beyond the selected counting
// width simply never match.
func (ch *Channel) Write(v uint32) {
	ch.mem.Write32(ch.regs.CC[ch.n], v)
}

// Capture triggers the channel's capture task, which copies the current
// counter value into the capture/compare register, and returns the captured
// value.
//
// The trigger write is synchronous with respect to the read-back on this
// platform family, so the returned value is the one captured by this call and
// never a stale earlier value.
func (ch *Channel) Capture() uint32 {
	ch.mem.Write32(ch.regs.TasksCapture[ch.n], 1)
	return ch.mem.Read32(ch.regs.CC[ch.n])
}

// TaskCapture returns a handle to the channel's capture task, for wiring
// through the interconnect.
func (ch *Channel) TaskCapture() ppi.Task {
	return ppi.TaskAt(ch.regs.TasksCapture[ch.n])
}

// EventCompare returns a handle to the channel's compare event. The event
// fires when the counter reaches the value stored in the capture/compare
// register.
func (ch *Channel) EventCompare() ppi.Event {
	return ppi.EventAt(ch.regs.EventsCompare[ch.n])
}

// EnableShortcutClear wires the channel's compare event to the clear task
// inside the unit: the instant the compare condition fires, the hardware
// resets the counter to zero with no processor involvement.
//
// The shortcut register is shared between the four channels so the bit is set
// with an atomic read-modify-write.
func (ch *Channel) EnableShortcutClear() {
	ch.mem.SetBits32(ch.regs.Shorts, regmap.TCUShortCompareClear(ch.n))
}

// DisableShortcutClear removes the compare-to-clear wiring.
func (ch *Channel) DisableShortcutClear() {
	ch.mem.ClearBits32(ch.regs.Shorts, regmap.TCUShortCompareClear(ch.n))
}

// EnableShortcutStop wires the channel's compare event to the stop task
// inside the unit: the counter stops on compare match.
func (ch *Channel) EnableShortcutStop() {
	ch.mem.SetBits32(ch.regs.Shorts, regmap.TCUShortCompareStop(ch.n))
}

// DisableShortcutStop removes the compare-to-stop wiring.
func (ch *Channel) DisableShortcutStop() {
	ch.mem.ClearBits32(ch.regs.Shorts, regmap.TCUShortCompareStop(ch.n))
}

// Close disables the channel's compare interrupt so that no interrupt source
// outlives the handle. Close must be called when the handle is no longer
// needed.
//
// The interrupt-clear register is write-one-to-clear: writing the channel's
// bit affects that bit alone, so Close never disturbs the other channels and
// is safe to call while they are in use. Calling Close more than once is
// harmless.
func (ch *Channel) Close() {
	ch.mem.Write32(ch.regs.Intenclr, regmap.TCUIntCompare(ch.n))
}
