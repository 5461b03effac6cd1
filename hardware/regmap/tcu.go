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

package regmap

import (
	"fmt"

	"github.com/Ardelean-Calin/periphcore/hardware/bus"
)

// NumTCU is the number of timer/counter unit instances.
const NumTCU = 3

// NumCC is the number of capture/compare channels per timer/counter unit.
const NumCC = 4

// base address of the first timer/counter unit. instances are laid out
// contiguously at 4KB intervals
//
// values from nRF52832 Product Specification v1.4, section 24
const (
	tcuBase   = 0x40008000
	tcuStride = 0x1000
)

// register offsets within a timer/counter unit instance.
const (
	tcuTasksStart    = 0x000
	tcuTasksStop     = 0x004
	tcuTasksCount    = 0x008
	tcuTasksClear    = 0x00c
	tcuTasksShutdown = 0x010
	tcuTasksCapture  = 0x040 // array of NumCC, 4 byte stride
	tcuEventsCompare = 0x140 // array of NumCC, 4 byte stride
	tcuShorts        = 0x200
	tcuIntenset      = 0x304
	tcuIntenclr      = 0x308
	tcuMode          = 0x504
	tcuBitmode       = 0x508
	tcuPrescaler     = 0x510
	tcuCC            = 0x540 // array of NumCC, 4 byte stride
)

// field values for the MODE register.
const (
	TCUModeTimer           = 0
	TCUModeCounter         = 1
	TCUModeLowPowerCounter = 2
)

// TCU is the register map of one timer/counter unit instance. Every field is
// the absolute address of the named hardware register.
type TCU struct {
	Base bus.Addr

	TasksStart    bus.Addr
	TasksStop     bus.Addr
	TasksCount    bus.Addr
	TasksClear    bus.Addr
	TasksShutdown bus.Addr
	TasksCapture  [NumCC]bus.Addr
	EventsCompare [NumCC]bus.Addr
	Shorts        bus.Addr
	Intenset      bus.Addr
	Intenclr      bus.Addr
	Mode          bus.Addr
	Bitmode       bus.Addr
	Prescaler     bus.Addr
	CC            [NumCC]bus.Addr
}

// TCURegisters returns the register map for the numbered timer/counter unit
// instance. The function panics if the instance number does not exist on the
// device. There is no recoverable condition in which an out of range instance
// can be asked for.
func TCURegisters(instance int) TCU {
	if instance < 0 || instance >= NumTCU {
		panic(fmt.Sprintf("regmap: no such timer/counter instance (%d)", instance))
	}

	base := bus.Addr(tcuBase + instance*tcuStride)

	m := TCU{
		Base:          base,
		TasksStart:    base + tcuTasksStart,
		TasksStop:     base + tcuTasksStop,
		TasksCount:    base + tcuTasksCount,
		TasksClear:    base + tcuTasksClear,
		TasksShutdown: base + tcuTasksShutdown,
		Shorts:        base + tcuShorts,
		Intenset:      base + tcuIntenset,
		Intenclr:      base + tcuIntenclr,
		Mode:          base + tcuMode,
		Bitmode:       base + tcuBitmode,
		Prescaler:     base + tcuPrescaler,
	}

	for i := 0; i < NumCC; i++ {
		m.TasksCapture[i] = base + tcuTasksCapture + bus.Addr(i*4)
		m.EventsCompare[i] = base + tcuEventsCompare + bus.Addr(i*4)
		m.CC[i] = base + tcuCC + bus.Addr(i*4)
	}

	return m
}

// Contains reports whether the address falls inside this instance's register
// block.
func (m TCU) Contains(a bus.Addr) bool {
	return a >= m.Base && a < m.Base+tcuStride
}

// TCUShortCompareClear returns the SHORTS register mask for the
// COMPARE[n]_CLEAR shortcut. When the shortcut is enabled a compare match on
// channel n clears the counter.
func TCUShortCompareClear(channel int) uint32 {
	return 1 << channel
}

// TCUShortCompareStop returns the SHORTS register mask for the
// COMPARE[n]_STOP shortcut. When the shortcut is enabled a compare match on
// channel n stops the timer.
func TCUShortCompareStop(channel int) uint32 {
	return 1 << (8 + channel)
}

// TCUIntCompare returns the INTENSET/INTENCLR register mask for the
// COMPARE[n] interrupt.
func TCUIntCompare(channel int) uint32 {
	return 1 << (16 + channel)
}
