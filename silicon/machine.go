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

package silicon

import (
	"sync"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/ppi"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/logger"
)

// UnmappedAddress is returned by Peek() and Poke() for addresses no modelled
// block answers to. Test for it with curated.Is().
const UnmappedAddress = "silicon: unmapped address (%#08x)"

// wired events are forwarded through at most this many hops. a deeper chain
// is almost certainly a loop the user has wired by accident
const maxWireDepth = 8

// Machine is the simulated device. It implements the bus.Bus interface and
// is given to the drivers as their register access surface.
//
// One mutex serialises every access to the machine, which is what makes the
// bit-set and bit-clear operations of the Bus interface atomic.
type Machine struct {
	crit sync.Mutex

	tcu [regmap.NumTCU]*tcu
	fmc *fmc

	// event register -> task registers, as configured by Wire()
	wires map[bus.Addr][]bus.Addr

	// current depth of event forwarding. guarded by crit like everything
	// else
	wireDepth int
}

// NewMachine is the preferred method of initialisation for the Machine type.
// The machine powers up the way the real device resets: timers stopped and
// zeroed, flash controller locked, flash memory erased throughout.
func NewMachine() *Machine {
	m := &Machine{
		wires: make(map[bus.Addr][]bus.Addr),
	}

	for i := range m.tcu {
		m.tcu[i] = newTCU(i, m.forward)
	}
	m.fmc = newFMC()

	logger.Logf(logger.Allow, "silicon", "machine powered: %d timer/counter units, %dKB flash",
		regmap.NumTCU, regmap.FlashSize/1024)

	return m
}

// Tick advances the 16MHz base clock by the given number of cycles. Running
// timers count up with it; everything else is unclocked.
func (m *Machine) Tick(cycles int) {
	m.crit.Lock()
	defer m.crit.Unlock()

	for _, t := range m.tcu {
		t.tick(cycles)
	}
}

// Wire connects an event register to a task register, standing in for the
// external interconnect: whenever the event is raised the machine triggers
// the task, with no processor involvement.
//
// An event can be wired to any number of tasks. Forwarding is depth-limited
// so that a wiring loop degrades into dropped triggers rather than a hang.
func (m *Machine) Wire(e ppi.Event, t ppi.Task) {
	m.crit.Lock()
	defer m.crit.Unlock()

	m.wires[e.Reg()] = append(m.wires[e.Reg()], t.Reg())
	logger.Logf(logger.Allow, "silicon", "wired event %#08x to task %#08x", uint32(e.Reg()), uint32(t.Reg()))
}

// forward a raised event to the tasks wired to it. called from the unit
// models with the machine lock already held.
func (m *Machine) forward(event bus.Addr) {
	if m.wireDepth >= maxWireDepth {
		logger.Logf(logger.Allow, "silicon", "wire depth exceeded, dropping trigger of event %#08x", uint32(event))
		return
	}

	m.wireDepth++
	for _, task := range m.wires[event] {
		m.write32(task, 1)
	}
	m.wireDepth--
}

// Read32 implements the bus.Bus interface.
func (m *Machine) Read32(a bus.Addr) uint32 {
	m.crit.Lock()
	defer m.crit.Unlock()
	return m.read32(a)
}

// Write32 implements the bus.Bus interface.
func (m *Machine) Write32(a bus.Addr, v uint32) {
	m.crit.Lock()
	defer m.crit.Unlock()
	m.write32(a, v)
}

// SetBits32 implements the bus.Bus interface. The read-modify-write runs
// entirely inside the machine's critical section.
func (m *Machine) SetBits32(a bus.Addr, mask uint32) {
	m.crit.Lock()
	defer m.crit.Unlock()
	m.write32(a, m.read32(a)|mask)
}

// ClearBits32 implements the bus.Bus interface. The read-modify-write runs
// entirely inside the machine's critical section.
func (m *Machine) ClearBits32(a bus.Addr, mask uint32) {
	m.crit.Lock()
	defer m.crit.Unlock()
	m.write32(a, m.read32(a)&^mask)
}

// Read16 implements the bus.Bus interface. Half-word access exists for flash
// memory; the peripheral registers are word access only.
func (m *Machine) Read16(a bus.Addr) uint16 {
	m.crit.Lock()
	defer m.crit.Unlock()

	v, err := m.fmc.readData16(a)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// Write16 implements the bus.Bus interface. A half-word store into the flash
// region is a programming request and lands in the flash controller.
func (m *Machine) Write16(a bus.Addr, v uint16) {
	m.crit.Lock()
	defer m.crit.Unlock()

	if err := m.fmc.program(a, v); err != nil {
		panic(err.Error())
	}
}

// Fence implements the bus.Bus interface. The mutex serialises every access
// already so there is no reordering to prevent.
func (m *Machine) Fence() {
}

// read32 dispatches a word read to the block that answers to the address.
// Unmapped addresses panic: the drivers only read addresses from the regmap
// package and an unmapped read can only be a programming mistake.
func (m *Machine) read32(a bus.Addr) uint32 {
	v, err := m.read32e(a)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// write32 is the store counterpart to read32.
func (m *Machine) write32(a bus.Addr, v uint32) {
	if err := m.write32e(a, v); err != nil {
		panic(err.Error())
	}
}

func (m *Machine) read32e(a bus.Addr) (uint32, error) {
	for _, t := range m.tcu {
		if t.regs.Contains(a) {
			return t.read32(a)
		}
	}
	if m.fmc.regs.Contains(a) {
		return m.fmc.read32(a)
	}
	if inFlashData(a) {
		return m.fmc.readData32(a)
	}
	return 0, curated.Errorf(UnmappedAddress, uint32(a))
}

func (m *Machine) write32e(a bus.Addr, v uint32) error {
	for _, t := range m.tcu {
		if t.regs.Contains(a) {
			return t.write32(a, v)
		}
	}
	if m.fmc.regs.Contains(a) {
		return m.fmc.write32(a, v)
	}
	if inFlashData(a) {
		return curated.Errorf("silicon: flash memory is programmed through the controller (%#08x)", uint32(a))
	}
	return curated.Errorf(UnmappedAddress, uint32(a))
}

// Peek returns the value of a mapped register or flash word without the side
// effects of a bus access. Peeking the flash status register, for instance,
// does not count as a completion poll.
func (m *Machine) Peek(a bus.Addr) (uint32, error) {
	m.crit.Lock()
	defer m.crit.Unlock()

	for _, t := range m.tcu {
		if t.regs.Contains(a) {
			return t.read32(a)
		}
	}
	if m.fmc.regs.Contains(a) {
		return m.fmc.peek32(a)
	}
	if inFlashData(a) {
		return m.fmc.readData32(a)
	}
	return 0, curated.Errorf(UnmappedAddress, uint32(a))
}

// Poke stores a value to a mapped register with full bus semantics: poking a
// task register triggers the task. Unlike a raw Write32, an unmapped address
// is reported as an error rather than a panic, since pokes tend to originate
// from user input.
func (m *Machine) Poke(a bus.Addr, v uint32) error {
	m.crit.Lock()
	defer m.crit.Unlock()
	return m.write32e(a, v)
}

// ProtectRegion marks a region of flash as write protected. Programming or
// erasing inside the region fails the way the reference manual says it must:
// the controller latches its write protection flag and leaves the cells
// untouched.
func (m *Machine) ProtectRegion(start uint32, size uint32) {
	m.crit.Lock()
	defer m.crit.Unlock()

	m.fmc.protected = append(m.fmc.protected, region{start: start, size: size})
	logger.Logf(logger.Allow, "silicon", "write protected [%#08x,%#08x)", start, start+size)
}

// SuppressEOP configures the flash controller to never raise its
// end-of-operation flag, simulating an erase that finishes without
// completing.
func (m *Machine) SuppressEOP(suppress bool) {
	m.crit.Lock()
	defer m.crit.Unlock()

	m.fmc.suppressEOP = suppress
}

func inFlashData(a bus.Addr) bool {
	return a >= regmap.FlashOrigin && a < regmap.FlashOrigin+regmap.FlashSize
}
