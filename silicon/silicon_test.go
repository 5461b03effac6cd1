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

package silicon_test

import (
	"testing"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/ppi"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/silicon"
	"github.com/Ardelean-Calin/periphcore/test"
)

// unlock the flash controller with raw register writes. the silicon tests
// poke registers directly rather than going through the drivers; the drivers
// have their own tests
func unlockFlash(mc *silicon.Machine) {
	regs := regmap.FMCRegisters()
	mc.Write32(regs.Keyr, regmap.FlashKey1)
	mc.Write32(regs.Keyr, regmap.FlashKey2)
}

func TestPeekIsNotAPoll(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.FMCRegisters()

	unlockFlash(mc)
	mc.Write32(regs.Cr, regmap.CrPg)
	mc.Write16(regmap.FlashOrigin, 0x1234)

	// peeking the status register does not bring completion closer: the
	// busy flag is still set after any number of peeks
	for i := 0; i < 10; i++ {
		sr, err := mc.Peek(regs.Sr)
		test.ExpectedSuccess(t, err)
		test.Equate(t, sr&regmap.SrBsy, regmap.SrBsy)
	}

	// bus reads are completion polls and the operation finishes after a
	// finite number of them
	polls := 0
	for mc.Read32(regs.Sr)&regmap.SrBsy != 0 {
		polls++
	}
	test.Equate(t, polls > 0, true)

	test.Equate(t, mc.Read16(regmap.FlashOrigin), 0x1234)
}

func TestWrongKeyLocksOut(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.FMCRegisters()

	mc.Write32(regs.Keyr, regmap.FlashKey1)
	mc.Write32(regs.Keyr, 0xdeadbeef)

	// once the sequence has gone wrong even the correct keys are refused
	// until reset
	unlockFlash(mc)
	test.Equate(t, mc.Read32(regs.Cr)&regmap.CrLock, regmap.CrLock)

	// and the control register stays unwritable
	mc.Write32(regs.Cr, regmap.CrPg)
	test.Equate(t, mc.Read32(regs.Cr), regmap.CrLock)
}

func TestMassErase(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.FMCRegisters()

	unlockFlash(mc)
	mc.Write32(regs.Cr, regmap.CrPg)
	mc.Write16(regmap.FlashOrigin, 0x1111)
	mc.Write16(regmap.FlashOrigin+regmap.FlashSectorSize, 0x2222)
	for mc.Read32(regs.Sr)&regmap.SrBsy != 0 {
	}
	mc.Write32(regs.Sr, regmap.SrEop)

	// mass erase by register sequence
	mc.Write32(regs.Cr, regmap.CrMer)
	mc.Write32(regs.Cr, regmap.CrMer|regmap.CrStrt)
	for mc.Read32(regs.Sr)&regmap.SrBsy != 0 {
	}

	// the start bit was cleared by hardware, the end of operation flag
	// raised, and every cell restored to its unprogrammed state
	test.Equate(t, mc.Read32(regs.Cr)&regmap.CrStrt, 0)
	test.Equate(t, mc.Read32(regs.Sr)&regmap.SrEop, regmap.SrEop)
	test.Equate(t, mc.Read16(regmap.FlashOrigin), 0xffff)
	test.Equate(t, mc.Read16(regmap.FlashOrigin+regmap.FlashSectorSize), 0xffff)
}

func TestEraseWithoutMode(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.FMCRegisters()

	unlockFlash(mc)

	// starting an erase with neither erase mode selected is an invalid
	// sequence
	mc.Write32(regs.Cr, regmap.CrStrt)
	test.Equate(t, mc.Read32(regs.Sr)&regmap.SrPgErr, regmap.SrPgErr)
}

func TestWireFanOut(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.TCURegisters(0)

	// compare channel 0 fires at 10 and is wired to both the stop and the
	// clear task of its own unit
	mc.Write32(regs.Mode, regmap.TCUModeTimer)
	mc.Write32(regs.Bitmode, 3) // 32bit counting
	mc.Write32(regs.CC[0], 10)
	mc.Wire(ppi.EventAt(regs.EventsCompare[0]), ppi.TaskAt(regs.TasksStop))
	mc.Wire(ppi.EventAt(regs.EventsCompare[0]), ppi.TaskAt(regs.TasksClear))
	mc.Write32(regs.TasksStart, 1)

	mc.Tick(100)

	// both wired tasks triggered: the counter was stopped and cleared
	mc.Write32(regs.TasksCapture[1], 1)
	test.Equate(t, mc.Read32(regs.CC[1]), 0)
	test.Equate(t, mc.Read32(regs.EventsCompare[0]), 1)
}

func TestSoftwareRaisedEvent(t *testing.T) {
	mc := silicon.NewMachine()
	regs0 := regmap.TCURegisters(0)
	regs1 := regmap.TCURegisters(1)

	// a counter on instance 1 counts the triggers forwarded from an event
	// register on instance 0
	mc.Write32(regs1.Mode, regmap.TCUModeLowPowerCounter)
	mc.Write32(regs1.TasksStart, 1)
	mc.Wire(ppi.EventAt(regs0.EventsCompare[2]), ppi.TaskAt(regs1.TasksCount))

	// raising the event in software forwards it. raising an already raised
	// event is not a transition and forwards nothing
	mc.Write32(regs0.EventsCompare[2], 1)
	mc.Write32(regs0.EventsCompare[2], 1)
	mc.Write32(regs1.TasksCapture[0], 1)
	test.Equate(t, mc.Read32(regs1.CC[0]), 1)

	// acknowledge and raise again
	mc.Write32(regs0.EventsCompare[2], 0)
	mc.Write32(regs0.EventsCompare[2], 1)
	mc.Write32(regs1.TasksCapture[0], 1)
	test.Equate(t, mc.Read32(regs1.CC[0]), 2)
}

func TestWireDepthLimit(t *testing.T) {
	mc := silicon.NewMachine()

	// chain the event registers of all three instances into one long
	// daisy chain by wiring each one, as a task, to the next. writing one
	// to an event register latches and forwards it, so the chain
	// propagates until the machine cuts it off
	reg := func(n int) bus.Addr {
		return regmap.TCURegisters(n / regmap.NumCC).EventsCompare[n%regmap.NumCC]
	}
	for i := 0; i < 9; i++ {
		mc.Wire(ppi.EventAt(reg(i)), ppi.TaskAt(reg(i+1)))
	}

	mc.Write32(reg(0), 1)

	// forwarding stops at the depth limit: the ninth register of the chain
	// latched, the tenth never heard anything
	test.Equate(t, mc.Read32(reg(8)), 1)
	test.Equate(t, mc.Read32(reg(9)), 0)
}

func TestUnmappedAccess(t *testing.T) {
	mc := silicon.NewMachine()

	// peeks and pokes report unmapped addresses as errors
	_, err := mc.Peek(0x12345678)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, silicon.UnmappedAddress), true)
	test.ExpectedFailure(t, mc.Poke(0x12345678, 0))

	// a bus access to an unmapped address can only be a driver bug
	defer test.ExpectPanic(t)
	mc.Read32(0x12345678)
}

func TestFlashDataAccess(t *testing.T) {
	mc := silicon.NewMachine()

	// word reads of flash memory work and unprogrammed cells read all ones
	v, err := mc.Peek(regmap.FlashOrigin)
	test.ExpectedSuccess(t, err)
	test.Equate(t, v, 0xffffffff)

	// word stores to flash memory do not: programming goes through the
	// controller
	defer test.ExpectPanic(t)
	mc.Write32(regmap.FlashOrigin, 0)
}
