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

package flash_test

import (
	"testing"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/flash"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/silicon"
	"github.com/Ardelean-Calin/periphcore/test"
)

// checkIdle asserts the postcondition every operation promises: enable bits
// deasserted and sticky status flags acknowledged, whatever the outcome was.
func checkIdle(t *testing.T, mc *silicon.Machine) {
	t.Helper()

	regs := regmap.FMCRegisters()

	cr, err := mc.Peek(regs.Cr)
	test.ExpectedSuccess(t, err)
	test.Equate(t, cr&(regmap.CrPg|regmap.CrPer|regmap.CrMer|regmap.CrStrt), 0)

	sr, err := mc.Peek(regs.Sr)
	test.ExpectedSuccess(t, err)
	test.Equate(t, sr&(regmap.SrPgErr|regmap.SrWrPrt|regmap.SrEop), 0)
}

func TestWriteReadBack(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	// a block of zeroes followed by a block of ascending bytes. flash ships
	// erased so no preparatory erase is needed
	zeroes := make([]byte, flash.WriteSize)
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin, zeroes))

	ramp := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin+flash.WriteSize, ramp))

	// read back over the bus, half-word at a time, little-endian
	for i := 0; i < flash.WriteSize; i += 2 {
		test.Equate(t, mc.Read16(bus.Addr(regmap.FlashOrigin+uint32(i))), 0)
	}
	for i := 0; i < len(ramp); i += 2 {
		a := bus.Addr(regmap.FlashOrigin + flash.WriteSize + uint32(i))
		test.Equate(t, mc.Read16(a), int(ramp[i])|int(ramp[i+1])<<8)
	}

	checkIdle(t, mc)
}

func TestWriteMultipleBlocks(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	data := make([]byte, 4*flash.WriteSize)
	for i := range data {
		data[i] = byte(i)
	}
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin+regmap.FlashSectorSize, data))

	for i := 0; i < len(data); i += 2 {
		a := bus.Addr(regmap.FlashOrigin + regmap.FlashSectorSize + uint32(i))
		test.Equate(t, mc.Read16(a), int(data[i])|int(data[i+1])<<8)
	}

	// a zero length write is a no-op, not an error
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin, nil))
}

func TestWriteNotErased(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	data := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin, data))

	// programming the same target again without an erase is refused by the
	// controller
	err := fl.Write(regmap.FlashOrigin, data)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, flash.SequenceError), true)

	// the failed operation must not have left the controller dirty
	checkIdle(t, mc)
}

func TestWriteLocked(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)

	// no Unlock(). the controller refuses the sequence
	err := fl.Write(regmap.FlashOrigin, make([]byte, flash.WriteSize))
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, flash.SequenceError), true)
	checkIdle(t, mc)
}

func TestWriteProtected(t *testing.T) {
	mc := silicon.NewMachine()
	mc.ProtectRegion(regmap.FlashOrigin+regmap.FlashSectorSize, regmap.FlashSectorSize)

	fl := flash.NewFlash(mc)
	fl.Unlock()

	err := fl.Write(regmap.FlashOrigin+regmap.FlashSectorSize, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, flash.Protected), true)

	// the protected cells are untouched
	test.Equate(t, mc.Read16(regmap.FlashOrigin+regmap.FlashSectorSize), 0xffff)

	checkIdle(t, mc)
}

func TestEraseRestoresCells(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	data := []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00, 0x11}
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin, data))

	s, err := flash.SectorAt(regmap.FlashOrigin)
	test.ExpectedSuccess(t, err)
	test.ExpectedSuccess(t, fl.EraseSector(s))

	// erasure is the only way back to the unprogrammed state
	test.Equate(t, mc.Read16(regmap.FlashOrigin), 0xffff)
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin, data))
	test.Equate(t, mc.Read16(regmap.FlashOrigin), 0xbbaa)

	checkIdle(t, mc)
}

func TestEraseIncomplete(t *testing.T) {
	mc := silicon.NewMachine()
	mc.SuppressEOP(true)

	fl := flash.NewFlash(mc)
	fl.Unlock()

	s, err := flash.SectorAt(regmap.FlashOrigin)
	test.ExpectedSuccess(t, err)

	// the end-of-operation flag never arrives so the erase must be reported
	// as incomplete
	err = fl.EraseSector(s)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, flash.Prog), true)

	checkIdle(t, mc)
}

func TestEraseProtected(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	target := uint32(regmap.FlashOrigin + 2*regmap.FlashSectorSize)
	data := []byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	test.ExpectedSuccess(t, fl.Write(target, data))

	// protection arrives after programming, so the erase is refused and the
	// cells keep their value
	mc.ProtectRegion(target, regmap.FlashSectorSize)

	s, err := flash.SectorAt(target)
	test.ExpectedSuccess(t, err)
	err = fl.EraseSector(s)
	test.ExpectedFailure(t, err)

	// a refused erase never raises the end-of-operation flag, and it is the
	// missing flag that classifies the failure. the write-protect flag the
	// controller latched does not take precedence
	test.Equate(t, curated.Is(err, flash.Prog), true)
	test.Equate(t, curated.Is(err, flash.Protected), false)
	test.Equate(t, mc.Read16(bus.Addr(target)), 0x3412)

	checkIdle(t, mc)
}

func TestLockRefusesWrites(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)

	fl.Unlock()
	fl.Lock()

	err := fl.Write(regmap.FlashOrigin, make([]byte, flash.WriteSize))
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, flash.SequenceError), true)

	// unlocking again restores service
	fl.Unlock()
	test.ExpectedSuccess(t, fl.Write(regmap.FlashOrigin, make([]byte, flash.WriteSize)))
}

func TestWriteAddressAlignment(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	// a misaligned address is a bug in the caller, not a hardware failure
	defer test.ExpectPanic(t)
	_ = fl.Write(regmap.FlashOrigin+2, make([]byte, flash.WriteSize))
}

func TestWriteLengthAlignment(t *testing.T) {
	mc := silicon.NewMachine()
	fl := flash.NewFlash(mc)
	fl.Unlock()

	defer test.ExpectPanic(t)
	_ = fl.Write(regmap.FlashOrigin, make([]byte, flash.WriteSize-2))
}

func TestSectorAt(t *testing.T) {
	// an address in the middle of a sector maps to the sector's start
	s, err := flash.SectorAt(regmap.FlashOrigin + 0x433)
	test.ExpectedSuccess(t, err)
	test.Equate(t, s.Start, regmap.FlashOrigin+regmap.FlashSectorSize)
	test.Equate(t, s.Size, regmap.FlashSectorSize)
	test.Equate(t, s.Contains(regmap.FlashOrigin+0x433), true)
	test.Equate(t, s.Contains(regmap.FlashOrigin+regmap.FlashSectorSize-1), false)
	test.Equate(t, s.Contains(regmap.FlashOrigin+2*regmap.FlashSectorSize), false)

	// first and last byte of the region
	s, err = flash.SectorAt(regmap.FlashOrigin)
	test.ExpectedSuccess(t, err)
	test.Equate(t, s.Start, regmap.FlashOrigin)

	s, err = flash.SectorAt(regmap.FlashOrigin + regmap.FlashSize - 1)
	test.ExpectedSuccess(t, err)
	test.Equate(t, s.Start, regmap.FlashOrigin+regmap.FlashSize-regmap.FlashSectorSize)

	// outside the region
	_, err = flash.SectorAt(regmap.FlashOrigin + regmap.FlashSize)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, flash.NotInFlash), true)

	_, err = flash.SectorAt(0)
	test.ExpectedFailure(t, err)
}
