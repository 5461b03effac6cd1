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

// Package flash implements the programming engine for the on-chip flash
// memory controller.
//
// The engine is a stateless sequencer. Every operation is synchronous and
// blocking: it issues the register sequence the controller requires, spins on
// the status register until the busy flag clears, classifies the outcome and
// acknowledges the sticky status flags before returning. Whatever the
// outcome, the controller is left idle and consistent; a failed operation
// never leaves an enable bit asserted or an error flag latched.
//
// The completion poll has no timeout. A timeout or watchdog belongs to the
// caller, not to this layer.
//
// The engine provides no mutual exclusion. The flash controller is singleton
// hardware state and only one programming or erase operation may be in
// flight at a time; concurrent callers must serialise access themselves.
package flash

import (
	"encoding/binary"
	"fmt"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/logger"
)

// WriteSize is the write granularity of the engine in bytes: the size of one
// programming block. Write addresses and lengths must be multiples of
// WriteSize.
//
// The controller programs in half-words so the value must be a multiple
// of 2.
const WriteSize = 8

// Failure classes reported by the engine. Test for them with curated.Is().
const (
	// Protected means the controller refused to program or erase a write
	// protected region.
	Protected = "flash: write protected (%#08x)"

	// SequenceError means an invalid programming sequence was issued to the
	// controller. Programming a target that has not been erased is the
	// usual cause.
	SequenceError = "flash: programming sequence error (%#08x)"

	// Prog means an erase finished without the controller raising its
	// end-of-operation flag. The erase cannot be trusted to have completed.
	Prog = "flash: erase incomplete (%#08x)"
)

// Flash is the programming engine. It carries no state of its own beyond the
// register access surface; the controller hardware is the real entity.
type Flash struct {
	mem  bus.Bus
	regs regmap.FMC
}

// NewFlash is the preferred method of initialisation for the Flash type.
func NewFlash(mem bus.Bus) *Flash {
	// the write granularity contract is checked once, here, not on every
	// write
	if WriteSize%2 != 0 {
		panic(fmt.Sprintf("flash: write size must be a multiple of 2 (%d)", WriteSize))
	}

	return &Flash{
		mem:  mem,
		regs: regmap.FMCRegisters(),
	}
}

// Unlock the flash controller by writing the two-key sequence to the key
// register. Must be called before the first program or erase operation.
// Unlocking an already unlocked controller is harmless.
func (f *Flash) Unlock() {
	f.mem.Write32(f.regs.Keyr, regmap.FlashKey1)
	f.mem.Write32(f.regs.Keyr, regmap.FlashKey2)
}

// Lock the flash controller again. Program and erase sequences issued while
// the controller is locked are refused by the hardware.
func (f *Flash) Lock() {
	f.mem.SetBits32(f.regs.Cr, regmap.CrLock)
}

// Write programs data into flash at the given address. The address and the
// length of data must be multiples of WriteSize; violating either is a
// contract violation and panics. The target region must have been erased.
//
// On failure the returned error is one of the failure classes named in this
// package. Cleanup has always run by the time the error is returned: the
// programming enable bit is deasserted and the sticky status flags are
// clear.
func (f *Flash) Write(address uint32, data []byte) error {
	if address%WriteSize != 0 {
		panic(fmt.Sprintf("flash: write address not aligned to write size (%#08x)", address))
	}
	if len(data)%WriteSize != 0 {
		panic(fmt.Sprintf("flash: write length not a multiple of write size (%d)", len(data)))
	}

	for i := 0; i < len(data); i += WriteSize {
		if err := f.writeBlock(address+uint32(i), data[i:i+WriteSize]); err != nil {
			return err
		}
	}

	return nil
}

// writeBlock programs one aligned block of WriteSize bytes.
func (f *Flash) writeBlock(address uint32, block []byte) error {
	f.mem.SetBits32(f.regs.Cr, regmap.CrPg)

	// the programming enable bit is deasserted and the sticky flags
	// acknowledged on every exit path, whatever waitReady decides
	defer func() {
		f.mem.ClearBits32(f.regs.Cr, regmap.CrPg)
		f.clearStatus()
	}()

	// program the block in address order, one little-endian half-word at a
	// time. the fence after each store stops the core from reordering the
	// stores relative to the completion poll; the controller cannot cope
	// with parallelised writes
	for i := 0; i < len(block); i += 2 {
		f.mem.Write16(bus.Addr(address+uint32(i)), binary.LittleEndian.Uint16(block[i:i+2]))
		f.mem.Fence()
	}

	return f.waitReady(address)
}

// EraseSector erases one sector of flash. Erasure is the only way to return
// programmed cells to their unprogrammed state.
//
// Completion is judged by the end-of-operation flag: an erase the controller
// finishes without raising it is classified Prog, whichever other status
// flags were latched along the way.
//
// On failure the returned error is one of the failure classes named in this
// package. Cleanup has always run by the time the error is returned: the
// erase enable bit is deasserted and the sticky status flags are clear.
func (f *Flash) EraseSector(s Sector) error {
	f.mem.SetBits32(f.regs.Cr, regmap.CrPer)
	f.mem.Write32(f.regs.Ar, s.Start)
	f.mem.SetBits32(f.regs.Cr, regmap.CrStrt)

	err := f.waitReady(s.Start)

	// the end-of-operation check does not depend on what waitReady found.
	// an erase that finishes without raising the flag cannot be trusted to
	// have completed, and that classification replaces whatever the error
	// flags said. the flag is sticky and must be acknowledged when it is
	// present
	if f.mem.Read32(f.regs.Sr)&regmap.SrEop == 0 {
		logger.Logf(logger.Allow, "flash", "end of operation flag not set after erase of %v", s)
		err = curated.Errorf(Prog, s.Start)
	} else {
		f.mem.Write32(f.regs.Sr, regmap.SrEop)
	}

	// cleanup runs whatever the outcome. only after the controller is back
	// in its idle state is any failure reported
	f.mem.ClearBits32(f.regs.Cr, regmap.CrPer)
	f.clearStatus()

	return err
}

// waitReady spins until the controller clears its busy flag, then classifies
// the outcome of the finished operation. The spin is unbounded; the hardware
// clears the busy flag on every operation, sooner or later.
func (f *Flash) waitReady(address uint32) error {
	for {
		sr := f.mem.Read32(f.regs.Sr)
		if sr&regmap.SrBsy != 0 {
			continue
		}

		if sr&regmap.SrWrPrt != 0 {
			return curated.Errorf(Protected, address)
		}
		if sr&regmap.SrPgErr != 0 {
			return curated.Errorf(SequenceError, address)
		}

		return nil
	}
}

// clearStatus acknowledges every sticky status flag. The flags are
// write-one-to-clear.
func (f *Flash) clearStatus() {
	f.mem.Write32(f.regs.Sr, regmap.SrPgErr|regmap.SrWrPrt|regmap.SrEop)
}
