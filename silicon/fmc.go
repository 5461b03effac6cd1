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
	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/logger"
)

// how many status register polls an operation stays busy for. the real
// controller is busy for a number of microseconds; counting polls instead
// keeps the drivers' unbounded spins finite on the host while still
// exercising them
const (
	programLatency = 4
	eraseLatency   = 32
)

// unlock sequencing states.
const (
	fmcLocked = iota
	fmcFirstKey
	fmcUnlocked
)

type region struct {
	start uint32
	size  uint32
}

func (r region) contains(a uint32) bool {
	return a >= r.start && a < r.start+r.size
}

func (r region) overlaps(start uint32, size uint32) bool {
	return start < r.start+r.size && r.start < start+size
}

// fmc models the flash memory controller and the flash array behind it.
type fmc struct {
	regs regmap.FMC

	data []byte

	acr uint32
	sr  uint32 // sticky flags only. the busy flag is derived from the busy counter
	cr  uint32
	ar  uint32

	unlockState int

	// a wrong key sequence locks the controller out until reset
	lockedOut bool

	// remaining status register polls before the busy flag reads clear
	busy int

	// fault injection, configured through the Machine
	protected   []region
	suppressEOP bool
}

func newFMC() *fmc {
	f := &fmc{
		regs: regmap.FMCRegisters(),
		data: make([]byte, regmap.FlashSize),
		cr:   regmap.CrLock,
	}

	// unprogrammed flash reads all ones
	for i := range f.data {
		f.data[i] = 0xff
	}

	return f
}

func (f *fmc) read32(a bus.Addr) (uint32, error) {
	switch a {
	case f.regs.Acr:
		return f.acr, nil
	case f.regs.Keyr, f.regs.OptKeyr:
		// the key registers are write only
		return 0, nil
	case f.regs.Sr:
		v := f.sr
		if f.busy > 0 {
			v |= regmap.SrBsy

			// the poll that observes the busy flag brings completion one
			// step closer
			f.busy--
		}
		return v, nil
	case f.regs.Cr:
		return f.cr, nil
	case f.regs.Ar:
		return f.ar, nil
	case f.regs.Obr:
		// option bytes are not modelled
		return 0, nil
	case f.regs.Wrpr:
		// all ones means no write protection through option bytes. the
		// model's protected regions are a bench hook, not option bytes
		return 0xffffffff, nil
	}
	return 0, curated.Errorf(UnmappedAddress, uint32(a))
}

// peek32 is read32 without side effects: peeking the status register is not
// a completion poll.
func (f *fmc) peek32(a bus.Addr) (uint32, error) {
	if a == f.regs.Sr {
		v := f.sr
		if f.busy > 0 {
			v |= regmap.SrBsy
		}
		return v, nil
	}
	return f.read32(a)
}

func (f *fmc) write32(a bus.Addr, v uint32) error {
	switch a {
	case f.regs.Acr:
		f.acr = v
		return nil
	case f.regs.Keyr:
		f.keyWrite(v)
		return nil
	case f.regs.OptKeyr:
		logger.Log(logger.Allow, "silicon", "option byte programming not modelled")
		return nil
	case f.regs.Sr:
		// the sticky flags are write-one-to-clear. the busy flag is not
		// writable
		f.sr &^= v & (regmap.SrPgErr | regmap.SrWrPrt | regmap.SrEop)
		return nil
	case f.regs.Cr:
		f.crWrite(v)
		return nil
	case f.regs.Ar:
		f.ar = v
		return nil
	case f.regs.Obr, f.regs.Wrpr:
		logger.Log(logger.Allow, "silicon", "option byte registers are read only")
		return nil
	}
	return curated.Errorf(UnmappedAddress, uint32(a))
}

// keyWrite advances the unlock sequence. The two keys must arrive in order;
// anything else locks the controller out until reset. Key writes to an
// already unlocked controller are harmless.
func (f *fmc) keyWrite(v uint32) {
	if f.unlockState == fmcUnlocked {
		return
	}
	if f.lockedOut {
		logger.Log(logger.Allow, "silicon", "flash controller locked out until reset")
		return
	}

	switch {
	case f.unlockState == fmcLocked && v == regmap.FlashKey1:
		f.unlockState = fmcFirstKey
	case f.unlockState == fmcFirstKey && v == regmap.FlashKey2:
		f.unlockState = fmcUnlocked
		f.cr &^= regmap.CrLock
		logger.Log(logger.Allow, "silicon", "flash controller unlocked")
	default:
		f.unlockState = fmcLocked
		f.lockedOut = true
		logger.Log(logger.Allow, "silicon", "wrong flash key sequence, controller locked out until reset")
	}
}

func (f *fmc) crWrite(v uint32) {
	// the control register is not writable while the controller is locked
	if f.unlockState != fmcUnlocked {
		return
	}

	if v&regmap.CrLock != 0 {
		// relocking resets the control register
		f.unlockState = fmcLocked
		f.cr = regmap.CrLock
		logger.Log(logger.Allow, "silicon", "flash controller locked")
		return
	}

	strt := v&regmap.CrStrt != 0 && f.cr&regmap.CrStrt == 0

	f.cr = v & (regmap.CrPg | regmap.CrPer | regmap.CrMer | regmap.CrStrt)

	if strt {
		f.startErase()
	}
}

func (f *fmc) startErase() {
	// hardware clears the start bit the moment the operation begins
	f.cr &^= regmap.CrStrt

	switch {
	case f.cr&regmap.CrMer != 0:
		f.eraseRange(regmap.FlashOrigin, regmap.FlashSize)
		f.busy = eraseLatency
	case f.cr&regmap.CrPer != 0:
		f.eraseSector()
		f.busy = eraseLatency
	default:
		// starting an erase with no erase mode selected is an invalid
		// sequence
		f.sr |= regmap.SrPgErr
		logger.Log(logger.Allow, "silicon", "erase started without an erase mode selected")
	}
}

func (f *fmc) eraseSector() {
	if !inFlashData(bus.Addr(f.ar)) {
		f.sr |= regmap.SrPgErr
		logger.Logf(logger.Allow, "silicon", "erase address outside flash (%#08x)", f.ar)
		return
	}

	f.eraseRange(f.ar-(f.ar%regmap.FlashSectorSize), regmap.FlashSectorSize)
}

func (f *fmc) eraseRange(start uint32, size uint32) {
	for _, p := range f.protected {
		if p.overlaps(start, size) {
			f.sr |= regmap.SrWrPrt
			return
		}
	}

	off := start - regmap.FlashOrigin
	for i := uint32(0); i < size; i++ {
		f.data[off+i] = 0xff
	}

	if !f.suppressEOP {
		f.sr |= regmap.SrEop
	}
}

// program lands a half-word store issued to the flash region.
func (f *fmc) program(a bus.Addr, v uint16) error {
	if !inFlashData(a) {
		return curated.Errorf("silicon: half-word store outside flash (%#08x)", uint32(a))
	}
	if a%2 != 0 {
		return curated.Errorf("silicon: unaligned half-word store (%#08x)", uint32(a))
	}

	// a store with the controller locked or without the programming enable
	// bit set is an invalid sequence
	if f.unlockState != fmcUnlocked || f.cr&regmap.CrPg == 0 {
		f.sr |= regmap.SrPgErr
		return nil
	}

	for _, p := range f.protected {
		if p.contains(uint32(a)) {
			f.sr |= regmap.SrWrPrt
			return nil
		}
	}

	off := uint32(a) - regmap.FlashOrigin
	if f.data[off] != 0xff || f.data[off+1] != 0xff {
		// programming a target that has not been erased
		f.sr |= regmap.SrPgErr
		return nil
	}

	f.data[off] = byte(v)
	f.data[off+1] = byte(v >> 8)
	f.busy = programLatency
	if !f.suppressEOP {
		f.sr |= regmap.SrEop
	}

	return nil
}

func (f *fmc) readData16(a bus.Addr) (uint16, error) {
	if !inFlashData(a) {
		return 0, curated.Errorf("silicon: half-word read outside flash (%#08x)", uint32(a))
	}
	if a%2 != 0 {
		return 0, curated.Errorf("silicon: unaligned half-word read (%#08x)", uint32(a))
	}

	off := uint32(a) - regmap.FlashOrigin
	return uint16(f.data[off]) | uint16(f.data[off+1])<<8, nil
}

func (f *fmc) readData32(a bus.Addr) (uint32, error) {
	if a%4 != 0 {
		return 0, curated.Errorf("silicon: unaligned word read (%#08x)", uint32(a))
	}

	off := uint32(a) - regmap.FlashOrigin
	return uint32(f.data[off]) | uint32(f.data[off+1])<<8 |
		uint32(f.data[off+2])<<16 | uint32(f.data[off+3])<<24, nil
}
