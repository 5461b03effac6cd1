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
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
)

// base address of the flash memory controller.
//
// values from STM32F0 RM0091 Reference Manual, section 3
const fmcBase = 0x40022000

// register offsets within the flash memory controller.
const (
	fmcAcr     = 0x00
	fmcKeyr    = 0x04
	fmcOptKeyr = 0x08
	fmcSr      = 0x0c
	fmcCr      = 0x10
	fmcAr      = 0x14
	fmcObr     = 0x1c
	fmcWrpr    = 0x20
)

// unlock key sequence for the KEYR register. the keys must be written in
// this order. any other value written to KEYR locks the controller until
// reset.
const (
	FlashKey1 = 0x45670123
	FlashKey2 = 0xcdef89ab
)

// bits in the SR register. PGERR, WRPRT and EOP are sticky and are cleared by
// writing one to the bit position.
const (
	SrBsy   = 0x01 // bit 0: operation in progress
	SrPgErr = 0x04 // bit 2: programming error (target not erased)
	SrWrPrt = 0x10 // bit 4: write protection error
	SrEop   = 0x20 // bit 5: end of operation
)

// bits in the CR register.
const (
	CrPg   = 0x01 // bit 0: programming enable
	CrPer  = 0x02 // bit 1: sector erase enable
	CrMer  = 0x04 // bit 2: mass erase enable
	CrStrt = 0x40 // bit 6: start erase operation
	CrLock = 0x80 // bit 7: controller locked
)

// geometry of the main flash region. the reference manual calls the erase
// unit a page; the API in the flash package uses the term sector throughout.
const (
	FlashOrigin     = 0x08000000
	FlashSize       = 0x10000 // 64KB
	FlashSectorSize = 0x400   // 1KB
)

// FMC is the register map of the flash memory controller. Every field is the
// absolute address of the named hardware register.
type FMC struct {
	Base bus.Addr

	Acr     bus.Addr
	Keyr    bus.Addr
	OptKeyr bus.Addr
	Sr      bus.Addr
	Cr      bus.Addr
	Ar      bus.Addr
	Obr     bus.Addr
	Wrpr    bus.Addr
}

// Contains reports whether the address falls inside the controller's
// register block. Flash memory itself is outside the block; see FlashOrigin.
func (m FMC) Contains(a bus.Addr) bool {
	return a >= m.Base && a <= m.Wrpr
}

// FMCRegisters returns the register map for the flash memory controller.
// There is only one instance of the controller.
func FMCRegisters() FMC {
	return FMC{
		Base:    fmcBase,
		Acr:     fmcBase + fmcAcr,
		Keyr:    fmcBase + fmcKeyr,
		OptKeyr: fmcBase + fmcOptKeyr,
		Sr:      fmcBase + fmcSr,
		Cr:      fmcBase + fmcCr,
		Ar:      fmcBase + fmcAr,
		Obr:     fmcBase + fmcObr,
		Wrpr:    fmcBase + fmcWrpr,
	}
}
