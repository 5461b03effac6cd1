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

package programmer_test

import (
	"testing"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/flash"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/programmer"
	"github.com/Ardelean-Calin/periphcore/silicon"
	"github.com/Ardelean-Calin/periphcore/test"
)

func TestProgram(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.FMCRegisters()

	// an image that is not a multiple of the write size, to exercise padding
	image := make([]byte, 20)
	for i := range image {
		image[i] = byte(i + 1)
	}

	test.ExpectedSuccess(t, programmer.Program(mc, image, regmap.FlashOrigin))

	// the image is in flash, little-endian
	test.Equate(t, mc.Read16(regmap.FlashOrigin), 0x0201)
	test.Equate(t, mc.Read16(regmap.FlashOrigin+18), 0x1413)

	// the pad bytes hold the erased-state value
	test.Equate(t, mc.Read16(regmap.FlashOrigin+20), 0xffff)
	test.Equate(t, mc.Read16(regmap.FlashOrigin+22), 0xffff)

	// the controller was locked again on the way out
	cr, err := mc.Peek(regs.Cr)
	test.ExpectedSuccess(t, err)
	test.Equate(t, cr&regmap.CrLock, regmap.CrLock)
}

func TestProgramOverOldContent(t *testing.T) {
	mc := silicon.NewMachine()

	old := []byte{0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11}
	test.ExpectedSuccess(t, programmer.Program(mc, old, regmap.FlashOrigin))

	// reprogramming works because the covered sectors are erased first
	replacement := []byte{0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x22}
	test.ExpectedSuccess(t, programmer.Program(mc, replacement, regmap.FlashOrigin))
	test.Equate(t, mc.Read16(regmap.FlashOrigin), 0x2222)
}

func TestProgramAcrossSectors(t *testing.T) {
	mc := silicon.NewMachine()

	// an image starting mid-sector and ending in the next sector over
	base := uint32(regmap.FlashOrigin + regmap.FlashSectorSize - 2*flash.WriteSize)
	image := make([]byte, 4*flash.WriteSize)
	for i := range image {
		image[i] = 0xa5
	}

	test.ExpectedSuccess(t, programmer.Program(mc, image, base))
	test.Equate(t, mc.Read16(bus.Addr(base)), 0xa5a5)
	test.Equate(t, mc.Read16(bus.Addr(base+uint32(len(image))-2)), 0xa5a5)
}

func TestProgramArguments(t *testing.T) {
	mc := silicon.NewMachine()
	image := make([]byte, flash.WriteSize)

	err := programmer.Program(mc, nil, regmap.FlashOrigin)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, programmer.EmptyImage), true)

	err = programmer.Program(mc, image, regmap.FlashOrigin+2)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, programmer.BadBaseAddress), true)

	// aligned but outside flash entirely
	err = programmer.Program(mc, image, 0x1000)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, programmer.ImageTooLarge), true)

	// starts inside, runs off the end
	err = programmer.Program(mc, make([]byte, 2*flash.WriteSize), regmap.FlashOrigin+regmap.FlashSize-flash.WriteSize)
	test.ExpectedFailure(t, err)
	test.Equate(t, curated.Is(err, programmer.ImageTooLarge), true)
}

func TestProgramProtected(t *testing.T) {
	mc := silicon.NewMachine()
	mc.ProtectRegion(regmap.FlashOrigin, regmap.FlashSectorSize)

	err := programmer.Program(mc, make([]byte, flash.WriteSize), regmap.FlashOrigin)
	test.ExpectedFailure(t, err)

	// programming a protected region fails at the erase step. the refused
	// erase finishes without the end-of-operation flag and the flash
	// engine's classification of that comes through unchanged
	test.Equate(t, curated.Is(err, flash.Prog), true)
}
