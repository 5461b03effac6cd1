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

// Package programmer turns a raw binary image into programmed flash cells.
//
// It is the non-interactive front end to the flash engine: erase the sectors
// the image covers, program the image, verify by reading every cell back, and
// leave the controller locked whatever happened. Alignment and geometry
// problems in the caller's arguments are reported as errors rather than
// panics; the arguments originate from the command line, not from code.
package programmer

import (
	"os"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/flash"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/logger"
)

// Error patterns returned by the programmer. Test for them with curated.Is().
const (
	// EmptyImage means there was nothing to program.
	EmptyImage = "programmer: empty image"

	// BadBaseAddress means the base address is not aligned to the write
	// granularity of the flash engine.
	BadBaseAddress = "programmer: base address not aligned to the write size (%#08x)"

	// ImageTooLarge means the image does not fit in flash at the given base
	// address.
	ImageTooLarge = "programmer: image does not fit in flash ([%#08x,%#08x))"

	// VerifyFailed means a programmed cell read back with the wrong value.
	VerifyFailed = "programmer: verification failed at %#08x"
)

// Load reads a binary image from disk.
func Load(filename string) ([]byte, error) {
	image, err := os.ReadFile(filename)
	if err != nil {
		return nil, curated.Errorf("programmer: %v", err)
	}
	return image, nil
}

// Program writes an image into flash at the given base address.
//
// The sectors the image covers are erased first, so programming over old
// content works; anything else sharing those sectors is lost. The image is
// padded to the engine's write granularity with erased-state bytes and every
// programmed cell is verified by reading it back. The controller is locked
// again before Program returns, on every path.
//
// Failures from the flash engine are returned as they are; see the failure
// classes in the flash package.
func Program(mem bus.Bus, image []byte, base uint32) error {
	if len(image) == 0 {
		return curated.Errorf(EmptyImage)
	}
	if base%flash.WriteSize != 0 {
		return curated.Errorf(BadBaseAddress, base)
	}

	// pad to the write granularity with the value erased cells hold anyway
	padded := image
	if r := len(padded) % flash.WriteSize; r != 0 {
		padded = make([]byte, len(image)+flash.WriteSize-r)
		copy(padded, image)
		for i := len(image); i < len(padded); i++ {
			padded[i] = 0xff
		}
	}

	end := base + uint32(len(padded))
	if base < regmap.FlashOrigin || end < base || end > regmap.FlashOrigin+regmap.FlashSize {
		return curated.Errorf(ImageTooLarge, base, end)
	}

	logger.Logf(logger.Allow, "programmer", "programming %d bytes at %#08x", len(image), base)

	eng := flash.NewFlash(mem)
	eng.Unlock()
	defer eng.Lock()

	// erase every sector the padded image touches
	first, err := flash.SectorAt(base)
	if err != nil {
		return err
	}
	last, err := flash.SectorAt(end - 1)
	if err != nil {
		return err
	}
	for a := first.Start; a <= last.Start; a += regmap.FlashSectorSize {
		s, err := flash.SectorAt(a)
		if err != nil {
			return err
		}
		if err := eng.EraseSector(s); err != nil {
			return err
		}
	}

	if err := eng.Write(base, padded); err != nil {
		return err
	}

	// read every cell back. a programming operation that completed without an
	// error flag is still no proof the cells hold the right values
	for i := 0; i < len(padded); i += 2 {
		want := uint16(padded[i]) | uint16(padded[i+1])<<8
		if got := mem.Read16(bus.Addr(base + uint32(i))); got != want {
			return curated.Errorf(VerifyFailed, base+uint32(i))
		}
	}

	logger.Logf(logger.Allow, "programmer", "verified %d bytes at %#08x", len(padded), base)

	return nil
}
