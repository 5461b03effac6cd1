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

package flash

import (
	"fmt"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
)

// NotInFlash is returned by SectorAt for addresses outside the main flash
// region. Test for it with curated.Is().
const NotInFlash = "flash: address not in flash (%#08x)"

// Sector describes one erasable unit of the main flash region.
type Sector struct {
	Start uint32
	Size  uint32
}

func (s Sector) String() string {
	return fmt.Sprintf("sector [%#08x,%#08x)", s.Start, s.Start+s.Size)
}

// Contains reports whether the address falls inside the sector.
func (s Sector) Contains(address uint32) bool {
	return address >= s.Start && address < s.Start+s.Size
}

// SectorAt returns the sector containing the given address, according to the
// device's flash geometry.
func SectorAt(address uint32) (Sector, error) {
	if address < regmap.FlashOrigin || address >= regmap.FlashOrigin+regmap.FlashSize {
		return Sector{}, curated.Errorf(NotInFlash, address)
	}

	return Sector{
		Start: address - (address % regmap.FlashSectorSize),
		Size:  regmap.FlashSectorSize,
	}, nil
}
