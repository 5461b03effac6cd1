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

package timer

// Bitmode selects the counting width of a timer/counter. The values are the
// raw BITMODE field encodings, which are not in width order.
type Bitmode uint32

// List of valid Bitmode values.
const (
	Bitmode16 Bitmode = 0
	Bitmode8  Bitmode = 1
	Bitmode24 Bitmode = 2
	Bitmode32 Bitmode = 3
)

// Width returns the counting width in bits.
func (b Bitmode) Width() int {
	switch b {
	case Bitmode8:
		return 8
	case Bitmode16:
		return 16
	case Bitmode24:
		return 24
	case Bitmode32:
		return 32
	}
	return 0
}

func (b Bitmode) String() string {
	switch b {
	case Bitmode8:
		return "8bit"
	case Bitmode16:
		return "16bit"
	case Bitmode24:
		return "24bit"
	case Bitmode32:
		return "32bit"
	}
	return "unknown bitmode"
}

// BitmodeFromWidth converts a counting width in bits to a Bitmode. The second
// return value is false if the width is not one of the four supported widths.
func BitmodeFromWidth(w int) (Bitmode, bool) {
	switch w {
	case 8:
		return Bitmode8, true
	case 16:
		return Bitmode16, true
	case 24:
		return Bitmode24, true
	case 32:
		return Bitmode32, true
	}
	return Bitmode16, false
}
