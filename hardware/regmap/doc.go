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

// Package regmap describes the register layout of the supported peripheral
// blocks. The layout is fixed by the silicon vendor and is not a design
// decision of this project; the addresses, offsets, field encodings and key
// values in this package are transcribed from the reference manuals and must
// not be "corrected".
//
// Two blocks are described. The timer/counter unit follows the TIMER
// peripheral of the nRF52832 (Product Specification v1.4, section 24). The
// flash memory controller follows the FLASH interface of the STM32F0 series
// (RM0091 Reference Manual, section 3).
//
// The drivers take a register map value at construction. Nothing in the map
// is mutable, the structs exist so that a driver can be pointed at any
// instance of a block without knowing how instances are laid out.
package regmap
