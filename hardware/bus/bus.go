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

// Package bus defines the register access surface required by the peripheral
// drivers. The drivers in the hardware directory never touch memory directly,
// they work through an implementation of the Bus interface.
//
// The silicon package provides the reference implementation, a software model
// of the peripheral blocks. An implementation backed by memory mapped
// registers on real silicon would satisfy the interface equally well, the
// drivers cannot tell the difference.
package bus

// Addr is a physical register or memory address.
type Addr uint32

// Bus defines the operations the peripheral drivers require of the register
// access surface.
//
// SetBits32() and ClearBits32() are read-modify-write operations and must be
// atomic with respect to every other access made through the same Bus. The
// drivers rely on this when two handles share a register, each owning a
// disjoint set of bits.
//
// Fence() orders memory accesses: every store issued before the fence is
// observable by the device before any access issued after it. An
// implementation that serialises all access (the silicon package does, with a
// mutex) can implement it as a no-op.
type Bus interface {
	Read32(a Addr) uint32
	Write32(a Addr, v uint32)

	SetBits32(a Addr, mask uint32)
	ClearBits32(a Addr, mask uint32)

	Read16(a Addr) uint16
	Write16(a Addr, v uint16)

	Fence()
}
