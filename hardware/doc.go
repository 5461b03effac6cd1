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

// Package hardware is the base package for the peripheral drivers. Its
// sub-packages contain everything required to drive the device's timer/counter
// units and on-chip flash, against any implementation of the bus.Bus register
// access surface.
//
// The sub-packages divide the work as a datasheet would:
//
//	bus      the register access surface the drivers are written against
//	regmap   register addresses, field masks and device geometry
//	ppi      task and event handles for the peripheral interconnect
//	timer    the timer/counter driver and its mode types
//	flash    the flash programming engine
//
// Nothing in this package tree talks to an operating system. The drivers are
// pure register sequencing and can be pointed at real silicon, at the
// simulated machine in the silicon package, or at a test double.
package hardware
