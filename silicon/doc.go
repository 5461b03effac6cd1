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

// Package silicon is a software model of the peripheral blocks the drivers
// in the hardware directory control: three timer/counter units and a flash
// memory controller with 64KB of flash behind it.
//
// The model is register accurate, not cycle accurate. The state a driver can
// observe through the register surface (counter values, latched events,
// status and error flags, flash contents) behaves as the reference manuals
// describe; how long things take is modelled only coarsely. The flash
// controller reports itself busy for a fixed number of status polls rather
// than a fixed number of nanoseconds, which keeps the drivers' unbounded
// busy-spins finite on a host machine without changing what they observe.
//
// The Machine type implements the bus.Bus interface and is handed to the
// drivers as their register access surface. Time does not pass on its own:
// the Tick() function advances the 16MHz base clock by a number of cycles
// and anything clocked moves forward with it.
//
// The model provides two kinds of access the real silicon does not. Peek()
// and Poke() inspect and prod any mapped register without the side effects a
// bus access would have (a Peek of the flash status register does not count
// as a completion poll). The fault hooks, ProtectRegion() and SuppressEOP(),
// configure the flash controller to misbehave in the ways the drivers must
// classify.
//
// Wire() stands in for the external interconnect: an event register can be
// wired to any number of task registers and the machine forwards a latched
// event to its tasks with no driver involvement, the way the real
// interconnect would.
package silicon
