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

// Package monitor is the interactive front end to the simulated machine and
// the peripheral drivers. It connects a terminal implementation to one bound
// timer/counter instance and to the flash programming engine, and translates
// terse commands into driver calls.
//
// The monitor drives the hardware the way application code would: through
// the driver packages, never by spelling register sequences itself. The PEEK,
// POKE and REGS commands are the deliberate exceptions; inspection needs to
// see the registers as they are.
//
// Interaction with the monitor is through an implementation of the
// terminal.Terminal interface. Implementations for a plain and a colour
// terminal can be found in sub-packages of the terminal package.
package monitor
