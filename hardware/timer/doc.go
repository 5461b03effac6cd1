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

// Package timer implements the driver for the timer/counter units.
//
// A unit is acquired with New(), which binds a physical instance and returns
// it in the unconfigured state. From there the driver is transitioned exactly
// once, with IntoTimer() or IntoCounter(). The transition writes the hardware
// mode field and there is no way back; to change mode the instance must be
// re-acquired with New().
//
// The three states are three distinct Go types. TimerCounter, Timer and
// Counter share the mode-independent operations (start/stop/clear/shutdown,
// counting width, channel access, task handle export) through an embedded
// core. Operations that only exist in one mode are defined only on that
// mode's type: SetFrequency() on Timer, TaskCount() on Counter. Calling a
// timer-only operation on a counter is therefore a compile error, not a
// runtime check.
//
// Go cannot consume a value the way the hardware contract would like, so the
// one-way property of the transition is enforced at runtime instead: the
// second transition attempt on the same TimerCounter panics. Holding on to a
// TimerCounter after transitioning it, and calling any of its other methods,
// is a contract violation that is not detected; don't do it.
//
// Each unit has four capture/compare channels, reached with Channel(). A
// channel handle owns its channel's register and its own bits of the shared
// shortcut and interrupt registers, and nothing else; handles for different
// channels of the same unit can be used concurrently because the shared
// registers are only ever touched through the Bus's atomic bit operations or
// through per-bit write-one-to-clear writes.
//
// None of the driver's operations can fail. Hardware task triggers are
// fire-and-forget writes and configuration writes have no failure mode. The
// only panics are contract violations: an out of range channel index or a
// reused unconfigured handle.
package timer
