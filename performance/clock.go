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

package performance

import "github.com/Ardelean-Calin/periphcore/hardware/timer"

// CalcClock takes a base clock cycle count and a duration (in seconds) and
// returns the simulated clock frequency in MHz, along with the speedup
// relative to the real device's base clock.
func CalcClock(cycles int64, seconds float64) (mhz float64, speedup float64) {
	hz := float64(cycles) / seconds
	return hz / 1e6, hz / float64(timer.F16MHz.Hz())
}
