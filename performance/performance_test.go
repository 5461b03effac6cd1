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

package performance_test

import (
	"io"
	"testing"

	"github.com/Ardelean-Calin/periphcore/performance"
	"github.com/Ardelean-Calin/periphcore/test"
)

func TestCalcClock(t *testing.T) {
	mhz, speedup := performance.CalcClock(16000000, 1.0)
	if mhz != 16.0 {
		t.Errorf("unexpected clock frequency (%.2f - wanted 16.00)", mhz)
	}
	if speedup != 1.0 {
		t.Errorf("unexpected speedup (%.1f - wanted 1.0)", speedup)
	}

	mhz, speedup = performance.CalcClock(8000000, 0.25)
	if mhz != 32.0 {
		t.Errorf("unexpected clock frequency (%.2f - wanted 32.00)", mhz)
	}
	if speedup != 2.0 {
		t.Errorf("unexpected speedup (%.1f - wanted 2.0)", speedup)
	}
}

func TestParseProfileString(t *testing.T) {
	p, err := performance.ParseProfileString("none")
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(performance.ProfileNone))

	p, err = performance.ParseProfileString("cpu")
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(performance.ProfileCPU))

	p, err = performance.ParseProfileString("CPU,mem")
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(performance.ProfileCPU|performance.ProfileMem))

	p, err = performance.ParseProfileString("all")
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(p), int(performance.ProfileAll))

	_, err = performance.ParseProfileString("bogus")
	test.ExpectedFailure(t, err)
}

func TestCheck(t *testing.T) {
	err := performance.Check(io.Discard, performance.ProfileNone, "40ms", 1000)
	test.ExpectedSuccess(t, err)

	// a duration the time package cannot parse
	err = performance.Check(io.Discard, performance.ProfileNone, "very long", 1000)
	test.ExpectedFailure(t, err)

	// a tick batch that would never advance the clock
	err = performance.Check(io.Discard, performance.ProfileNone, "40ms", 0)
	test.ExpectedFailure(t, err)
}
