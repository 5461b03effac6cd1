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

// Frequency selects the tick frequency of a timer. The timer divides its
// 16MHz clock source by two to the power of the prescaler value, giving ten
// discrete frequencies. The Frequency values are the raw prescaler field
// encodings.
type Frequency int

// List of valid Frequency values.
const (
	F16MHz Frequency = iota
	F8MHz
	F4MHz
	F2MHz
	F1MHz
	F500kHz
	F250kHz
	F125kHz
	F62500Hz
	F31250Hz
)

// baseClock is the undivided clock source feeding the prescaler.
const baseClock = 16000000

// Hz returns the number of timer ticks per second.
func (f Frequency) Hz() uint32 {
	return baseClock >> uint(f)
}

func (f Frequency) String() string {
	switch f {
	case F16MHz:
		return "16MHz"
	case F8MHz:
		return "8MHz"
	case F4MHz:
		return "4MHz"
	case F2MHz:
		return "2MHz"
	case F1MHz:
		return "1MHz"
	case F500kHz:
		return "500kHz"
	case F250kHz:
		return "250kHz"
	case F125kHz:
		return "125kHz"
	case F62500Hz:
		return "62500Hz"
	case F31250Hz:
		return "31250Hz"
	}
	return "unknown frequency"
}

// FrequencyFromDivider converts a raw prescaler value to a Frequency. The
// second return value is false if the value is not one of the ten supported
// dividers.
func FrequencyFromDivider(d int) (Frequency, bool) {
	if d < int(F16MHz) || d > int(F31250Hz) {
		return F16MHz, false
	}
	return Frequency(d), true
}
