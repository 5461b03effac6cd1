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

package monitor

// this file holds the functions/structures to be used when outputting to the
// terminal. the TermPrintLine function of the Terminal interface should not
// be used directly.

import (
	"fmt"
	"strings"

	"github.com/Ardelean-Calin/periphcore/monitor/terminal"
)

// all print operations from the monitor should be made with the printLine()
// function. output is normalised and sent to the attached terminal.
func (mon *Monitor) printLine(sty terminal.Style, s string, a ...interface{}) {
	if len(a) > 0 {
		s = fmt.Sprintf(s, a...)
	}

	// remove all trailing newlines, and return if the resulting string is
	// empty
	s = strings.TrimRight(s, "\n")
	if len(s) == 0 {
		return
	}

	// split multi-line output into individual calls to TermPrintLine
	for _, l := range strings.Split(s, "\n") {
		mon.term.TermPrintLine(sty, l)
	}
}

// styleWriter implements the io.Writer interface. it is useful for when an
// io.Writer is required and you want to direct the output to the terminal
// with a single style applied.
type styleWriter struct {
	mon   *Monitor
	style terminal.Style
}

func (mon *Monitor) printStyle(sty terminal.Style) *styleWriter {
	return &styleWriter{
		mon:   mon,
		style: sty,
	}
}

func (wrt styleWriter) Write(p []byte) (n int, err error) {
	wrt.mon.printLine(wrt.style, string(p))
	return len(p), nil
}
