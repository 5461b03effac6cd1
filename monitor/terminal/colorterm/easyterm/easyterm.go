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

// Package easyterm is a wrapper for "github.com/pkg/term/termios". It provides
// some features not present in the third-party package, such as terminal
// geometry, and wraps termios methods in functions with friendlier names.
package easyterm

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// EasyTerm is the main type for the easyterm package. Use Initialise() to
// prepare the terminal for use and CleanUp() when the terminal is no longer
// required.
type EasyTerm struct {
	input  *os.File
	output *os.File

	// attributes as they were when Initialise() was called. the terminal is
	// returned to this state by CanonicalMode() and so by CleanUp()
	canAttr unix.Termios

	// prepared attributes for raw mode. switching modes is then just a
	// matter of calling Tcsetattr with the appropriate set
	rawAttr unix.Termios
}

// Initialise prepares the terminal for easyterm usage. Can be called again
// after a call to CleanUp().
func (et *EasyTerm) Initialise(inputFile, outputFile *os.File) error {
	et.input = inputFile
	et.output = outputFile

	if err := termios.Tcgetattr(et.input.Fd(), &et.canAttr); err != nil {
		return err
	}

	// raw attributes start as a copy of the canonical attributes
	et.rawAttr = et.canAttr
	termios.Cfmakeraw(&et.rawAttr)

	// keep output processing in raw mode. without this the cursor does not
	// behave as expected when a newline is printed
	et.rawAttr.Oflag = et.canAttr.Oflag

	return nil
}

// CleanUp returns the terminal to the state it was in when Initialise() was
// called.
func (et *EasyTerm) CleanUp() {
	_ = et.Flush()
	_ = et.CanonicalMode()
}

// CanonicalMode puts the terminal into normal, everyday canonical mode.
func (et *EasyTerm) CanonicalMode() error {
	return termios.Tcsetattr(et.input.Fd(), termios.TCSAFLUSH, &et.canAttr)
}

// RawMode puts the terminal into raw mode, giving the program full control
// over individual keypresses.
func (et *EasyTerm) RawMode() error {
	return termios.Tcsetattr(et.input.Fd(), termios.TCSAFLUSH, &et.rawAttr)
}

// Flush makes sure the terminal's buffers are empty.
func (et *EasyTerm) Flush() error {
	if err := termios.Tcdrain(et.output.Fd()); err != nil {
		return err
	}
	return termios.Tcflush(et.input.Fd(), unix.TCIFLUSH)
}

// TermPrint prints the string to the attached output file.
func (et *EasyTerm) TermPrint(s string) {
	fmt.Fprint(et.output, s)
}

// GeometryNoError returns the width and height of the terminal. In the event
// of an error a sensible default of 80x24 is returned.
func (et *EasyTerm) GeometryNoError() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(et.output.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}
