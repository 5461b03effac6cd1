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

package terminal

// Style is used to identify the category of text being sent to the
// Terminal.TermPrintLine() function. The terminal implementation is free to
// interpret this in whatever way is appropriate: colours, text decoration,
// nothing at all.
type Style int

// List of valid Style values.
const (
	// input echoed back by the monitor after normalisation. terminals that
	// already display what the user types should ignore this style.
	StyleEcho Style = iota

	// help text.
	StyleHelp

	// information from the monitor about something the user asked it to do.
	StyleFeedback

	// register and machine state information.
	StyleRegister

	// entries from the central logger.
	StyleLog

	// the monitor could not do what the user asked. error styled text must
	// be displayed even when the terminal is silenced.
	StyleError
)
