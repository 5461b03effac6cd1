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

import (
	"strings"
)

// TabCompletion implements the terminal.TabCompletion interface for the
// monitor's command set. Only the command keyword is completed; the arguments
// to a command are too free-form to guess.
type TabCompletion struct {
	options   []string
	idx       int
	lastGuess string
}

// NewTabCompletion is the preferred method of initialisation for the
// TabCompletion type.
func NewTabCompletion() *TabCompletion {
	return &TabCompletion{}
}

// Complete implements the terminal.TabCompletion interface. Calling Complete
// with its own previous return value cycles through the remaining options.
func (tc *TabCompletion) Complete(input string) string {
	if tc.lastGuess != "" && input == tc.lastGuess {
		tc.idx = (tc.idx + 1) % len(tc.options)
		tc.lastGuess = tc.options[tc.idx] + " "
		return tc.lastGuess
	}

	tc.Reset()

	// anything after the keyword is left alone
	if strings.Contains(strings.TrimSpace(input), " ") {
		return input
	}

	prefix := strings.ToUpper(strings.TrimSpace(input))
	for _, k := range commandList {
		if strings.HasPrefix(k, prefix) {
			tc.options = append(tc.options, k)
		}
	}
	if len(tc.options) == 0 {
		return input
	}

	tc.lastGuess = tc.options[0] + " "
	return tc.lastGuess
}

// Reset implements the terminal.TabCompletion interface.
func (tc *TabCompletion) Reset() {
	tc.options = tc.options[:0]
	tc.idx = 0
	tc.lastGuess = ""
}
