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
	"fmt"
	"strconv"
	"strings"
)

// tokens represents tokenised user input.
type tokens struct {
	tokens []string
	curr   int
}

// tokeniseInput creates a new instance of tokens from the user input.
func tokeniseInput(input string) *tokens {
	tk := new(tokens)

	// remove leading/trailing space and divide user input into tokens
	tk.tokens = strings.Fields(strings.TrimSpace(input))

	// normalise variations in syntax
	for i := 0; i < len(tk.tokens); i++ {
		// normalise hex notation
		if tk.tokens[i][0] == '$' {
			tk.tokens[i] = fmt.Sprintf("0x%s", tk.tokens[i][1:])
		}
	}

	return tk
}

func (tk tokens) remaining() int {
	return len(tk.tokens) - tk.curr
}

func (tk *tokens) get() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	tk.curr++
	return tk.tokens[tk.curr-1], true
}

func (tk tokens) peek() (string, bool) {
	if tk.curr >= len(tk.tokens) {
		return "", false
	}
	return tk.tokens[tk.curr], true
}

// getUint parses the next token as an unsigned number. Hexadecimal numbers
// must carry the 0x prefix ($ was normalised to 0x at tokenisation).
func (tk *tokens) getUint(what string) (uint32, error) {
	s, ok := tk.get()
	if !ok {
		return 0, fmt.Errorf("%s required", what)
	}

	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number (%s)", what, s)
	}

	return uint32(v), nil
}

// getInt is getUint for small values that are more comfortable as int.
func (tk *tokens) getInt(what string) (int, error) {
	v, err := tk.getUint(what)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
