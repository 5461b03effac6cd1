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

//go:build !windows
// +build !windows

package colorterm

import (
	"bufio"
	"io"
)

// readRune is the type sent over the runeReader channel.
type readRune struct {
	r   rune
	n   int
	err error
}

// runeReader wraps the reading of runes in a goroutine so that the input
// loop in TermRead() can select on the rune channel alongside other events.
type runeReader struct {
	ch chan readRune
}

// initRuneReader is the preferred method of initialisation for the
// runeReader type. the goroutine runs for as long as the input source
// remains open.
func initRuneReader(input io.Reader) runeReader {
	rr := runeReader{
		// a small buffer so that TermReadCheck() can detect a waiting rune
		ch: make(chan readRune, 1),
	}

	br := bufio.NewReader(input)

	go func() {
		for {
			r, n, err := br.ReadRune()
			rr.ch <- readRune{r: r, n: n, err: err}
			if err != nil {
				return
			}
		}
	}()

	return rr
}
