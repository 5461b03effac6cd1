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

package logger_test

import (
	"testing"

	"github.com/Ardelean-Calin/periphcore/logger"
	"github.com/Ardelean-Calin/periphcore/test"
)

func TestLogger(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	logger.Write(tw)
	test.Equate(t, tw.Compare(""), true)

	logger.Log(logger.Allow, "test", "this is a test")
	logger.Write(tw)
	test.Equate(t, tw.Compare("test: this is a test\n"), true)

	// clear the test.CompareWriter buffer before continuing, makes comparisons
	// easier to manage
	tw.Clear()

	logger.Log(logger.Allow, "test2", "this is another test")
	logger.Write(tw)
	test.Equate(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	// asking for too many entries in a Tail() should be okay
	tw.Clear()
	logger.Tail(tw, 100)
	test.Equate(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	// asking for exactly the correct number of entries is okay
	tw.Clear()
	logger.Tail(tw, 2)
	test.Equate(t, tw.Compare("test: this is a test\ntest2: this is another test\n"), true)

	// asking for fewer entries is okay too
	tw.Clear()
	logger.Tail(tw, 1)
	test.Equate(t, tw.Compare("test2: this is another test\n"), true)

	// and no entries
	tw.Clear()
	logger.Tail(tw, 0)
	test.Equate(t, tw.Compare(""), true)
}

func TestRepeatedEntries(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	// identical entries back to back are compressed into a single line with a
	// repeat count. a register busy-poll that logs each failed attempt is the
	// motivating example
	logger.Log(logger.Allow, "flash", "busy")
	logger.Log(logger.Allow, "flash", "busy")
	logger.Log(logger.Allow, "flash", "busy")
	logger.Write(tw)
	test.Equate(t, tw.Compare("flash: busy (repeat x3)\n"), true)

	// a different entry breaks the run
	tw.Clear()
	logger.Log(logger.Allow, "flash", "ready")
	logger.Write(tw)
	test.Equate(t, tw.Compare("flash: busy (repeat x3)\nflash: ready\n"), true)
}

type prohibit struct{}

func (_ prohibit) AllowLogging() bool {
	return false
}

func TestPermissions(t *testing.T) {
	logger.Clear()

	tw := &test.CompareWriter{}

	logger.Log(prohibit{}, "test", "this should not appear")
	logger.Write(tw)
	test.Equate(t, tw.Compare(""), true)

	logger.Log(logger.Allow, "test", "this should appear")
	logger.Write(tw)
	test.Equate(t, tw.Compare("test: this should appear\n"), true)
}

func TestEcho(t *testing.T) {
	logger.Clear()

	// a ring writer as the echo target retains only the tail of the log
	// traffic
	rw, err := test.NewRingWriter(18)
	test.ExpectedSuccess(t, err)

	logger.SetEcho(rw, false)
	defer logger.SetEcho(nil, false)

	logger.Log(logger.Allow, "tag", "first")
	logger.Log(logger.Allow, "tag", "second")
	test.Equate(t, rw.String(), "first\ntag: second\n")
}
