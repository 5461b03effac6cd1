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

package test

import "testing"

// ExpectPanic tests that the test function panics before returning. It must be
// called with defer, before the statement that is expected to panic:
//
//	func TestChannelRange(t *testing.T) {
//		defer test.ExpectPanic(t)
//		tmr.Channel(4)
//	}
//
// Functions in this project panic only on contract violations, never on
// conditions the caller is expected to handle. ExpectPanic is how those
// contracts are pinned down in tests.
func ExpectPanic(t *testing.T) {
	t.Helper()

	if recover() == nil {
		t.Errorf("expected panic")
	}
}
