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
	"unicode"
	"unicode/utf8"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal/colorterm/easyterm"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal/colorterm/easyterm/ansi"
)

// TermRead implements the terminal.Input interface.
func (ct *ColorTerminal) TermRead(input []byte, prompt terminal.Prompt, events *terminal.ReadEvents) (int, error) {
	if ct.silenced {
		return 0, nil
	}

	// the terminal is put into raw mode so that we can see individual
	// keypresses. without this we can't detect the cursor keys, which we
	// need for the command history
	if err := ct.RawMode(); err != nil {
		return 0, err
	}
	defer func() {
		_ = ct.CanonicalMode()
	}()

	// the current input line. a slice of runes makes cursor arithmetic
	// simple even when the input contains multi-byte characters
	buff := make([]rune, 0, len(input))
	cursorPos := 0

	// width of the prompt in screen columns
	promptLen := utf8.RuneCountInString(prompt.String())

	// historyIdx points past the most recent history entry to begin with
	historyIdx := len(ct.commandHistory)

	// what the user had typed before they started scrolling through the
	// command history
	var liveBuff []rune

	// the method for cursor placement is as follows:
	//
	//	1. store the cursor position
	//	2. clear the current line
	//	3. print the prompt
	//	4. print the input line
	//	5. restore the cursor position
	//
	// for this to work we need to place the cursor in its starting position
	// before the loop begins
	ct.EasyTerm.TermPrint("\r")
	ct.EasyTerm.TermPrint(ansi.CursorMove(promptLen))

	for {
		ct.EasyTerm.TermPrint(ansi.CursorStore)
		ct.EasyTerm.TermPrint(ansi.ClearLine)
		ct.EasyTerm.TermPrint("\r")
		ct.EasyTerm.TermPrint(prompt.String())
		ct.EasyTerm.TermPrint(string(buff))
		ct.EasyTerm.TermPrint(ansi.CursorRestore)

		select {
		case <-events.IntEvents:
			// an interrupt signal during editing is treated the same as the
			// interrupt key
			ct.EasyTerm.TermPrint("\r\n")
			return 0, curated.Errorf(terminal.UserInterrupt)

		case rr := <-ct.reader.ch:
			if rr.err != nil {
				return 0, rr.err
			}

			switch rr.r {
			case easyterm.KeyInterrupt:
				ct.EasyTerm.TermPrint("\r\n")
				return 0, curated.Errorf(terminal.UserInterrupt)

			case easyterm.KeySuspend:
				// return the terminal to canonical mode while the process
				// sleeps. raw mode is restored on resumption
				_ = ct.CanonicalMode()
				easyterm.SuspendProcess()
				if err := ct.RawMode(); err != nil {
					return 0, err
				}

			case easyterm.KeyTab:
				if ct.tabCompletion != nil {
					s := []rune(ct.tabCompletion.Complete(string(buff[:cursorPos])))

					// append everything after the cursor to the completed
					// string, so long as the result still fits
					rest := buff[cursorPos:]
					if len(string(s))+len(string(rest)) <= len(input) {
						n := make([]rune, 0, len(s)+len(rest))
						n = append(n, s...)
						n = append(n, rest...)
						buff = n
						cursorPos = len(s)

						ct.EasyTerm.TermPrint("\r")
						ct.EasyTerm.TermPrint(ansi.CursorMove(promptLen + cursorPos))
					}
				}

			case easyterm.KeyCarriageReturn:
				// input is complete

				// tab completion and history are reset every time the user
				// enters a non-empty line
				if len(buff) > 0 {
					if ct.tabCompletion != nil {
						ct.tabCompletion.Reset()
					}
					ct.commandHistory = append(ct.commandHistory, command{input: string(buff)})
				}

				ct.EasyTerm.TermPrint("\r\n")

				n := copy(input, []byte(string(buff)))
				return n + 1, nil

			case easyterm.KeyEsc:
				// ESCAPE SEQUENCE BEGIN
				rr = <-ct.reader.ch
				if rr.err != nil {
					return 0, rr.err
				}
				switch rr.r {
				case easyterm.EscCursor:
					// CURSOR KEY
					rr = <-ct.reader.ch
					if rr.err != nil {
						return 0, rr.err
					}

					switch rr.r {
					case easyterm.CursorUp:
						// move backwards through the command history
						if historyIdx > 0 {
							// the very first step backwards stores the live
							// input so that it can be restored later
							if historyIdx == len(ct.commandHistory) {
								liveBuff = make([]rune, len(buff))
								copy(liveBuff, buff)
							}

							historyIdx--
							buff = []rune(ct.commandHistory[historyIdx].input)
							cursorPos = len(buff)

							ct.EasyTerm.TermPrint("\r")
							ct.EasyTerm.TermPrint(ansi.CursorMove(promptLen + cursorPos))
						}

					case easyterm.CursorDown:
						// move forwards through the command history. moving
						// past the most recent entry restores the live input
						if historyIdx < len(ct.commandHistory)-1 {
							historyIdx++
							buff = []rune(ct.commandHistory[historyIdx].input)
							cursorPos = len(buff)
						} else if historyIdx == len(ct.commandHistory)-1 {
							historyIdx++
							buff = make([]rune, len(liveBuff))
							copy(buff, liveBuff)
							cursorPos = len(buff)
						}

						ct.EasyTerm.TermPrint("\r")
						ct.EasyTerm.TermPrint(ansi.CursorMove(promptLen + cursorPos))

					case easyterm.CursorForward:
						if cursorPos < len(buff) {
							cursorPos++
							ct.EasyTerm.TermPrint(ansi.CursorForwardOne)
						}

					case easyterm.CursorBackward:
						if cursorPos > 0 {
							cursorPos--
							ct.EasyTerm.TermPrint(ansi.CursorBackwardOne)
						}

					case easyterm.EscDelete:
						// DELETE. there is a trailing character in the
						// sequence which we must swallow
						rr = <-ct.reader.ch
						if rr.err != nil {
							return 0, rr.err
						}

						if cursorPos < len(buff) {
							buff = append(buff[:cursorPos], buff[cursorPos+1:]...)
							historyIdx = len(ct.commandHistory)
						}

					case easyterm.EscHome:
						cursorPos = 0
						ct.EasyTerm.TermPrint("\r")
						ct.EasyTerm.TermPrint(ansi.CursorMove(promptLen))

					case easyterm.EscEnd:
						cursorPos = len(buff)
						ct.EasyTerm.TermPrint("\r")
						ct.EasyTerm.TermPrint(ansi.CursorMove(promptLen + cursorPos))
					}
				}

			case easyterm.KeyBackspace, easyterm.KeyDelete:
				// BACKSPACE. many terminals send the delete character for
				// the backspace key
				if cursorPos > 0 {
					buff = append(buff[:cursorPos-1], buff[cursorPos:]...)
					cursorPos--
					ct.EasyTerm.TermPrint(ansi.CursorBackwardOne)
					historyIdx = len(ct.commandHistory)
				}

			default:
				if unicode.IsPrint(rr.r) {
					if len(string(buff))+rr.n <= len(input) {
						// insert the new character at the current cursor
						// position
						buff = append(buff[:cursorPos], append([]rune{rr.r}, buff[cursorPos:]...)...)
						cursorPos++
						ct.EasyTerm.TermPrint(ansi.CursorForwardOne)
						historyIdx = len(ct.commandHistory)
					}
				}
			}
		}
	}
}

// TermReadCheck implements the terminal.Input interface.
func (ct *ColorTerminal) TermReadCheck() bool {
	return len(ct.reader.ch) > 0
}
