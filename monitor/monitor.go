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
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/flash"
	"github.com/Ardelean-Calin/periphcore/hardware/ppi"
	"github.com/Ardelean-Calin/periphcore/hardware/timer"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal"
	"github.com/Ardelean-Calin/periphcore/silicon"
)

// unit is the set of operations common to the three modes of the
// timer/counter driver. The monitor keeps whichever handle is currently live
// in a unit value so that mode-independent commands need no mode switch.
type unit interface {
	Start()
	Stop()
	Clear()
	Shutdown()
	SetBitmode(timer.Bitmode)
	Bitmode() timer.Bitmode
	Instance() int
	Channel(int) *timer.Channel
	TaskStart() ppi.Task
	TaskStop() ppi.Task
	TaskClear() ppi.Task
	TaskShutdown() ppi.Task
}

// every mode of the driver satisfies the unit interface
var _ unit = (*timer.TimerCounter)(nil)
var _ unit = (*timer.Timer)(nil)
var _ unit = (*timer.Counter)(nil)

// Monitor is the interactive shell around a simulated machine.
type Monitor struct {
	mc   *silicon.Machine
	term terminal.Terminal

	// events sent to the terminal during a TermRead()
	events *terminal.ReadEvents

	// buffer to hold user input
	input [255]byte

	// the flash programming engine. the engine is stateless so one instance
	// created at startup serves every flash command
	fl *flash.Flash

	// the bound timer/counter instance and the driver handle in whichever
	// mode it currently is. exactly one of tc, tmr and cnt is non-nil and
	// unt always points to it
	instance int
	unt      unit
	tc       *timer.TimerCounter
	tmr      *timer.Timer
	cnt      *timer.Counter

	// channel handles are cached so that rebinding can Close() every handle
	// given out since the last bind
	channels map[int]*timer.Channel

	// whether the Run() loop should continue
	running bool
}

// NewMonitor is the preferred method of initialisation for the Monitor type.
// The monitor starts with timer/counter instance 0 bound and unconfigured.
func NewMonitor(mc *silicon.Machine, term terminal.Terminal) *Monitor {
	mon := &Monitor{
		mc:   mc,
		term: term,
	}

	mon.fl = flash.NewFlash(mc)

	mon.events = &terminal.ReadEvents{
		IntEvents: make(chan os.Signal, 1),
	}
	signal.Notify(mon.events.IntEvents, os.Interrupt)

	mon.bind(0)

	return mon
}

// bind acquires the numbered timer/counter instance, discarding the handles
// from any previous binding. Channel handles given out since the last bind
// are closed first so that no interrupt source outlives them.
//
// The instance number must have been validated by the caller; the driver
// panics on impossible instance numbers.
func (mon *Monitor) bind(instance int) {
	for _, ch := range mon.channels {
		ch.Close()
	}

	mon.instance = instance
	mon.tc = timer.New(mon.mc, instance)
	mon.tmr = nil
	mon.cnt = nil
	mon.unt = mon.tc
	mon.channels = make(map[int]*timer.Channel)
}

// channel returns a cached handle to the numbered capture/compare channel of
// the bound instance. The index must have been validated by the caller.
func (mon *Monitor) channel(n int) *timer.Channel {
	ch, ok := mon.channels[n]
	if !ok {
		ch = mon.unt.Channel(n)
		mon.channels[n] = ch
	}
	return ch
}

// buildPrompt summarises the bound instance and its mode.
func (mon *Monitor) buildPrompt() terminal.Prompt {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("tcu%d", mon.instance))

	switch {
	case mon.tmr != nil:
		s.WriteString(":timer")
	case mon.cnt != nil:
		s.WriteString(":counter")
	}

	return terminal.Prompt{
		Type:    terminal.PromptTypeCommand,
		Content: s.String(),
	}
}

// Run is the monitor's main loop. It returns when the user quits, when the
// input source is exhausted, or on a terminal error.
func (mon *Monitor) Run() error {
	err := mon.term.Initialise()
	if err != nil {
		return curated.Errorf("monitor: %v", err)
	}
	defer mon.term.CleanUp()

	mon.term.RegisterTabCompletion(NewTabCompletion())

	mon.running = true
	for mon.running {
		if err := mon.termRead(); err != nil {
			return err
		}
	}

	return nil
}

// termRead reads one line of input from the terminal and processes it.
func (mon *Monitor) termRead() error {
	inputLen, err := mon.term.TermRead(mon.input[:], mon.buildPrompt(), mon.events)

	if err == nil {
		if inputLen > 0 {
			err = mon.processInput(string(mon.input[:inputLen-1]))
			if err != nil {
				mon.printLine(terminal.StyleError, "%s", err)
			}
		}
		return nil
	}

	if !curated.IsAny(err) {
		switch err {
		case io.EOF:
			// treat EOF the same as a user abort
			err = curated.Errorf(terminal.UserAbort)
		default:
			return err
		}
	}

	if curated.Is(err, terminal.UserInterrupt) {
		mon.handleInterrupt()
	} else if curated.Is(err, terminal.UserAbort) {
		mon.running = false
	} else {
		return err
	}

	return nil
}

// handleInterrupt processes a user interrupt caught during a TermRead().
func (mon *Monitor) handleInterrupt() {
	// a non-interactive input source cannot confirm anything. quit as soon
	// as possible
	if !mon.term.IsInteractive() {
		mon.running = false
		return
	}

	confirm := make([]byte, 1)
	_, err := mon.term.TermRead(confirm,
		terminal.Prompt{
			Content: "really quit (y/n) ",
			Type:    terminal.PromptTypeConfirm},
		mon.events)

	if err != nil {
		// a second interrupt is treated as if 'y' was pressed
		if curated.Is(err, terminal.UserInterrupt) {
			confirm[0] = 'y'
		} else {
			mon.printLine(terminal.StyleError, "%s", err)
		}
	}

	if confirm[0] == 'y' || confirm[0] == 'Y' {
		mon.running = false
	}
}

// processInput splits input into individual commands on the semicolon and
// processes each in turn. Processing stops at the first command that fails.
func (mon *Monitor) processInput(input string) error {
	commands := strings.Split(input, ";")
	for i := range commands {
		if err := mon.processCommand(commands[i]); err != nil {
			return err
		}
	}
	return nil
}
