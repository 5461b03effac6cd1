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

// Package ppi holds the task and event handle types used to connect
// peripherals together through the programmable peripheral interconnect.
//
// A task is a register that triggers a hardware action when one is written to
// it. An event is a register the hardware latches to one when the
// corresponding condition occurs. The interconnect can be programmed to
// forward an event to a task with no processor involvement.
//
// The handles in this package carry nothing but the register address. They
// exist so that a driver can hand out stable references to its task and event
// registers without also handing out its register access surface. Routing the
// handles is the interconnect's business, not the drivers'.
package ppi

import (
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
)

// Task is a handle to a task register. Writing one to the register triggers
// the hardware action associated with it.
type Task struct {
	reg bus.Addr
}

// TaskAt returns a Task handle for the given register address.
func TaskAt(reg bus.Addr) Task {
	return Task{reg: reg}
}

// Reg returns the address of the task register.
func (t Task) Reg() bus.Addr {
	return t.reg
}

// Event is a handle to an event register. The hardware latches the register
// to one when the associated condition occurs.
type Event struct {
	reg bus.Addr
}

// EventAt returns an Event handle for the given register address.
func EventAt(reg bus.Addr) Event {
	return Event{reg: reg}
}

// Reg returns the address of the event register.
func (e Event) Reg() bus.Addr {
	return e.reg
}
