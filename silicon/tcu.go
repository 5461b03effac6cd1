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

package silicon

import (
	"github.com/Ardelean-Calin/periphcore/curated"
	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
)

// masks for the writable fields of the shared registers. four channels means
// four compare-clear bits, four compare-stop bits and four compare interrupt
// bits
const (
	tcuShortsMask = 0x00000f0f
	tcuIntenMask  = 0x000f0000
)

// tcu models one timer/counter unit.
type tcu struct {
	regs     regmap.TCU
	instance int

	running   bool
	mode      uint32
	bitmode   uint32
	prescaler uint32
	shorts    uint32
	inten     uint32
	counter   uint32
	cc        [regmap.NumCC]uint32
	events    [regmap.NumCC]uint32

	// base clock cycles accumulated towards the next counter increment
	accum int

	// called when an event is raised. the machine lock is held
	onEvent func(bus.Addr)
}

func newTCU(instance int, onEvent func(bus.Addr)) *tcu {
	return &tcu{
		regs:     regmap.TCURegisters(instance),
		instance: instance,
		onEvent:  onEvent,
	}
}

// tick advances the unit by the given number of base clock cycles. Only a
// running unit in timer mode is clocked; in counter mode the counter moves
// on count triggers alone.
func (t *tcu) tick(cycles int) {
	if !t.running || t.mode != regmap.TCUModeTimer {
		return
	}

	period := 1 << t.prescaler
	t.accum += cycles
	for t.running && t.accum >= period {
		t.accum -= period
		t.increment()
	}
}

// increment the counter by one, wrapping at the selected counting width, and
// apply the compare machinery.
func (t *tcu) increment() {
	t.counter = (t.counter + 1) & t.widthMask()

	// the comparators work in parallel on real hardware. every channel is
	// compared against the value the increment produced, even when an
	// earlier channel has already cleared the counter by shortcut or wire
	v := t.counter

	for i := 0; i < regmap.NumCC; i++ {
		if v != t.cc[i] {
			continue
		}

		t.events[i] = 1
		t.onEvent(t.regs.EventsCompare[i])

		// shortcuts act the instant the compare condition fires
		if t.shorts&regmap.TCUShortCompareClear(i) != 0 {
			t.counter = 0
		}
		if t.shorts&regmap.TCUShortCompareStop(i) != 0 {
			t.running = false
		}
	}
}

func (t *tcu) widthMask() uint32 {
	switch t.bitmode {
	case 1: // 8bit
		return 0xff
	case 0: // 16bit
		return 0xffff
	case 2: // 24bit
		return 0xffffff
	}
	return 0xffffffff
}

func (t *tcu) read32(a bus.Addr) (uint32, error) {
	switch a {
	case t.regs.TasksStart, t.regs.TasksStop, t.regs.TasksCount,
		t.regs.TasksClear, t.regs.TasksShutdown:
		// task registers read as zero
		return 0, nil
	case t.regs.Shorts:
		return t.shorts, nil
	case t.regs.Intenset, t.regs.Intenclr:
		// both interrupt registers read back the enable mask
		return t.inten, nil
	case t.regs.Mode:
		return t.mode, nil
	case t.regs.Bitmode:
		return t.bitmode, nil
	case t.regs.Prescaler:
		return t.prescaler, nil
	}

	for i := 0; i < regmap.NumCC; i++ {
		switch a {
		case t.regs.TasksCapture[i]:
			return 0, nil
		case t.regs.EventsCompare[i]:
			return t.events[i], nil
		case t.regs.CC[i]:
			return t.cc[i], nil
		}
	}

	return 0, curated.Errorf(UnmappedAddress, uint32(a))
}

func (t *tcu) write32(a bus.Addr, v uint32) error {
	// a write of any value arms a task register; the value is ignored
	switch a {
	case t.regs.TasksStart:
		t.running = true
		return nil
	case t.regs.TasksStop:
		t.running = false
		return nil
	case t.regs.TasksCount:
		// count triggers are only honoured in counter mode, while running
		if t.running && (t.mode == regmap.TCUModeCounter || t.mode == regmap.TCUModeLowPowerCounter) {
			t.increment()
		}
		return nil
	case t.regs.TasksClear:
		t.counter = 0
		t.accum = 0
		return nil
	case t.regs.TasksShutdown:
		t.running = false
		t.accum = 0
		return nil
	case t.regs.Shorts:
		t.shorts = v & tcuShortsMask
		return nil
	case t.regs.Intenset:
		t.inten |= v & tcuIntenMask
		return nil
	case t.regs.Intenclr:
		t.inten &^= v & tcuIntenMask
		return nil
	case t.regs.Mode:
		t.mode = v & 0x3
		return nil
	case t.regs.Bitmode:
		t.bitmode = v & 0x3
		return nil
	case t.regs.Prescaler:
		t.prescaler = v & 0xf
		return nil
	}

	for i := 0; i < regmap.NumCC; i++ {
		switch a {
		case t.regs.TasksCapture[i]:
			t.cc[i] = t.counter
			return nil
		case t.regs.EventsCompare[i]:
			// event registers are written to acknowledge (zero) or to raise
			// in software (one). only a latching transition forwards
			raise := t.events[i] == 0 && v&1 == 1
			t.events[i] = v & 1
			if raise {
				t.onEvent(t.regs.EventsCompare[i])
			}
			return nil
		case t.regs.CC[i]:
			t.cc[i] = v
			return nil
		}
	}

	return curated.Errorf(UnmappedAddress, uint32(a))
}
