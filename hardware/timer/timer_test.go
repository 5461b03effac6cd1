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

package timer_test

import (
	"testing"

	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/hardware/timer"
	"github.com/Ardelean-Calin/periphcore/silicon"
	"github.com/Ardelean-Calin/periphcore/test"
)

func TestBindLeavesKnownState(t *testing.T) {
	mc := silicon.NewMachine()
	regs := regmap.TCURegisters(0)

	// dirty the instance before binding: junk in the compare registers,
	// shortcuts enabled, counter running and counting
	for i := 0; i < regmap.NumCC; i++ {
		mc.Write32(regs.CC[i], 0xdeadbeef)
	}
	mc.Write32(regs.Mode, regmap.TCUModeTimer)
	mc.Write32(regs.Shorts, 0x0303)
	mc.Write32(regs.TasksStart, 1)
	mc.Tick(100)

	tc := timer.New(mc, 0)

	// binding must leave all four channels at zero with every shortcut
	// disabled
	for i := 0; i < regmap.NumCC; i++ {
		test.Equate(t, tc.Channel(i).Read(), 0)
	}
	test.Equate(t, mc.Read32(regs.Shorts), 0)

	// the counter itself must be stopped at zero: capturing after more ticks
	// still reads zero
	mc.Tick(100)
	test.Equate(t, tc.Channel(0).Capture(), 0)
}

func TestChannelRoundTrip(t *testing.T) {
	mc := silicon.NewMachine()
	tc := timer.New(mc, 0)

	// the full 32-bit range is accepted whatever the counting width
	for _, v := range []uint32{0, 1, 0x8000, 0xdeadbeef, 0xffffffff} {
		for i := 0; i < regmap.NumCC; i++ {
			ch := tc.Channel(i)
			ch.Write(v)
			test.Equate(t, ch.Read(), v)
		}
	}
}

func TestChannelRange(t *testing.T) {
	mc := silicon.NewMachine()
	tc := timer.New(mc, 0)

	// the modelled variant has exactly four channels. asking for a fifth is
	// a contract violation
	defer test.ExpectPanic(t)
	tc.Channel(regmap.NumCC)
}

func TestTransitionConsumesHandle(t *testing.T) {
	mc := silicon.NewMachine()
	tc := timer.New(mc, 0)
	tc.IntoTimer()

	// the unconfigured handle was consumed by the first transition
	defer test.ExpectPanic(t)
	tc.IntoCounter()
}

func TestTimerCounting(t *testing.T) {
	mc := silicon.NewMachine()
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetBitmode(timer.Bitmode32)
	tmr.SetFrequency(timer.F16MHz)
	tmr.Start()

	ch := tmr.Channel(0)

	// at 16MHz the counter increments once per base clock cycle
	mc.Tick(100)
	before := ch.Read()
	c := ch.Capture()
	test.Equate(t, c, 100)

	// a capture is never older than the value read before the trigger
	test.Equate(t, c >= before, true)

	mc.Tick(50)
	test.Equate(t, ch.Capture(), 150)

	// stopping holds the counter; clearing zeroes it
	tmr.Stop()
	mc.Tick(1000)
	test.Equate(t, ch.Capture(), 150)
	tmr.Clear()
	test.Equate(t, ch.Capture(), 0)
}

func TestFrequencySelection(t *testing.T) {
	mc := silicon.NewMachine()
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetBitmode(timer.Bitmode32)
	tmr.SetFrequency(timer.F1MHz)
	tmr.Start()

	ch := tmr.Channel(0)

	// at 1MHz one increment needs sixteen base clock cycles
	mc.Tick(16)
	test.Equate(t, ch.Capture(), 1)
	mc.Tick(15)
	test.Equate(t, ch.Capture(), 1)
	mc.Tick(1)
	test.Equate(t, ch.Capture(), 2)

	// changing the frequency stops the timer
	tmr.SetFrequency(timer.F16MHz)
	mc.Tick(100)
	test.Equate(t, ch.Capture(), 2)

	tmr.Start()
	mc.Tick(10)
	test.Equate(t, ch.Capture(), 12)
}

func TestFrequencyValues(t *testing.T) {
	// the ten dividers cover 16MHz down to 31250Hz
	test.Equate(t, timer.F16MHz.Hz(), 16000000)
	test.Equate(t, timer.F1MHz.Hz(), 1000000)
	test.Equate(t, timer.F31250Hz.Hz(), 31250)

	_, ok := timer.FrequencyFromDivider(9)
	test.Equate(t, ok, true)
	_, ok = timer.FrequencyFromDivider(10)
	test.Equate(t, ok, false)
}

func TestCounterCounting(t *testing.T) {
	mc := silicon.NewMachine()
	cnt := timer.New(mc, 1).IntoCounter()
	cnt.SetBitmode(timer.Bitmode32)
	cnt.Start()

	ch := cnt.Channel(0)

	// in counter mode the counter moves on count triggers alone. the
	// exported count task is how the interconnect (or anything else holding
	// the handle) triggers it
	task := cnt.TaskCount()
	for i := 0; i < 3; i++ {
		mc.Write32(task.Reg(), 1)
	}
	test.Equate(t, ch.Capture(), 3)

	// the base clock means nothing to a counter
	mc.Tick(1000)
	test.Equate(t, ch.Capture(), 3)
}

func TestBitmodeWrap(t *testing.T) {
	mc := silicon.NewMachine()
	cnt := timer.New(mc, 0).IntoCounter()
	cnt.SetBitmode(timer.Bitmode8)
	test.Equate(t, cnt.Bitmode().Width(), 8)
	cnt.Start()

	task := cnt.TaskCount()
	ch := cnt.Channel(0)

	// 8-bit counting wraps to zero after 255
	for i := 0; i < 255; i++ {
		mc.Write32(task.Reg(), 1)
	}
	test.Equate(t, ch.Capture(), 255)
	mc.Write32(task.Reg(), 1)
	test.Equate(t, ch.Capture(), 0)
}

func TestShortcutClear(t *testing.T) {
	mc := silicon.NewMachine()
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetBitmode(timer.Bitmode32)
	tmr.SetFrequency(timer.F16MHz)

	ch := tmr.Channel(2)
	ch.Write(100)
	ch.EnableShortcutClear()
	tmr.Start()

	// the counter reaches 100, fires the compare event and is cleared by
	// the shortcut with no processor involvement
	mc.Tick(100)
	test.Equate(t, tmr.Channel(3).Capture(), 0)
	test.Equate(t, mc.Read32(ch.EventCompare().Reg()), 1)

	// with the shortcut removed the counter sails past the compare value
	ch.DisableShortcutClear()
	mc.Write32(ch.EventCompare().Reg(), 0)
	mc.Tick(150)
	test.Equate(t, tmr.Channel(3).Capture(), 150)
}

func TestShortcutStop(t *testing.T) {
	mc := silicon.NewMachine()
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetBitmode(timer.Bitmode32)
	tmr.SetFrequency(timer.F16MHz)

	ch := tmr.Channel(1)
	ch.Write(50)
	ch.EnableShortcutStop()
	tmr.Start()

	// the counter stops dead on the compare match
	mc.Tick(200)
	test.Equate(t, tmr.Channel(0).Capture(), 50)
	mc.Tick(200)
	test.Equate(t, tmr.Channel(0).Capture(), 50)
}

func TestShortcutBitOwnership(t *testing.T) {
	mc := silicon.NewMachine()
	tc := timer.New(mc, 0)
	regs := regmap.TCURegisters(0)

	ch0 := tc.Channel(0)
	ch1 := tc.Channel(1)

	// two handles setting their own bits of the shared shortcut register
	// concurrently must not corrupt each other's bits
	done := make(chan bool)
	go func() {
		ch0.EnableShortcutClear()
		ch0.EnableShortcutStop()
		done <- true
	}()
	ch1.EnableShortcutClear()
	ch1.EnableShortcutStop()
	<-done

	expected := regmap.TCUShortCompareClear(0) | regmap.TCUShortCompareStop(0) |
		regmap.TCUShortCompareClear(1) | regmap.TCUShortCompareStop(1)
	test.Equate(t, mc.Read32(regs.Shorts), expected)

	// disabling one channel's shortcuts leaves the other's alone
	ch0.DisableShortcutClear()
	ch0.DisableShortcutStop()
	expected = regmap.TCUShortCompareClear(1) | regmap.TCUShortCompareStop(1)
	test.Equate(t, mc.Read32(regs.Shorts), expected)
}

func TestChannelClose(t *testing.T) {
	mc := silicon.NewMachine()
	tc := timer.New(mc, 0)
	regs := regmap.TCURegisters(0)

	// arm the compare interrupt of all four channels directly. the driver
	// has no business enabling interrupts but a disposed channel must not
	// leave its own interrupt dangling
	var armed uint32
	for i := 0; i < regmap.NumCC; i++ {
		armed |= regmap.TCUIntCompare(i)
	}
	mc.Write32(regs.Intenset, armed)
	test.Equate(t, mc.Read32(regs.Intenset), armed)

	ch0 := tc.Channel(0)
	ch1 := tc.Channel(1)

	// concurrent disposal of channels 0 and 1 clears exactly bits 16 and
	// 17, leaving channels 2 and 3 armed
	done := make(chan bool)
	go func() {
		ch0.Close()
		done <- true
	}()
	ch1.Close()
	<-done

	expected := regmap.TCUIntCompare(2) | regmap.TCUIntCompare(3)
	test.Equate(t, mc.Read32(regs.Intenset), expected)

	// closing twice is harmless
	ch0.Close()
	test.Equate(t, mc.Read32(regs.Intenset), expected)
}

func TestTaskExportAndWire(t *testing.T) {
	mc := silicon.NewMachine()

	// a timer on instance 0 fires a compare event at 10; the wire forwards
	// it to the count task of a counter on instance 1. this is the
	// interconnect pattern the task/event handles exist for
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetBitmode(timer.Bitmode32)
	tmr.SetFrequency(timer.F16MHz)
	chT := tmr.Channel(0)
	chT.Write(10)

	cnt := timer.New(mc, 1).IntoCounter()
	cnt.SetBitmode(timer.Bitmode32)
	cnt.Start()

	mc.Wire(chT.EventCompare(), cnt.TaskCount())

	tmr.Start()
	mc.Tick(20)

	// the timer passed 10 once, so the counter counted once
	test.Equate(t, cnt.Channel(0).Capture(), 1)
	test.Equate(t, tmr.Channel(1).Capture(), 20)

	// wiring an event to the timer's own stop task works the same way:
	// rig channel 1 to stop the timer at 30
	chStop := tmr.Channel(1)
	chStop.Write(30)
	mc.Wire(chStop.EventCompare(), tmr.TaskStop())
	mc.Tick(100)
	test.Equate(t, tmr.Channel(2).Capture(), 30)
}

func TestShutdown(t *testing.T) {
	mc := silicon.NewMachine()
	tmr := timer.New(mc, 0).IntoTimer()
	tmr.SetBitmode(timer.Bitmode32)
	tmr.SetFrequency(timer.F16MHz)
	tmr.Start()

	mc.Tick(25)
	tmr.Shutdown()

	// a shut down unit is not clocked
	mc.Tick(100)
	test.Equate(t, tmr.Channel(0).Capture(), 25)

	// starting again wakes it
	tmr.Start()
	mc.Tick(5)
	test.Equate(t, tmr.Channel(0).Capture(), 30)
}
