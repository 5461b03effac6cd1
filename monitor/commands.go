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
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Ardelean-Calin/periphcore/hardware/bus"
	"github.com/Ardelean-Calin/periphcore/hardware/flash"
	"github.com/Ardelean-Calin/periphcore/hardware/ppi"
	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/hardware/timer"
	"github.com/Ardelean-Calin/periphcore/logger"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal"
	"github.com/Ardelean-Calin/periphcore/statsview"
	"github.com/Ardelean-Calin/periphcore/version"
	"github.com/bradleyjkemp/memviz"
)

// monitor keywords. not a useful data structure by itself but we use these to
// form the more useful Help and commandList structures.
const (
	KeywordHelp     = "HELP"
	KeywordQuit     = "QUIT"
	KeywordRegs     = "REGS"
	KeywordPeek     = "PEEK"
	KeywordPoke     = "POKE"
	KeywordTick     = "TICK"
	KeywordBind     = "BIND"
	KeywordMode     = "MODE"
	KeywordStart    = "START"
	KeywordStop     = "STOP"
	KeywordClear    = "CLEAR"
	KeywordShutdown = "SHUTDOWN"
	KeywordBitmode  = "BITMODE"
	KeywordFreq     = "FREQ"
	KeywordCC       = "CC"
	KeywordCapture  = "CAPTURE"
	KeywordCount    = "COUNT"
	KeywordShort    = "SHORT"
	KeywordWire     = "WIRE"
	KeywordErase    = "ERASE"
	KeywordProgram  = "PROGRAM"
	KeywordProtect  = "PROTECT"
	KeywordLog      = "LOG"
	KeywordStats    = "STATS"
	KeywordViz      = "VIZ"
	KeywordVersion  = "VERSION"
)

// Help contains the help text for the monitor's commands.
var Help = map[string]string{
	KeywordHelp:     "Lists commands and provides help for individual commands",
	KeywordQuit:     "Exits the monitor",
	KeywordRegs:     "Display the registers of the bound unit, or of the flash controller (REGS FLASH)",
	KeywordPeek:     "Inspect an individual register or flash address",
	KeywordPoke:     "Modify an individual register",
	KeywordTick:     "Advance the 16MHz base clock by N cycles (default 1)",
	KeywordBind:     "Bind a timer/counter instance, discarding the current handles",
	KeywordMode:     "Configure the bound instance as a TIMER or a COUNTER. One-way",
	KeywordStart:    "Start the bound unit",
	KeywordStop:     "Stop the bound unit. The counter value is retained",
	KeywordClear:    "Reset the counter of the bound unit to zero",
	KeywordShutdown: "Stop the bound unit and power it down",
	KeywordBitmode:  "Select the counting width: 8, 16, 24 or 32 bits. Stops the unit",
	KeywordFreq:     "Select the tick frequency by divider: 0 (16MHz) to 9 (31250Hz). Timer mode only. Stops the unit",
	KeywordCC:       "Read (CC n) or write (CC n value) a capture/compare register",
	KeywordCapture:  "Capture the current counter value into a capture/compare register",
	KeywordCount:    "Trigger the count task N times (default 1). Counter mode only",
	KeywordShort:    "Enable or disable a compare shortcut: SHORT n CLEAR|STOP ON|OFF",
	KeywordWire:     "Wire a compare event to a task: WIRE COMPARE n START|STOP|CLEAR|SHUTDOWN|COUNT|CAPTURE [m]",
	KeywordErase:    "Erase the flash sector containing the address",
	KeywordProgram:  "Program bytes into flash: PROGRAM address byte...",
	KeywordProtect:  "Write protect a region of flash: PROTECT address length",
	KeywordLog:      "Display the contents of the central log (LOG LAST|RECENT|CLEAR)",
	KeywordStats:    "Launch the runtime statistics viewer",
	KeywordViz:      "Write a graphviz visualisation of the machine state to a file",
	KeywordVersion:  "Display the version of the monitor",
}

// commandList is the sorted list of commands. used by the HELP command and by
// tab completion.
var commandList []string

func init() {
	commandList = make([]string, 0, len(Help))
	for k := range Help {
		commandList = append(commandList, k)
	}
	sort.Strings(commandList)
}

// processCommand tokenises one command and acts upon it.
func (mon *Monitor) processCommand(cmd string) error {
	tk := tokeniseInput(cmd)

	// the user pressed return on an empty line
	if tk.remaining() == 0 {
		return nil
	}

	// echo normalised input
	mon.printLine(terminal.StyleEcho, "%s", strings.Join(tk.tokens, " "))

	keyword, _ := tk.get()
	keyword = strings.ToUpper(keyword)

	switch keyword {
	default:
		return fmt.Errorf("%s is not a monitor command (try HELP)", keyword)

		// control of the monitor
	case KeywordHelp:
		option, ok := tk.get()
		if ok {
			s := strings.ToUpper(option)
			txt, found := Help[s]
			if found {
				mon.printLine(terminal.StyleHelp, txt)
			} else {
				mon.printLine(terminal.StyleHelp, "no help for %s", s)
			}
		} else {
			for _, k := range commandList {
				mon.printLine(terminal.StyleHelp, k)
			}
		}

	case KeywordQuit:
		mon.running = false

	case KeywordVersion:
		ver, rev, _ := version.Version()
		mon.printLine(terminal.StyleFeedback, "%s %s (%s)", version.ApplicationName, ver, rev)

	case KeywordLog:
		option, ok := tk.get()
		if ok {
			switch strings.ToUpper(option) {
			case "LAST":
				logger.Tail(mon.printStyle(terminal.StyleLog), 1)
			case "RECENT":
				logger.WriteRecent(mon.printStyle(terminal.StyleLog))
			case "CLEAR":
				logger.Clear()
			default:
				return fmt.Errorf("unknown LOG option (%s)", option)
			}
		} else {
			logger.Write(mon.printStyle(terminal.StyleLog))
		}

	case KeywordStats:
		statsview.Launch(mon.printStyle(terminal.StyleFeedback))

	case KeywordViz:
		filename := "periphcore.dot"
		if s, ok := tk.get(); ok {
			filename = s
		}

		f, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("VIZ: %v", err)
		}

		memviz.Map(f, mon.mc)
		if err := f.Close(); err != nil {
			return fmt.Errorf("VIZ: %v", err)
		}

		mon.printLine(terminal.StyleFeedback, "machine graph written to %s", filename)

		// inspection of the machine
	case KeywordRegs:
		option, ok := tk.get()
		if ok {
			if strings.ToUpper(option) != "FLASH" {
				return fmt.Errorf("unknown REGS option (%s)", option)
			}
			mon.regsFlash()
		} else {
			mon.regsUnit()
		}

	case KeywordPeek:
		addr, err := tk.getUint("address")
		if err != nil {
			return err
		}

		v, err := mon.mc.Peek(bus.Addr(addr))
		if err != nil {
			return err
		}
		mon.printLine(terminal.StyleRegister, "%#08x -> %#08x", addr, v)

	case KeywordPoke:
		addr, err := tk.getUint("address")
		if err != nil {
			return err
		}
		val, err := tk.getUint("value")
		if err != nil {
			return err
		}

		if err := mon.mc.Poke(bus.Addr(addr), val); err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "%#08x <- %#08x", addr, val)

	case KeywordTick:
		cycles := 1
		if tk.remaining() > 0 {
			var err error
			cycles, err = tk.getInt("cycles")
			if err != nil {
				return err
			}
		}
		if cycles < 1 {
			return fmt.Errorf("cycles must be positive (%d)", cycles)
		}

		mon.mc.Tick(cycles)
		mon.printLine(terminal.StyleFeedback, "advanced %d cycles", cycles)

		// the timer/counter unit
	case KeywordBind:
		if tk.remaining() == 0 {
			mon.printLine(terminal.StyleFeedback, "bound to instance %d", mon.instance)
			break
		}

		instance, err := tk.getInt("instance")
		if err != nil {
			return err
		}
		if instance < 0 || instance >= regmap.NumTCU {
			return fmt.Errorf("no such timer/counter instance (%d)", instance)
		}

		mon.bind(instance)
		mon.printLine(terminal.StyleFeedback, "bound to instance %d", instance)

	case KeywordMode:
		if mon.tc == nil {
			return fmt.Errorf("instance %d is already configured. BIND again to reconfigure", mon.instance)
		}

		option, ok := tk.get()
		if !ok {
			return fmt.Errorf("mode required (TIMER or COUNTER)")
		}

		switch strings.ToUpper(option) {
		case "TIMER":
			mon.tmr = mon.tc.IntoTimer()
			mon.unt = mon.tmr
		case "COUNTER":
			mon.cnt = mon.tc.IntoCounter()
			mon.unt = mon.cnt
		default:
			return fmt.Errorf("unknown mode (%s)", option)
		}

		mon.tc = nil
		mon.printLine(terminal.StyleFeedback, "instance %d in %s mode", mon.instance, strings.ToLower(option))

	case KeywordStart:
		mon.unt.Start()

	case KeywordStop:
		mon.unt.Stop()

	case KeywordClear:
		mon.unt.Clear()

	case KeywordShutdown:
		mon.unt.Shutdown()

	case KeywordBitmode:
		if tk.remaining() == 0 {
			mon.printLine(terminal.StyleRegister, "counting width: %s", mon.unt.Bitmode())
			break
		}

		width, err := tk.getInt("width")
		if err != nil {
			return err
		}
		b, ok := timer.BitmodeFromWidth(width)
		if !ok {
			return fmt.Errorf("width must be 8, 16, 24 or 32 (%d)", width)
		}

		mon.unt.SetBitmode(b)
		mon.printLine(terminal.StyleFeedback, "counting width: %s (unit stopped)", b)

	case KeywordFreq:
		if tk.remaining() == 0 {
			p, err := mon.mc.Peek(regmap.TCURegisters(mon.instance).Prescaler)
			if err != nil {
				return err
			}
			mon.printLine(terminal.StyleRegister, "tick frequency: %s", timer.Frequency(p))
			break
		}

		if mon.tmr == nil {
			return fmt.Errorf("FREQ requires timer mode (see MODE)")
		}

		divider, err := tk.getInt("divider")
		if err != nil {
			return err
		}
		f, ok := timer.FrequencyFromDivider(divider)
		if !ok {
			return fmt.Errorf("divider must be between 0 and 9 (%d)", divider)
		}

		mon.tmr.SetFrequency(f)
		mon.printLine(terminal.StyleFeedback, "tick frequency: %s (timer stopped)", f)

	case KeywordCC:
		ch, err := mon.getChannel(tk)
		if err != nil {
			return err
		}

		if tk.remaining() == 0 {
			mon.printLine(terminal.StyleRegister, "CC%d %#08x", ch.Index(), ch.Read())
			break
		}

		val, err := tk.getUint("value")
		if err != nil {
			return err
		}
		ch.Write(val)
		mon.printLine(terminal.StyleFeedback, "CC%d <- %#08x", ch.Index(), val)

	case KeywordCapture:
		ch, err := mon.getChannel(tk)
		if err != nil {
			return err
		}

		mon.printLine(terminal.StyleRegister, "CC%d %#08x (captured)", ch.Index(), ch.Capture())

	case KeywordCount:
		if mon.cnt == nil {
			return fmt.Errorf("COUNT requires counter mode (see MODE)")
		}

		triggers := 1
		if tk.remaining() > 0 {
			var err error
			triggers, err = tk.getInt("triggers")
			if err != nil {
				return err
			}
		}
		if triggers < 1 {
			return fmt.Errorf("triggers must be positive (%d)", triggers)
		}

		task := mon.cnt.TaskCount()
		for i := 0; i < triggers; i++ {
			if err := mon.mc.Poke(task.Reg(), 1); err != nil {
				return err
			}
		}
		mon.printLine(terminal.StyleFeedback, "count task triggered x%d", triggers)

	case KeywordShort:
		ch, err := mon.getChannel(tk)
		if err != nil {
			return err
		}

		which, _ := tk.get()
		which = strings.ToUpper(which)
		state, _ := tk.get()
		state = strings.ToUpper(state)

		if state != "ON" && state != "OFF" {
			return fmt.Errorf("shortcut state must be ON or OFF (%s)", state)
		}

		switch which {
		case "CLEAR":
			if state == "ON" {
				ch.EnableShortcutClear()
			} else {
				ch.DisableShortcutClear()
			}
		case "STOP":
			if state == "ON" {
				ch.EnableShortcutStop()
			} else {
				ch.DisableShortcutStop()
			}
		default:
			return fmt.Errorf("unknown shortcut (%s)", which)
		}

		mon.printLine(terminal.StyleFeedback, "compare %d to %s shortcut %s",
			ch.Index(), strings.ToLower(which), strings.ToLower(state))

	case KeywordWire:
		option, _ := tk.get()
		if !strings.EqualFold(option, "COMPARE") {
			return fmt.Errorf("WIRE expects a COMPARE event (%s)", option)
		}

		ch, err := mon.getChannel(tk)
		if err != nil {
			return err
		}

		taskName, ok := tk.get()
		if !ok {
			return fmt.Errorf("task required")
		}
		taskName = strings.ToUpper(taskName)

		var task ppi.Task
		switch taskName {
		case "START":
			task = mon.unt.TaskStart()
		case "STOP":
			task = mon.unt.TaskStop()
		case "CLEAR":
			task = mon.unt.TaskClear()
		case "SHUTDOWN":
			task = mon.unt.TaskShutdown()
		case "COUNT":
			if mon.cnt == nil {
				return fmt.Errorf("the count task only exists in counter mode (see MODE)")
			}
			task = mon.cnt.TaskCount()
		case "CAPTURE":
			target, err := mon.getChannel(tk)
			if err != nil {
				return err
			}
			task = target.TaskCapture()
		default:
			return fmt.Errorf("unknown task (%s)", taskName)
		}

		mon.mc.Wire(ch.EventCompare(), task)
		mon.printLine(terminal.StyleFeedback, "wired compare %d to %s task", ch.Index(), strings.ToLower(taskName))

		// the flash controller
	case KeywordErase:
		addr, err := tk.getUint("address")
		if err != nil {
			return err
		}

		s, err := flash.SectorAt(addr)
		if err != nil {
			return err
		}

		mon.fl.Unlock()
		err = mon.fl.EraseSector(s)
		mon.fl.Lock()
		if err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "erased %v", s)

	case KeywordProgram:
		addr, err := tk.getUint("address")
		if err != nil {
			return err
		}
		if addr%flash.WriteSize != 0 {
			return fmt.Errorf("address must be aligned to the write size of %d (%#08x)", flash.WriteSize, addr)
		}

		if tk.remaining() == 0 {
			return fmt.Errorf("at least one byte value required")
		}
		data := make([]byte, 0, tk.remaining())
		for {
			s, ok := tk.get()
			if !ok {
				break
			}
			v, err := strconv.ParseUint(s, 0, 8)
			if err != nil {
				return fmt.Errorf("byte value expected (%s)", s)
			}
			data = append(data, byte(v))
		}

		// pad to the write granularity with the value erased cells hold
		for len(data)%flash.WriteSize != 0 {
			data = append(data, 0xff)
		}

		end := addr + uint32(len(data))
		if addr < regmap.FlashOrigin || end > regmap.FlashOrigin+regmap.FlashSize {
			return fmt.Errorf("not inside flash ([%#08x,%#08x))", addr, end)
		}

		mon.fl.Unlock()
		err = mon.fl.Write(addr, data)
		mon.fl.Lock()
		if err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "programmed %d bytes at %#08x", len(data), addr)

	case KeywordProtect:
		addr, err := tk.getUint("address")
		if err != nil {
			return err
		}
		size, err := tk.getUint("length")
		if err != nil {
			return err
		}

		mon.mc.ProtectRegion(addr, size)
		mon.printLine(terminal.StyleFeedback, "write protected [%#08x,%#08x)", addr, addr+size)
	}

	// all arguments should have been consumed by now
	if s, ok := tk.peek(); ok {
		return fmt.Errorf("unexpected argument to %s (%s)", keyword, s)
	}

	return nil
}

// getChannel parses a channel index and returns the handle for it. index
// errors are reported as errors, not panics; the index originates from user
// input.
func (mon *Monitor) getChannel(tk *tokens) (*timer.Channel, error) {
	n, err := tk.getInt("channel")
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= regmap.NumCC {
		return nil, fmt.Errorf("no such capture/compare channel (%d)", n)
	}
	return mon.channel(n), nil
}

// regsUnit displays the registers of the bound timer/counter instance.
func (mon *Monitor) regsUnit() {
	regs := regmap.TCURegisters(mon.instance)

	mode, _ := mon.mc.Peek(regs.Mode)
	bitmode, _ := mon.mc.Peek(regs.Bitmode)
	prescaler, _ := mon.mc.Peek(regs.Prescaler)
	shorts, _ := mon.mc.Peek(regs.Shorts)
	inten, _ := mon.mc.Peek(regs.Intenset)

	mon.printLine(terminal.StyleRegister, "TCU%d", mon.instance)
	mon.printLine(terminal.StyleRegister, "   MODE      %#010x (%s)", mode, tcuModeName(mode))
	mon.printLine(terminal.StyleRegister, "   BITMODE   %#010x (%s)", bitmode, timer.Bitmode(bitmode))
	mon.printLine(terminal.StyleRegister, "   PRESCALER %#010x (%s)", prescaler, timer.Frequency(prescaler))
	mon.printLine(terminal.StyleRegister, "   SHORTS    %#010x", shorts)
	mon.printLine(terminal.StyleRegister, "   INTEN     %#010x", inten)

	for i := 0; i < regmap.NumCC; i++ {
		cc, _ := mon.mc.Peek(regs.CC[i])
		ev, _ := mon.mc.Peek(regs.EventsCompare[i])
		mon.printLine(terminal.StyleRegister, "   CC%d       %#010x  COMPARE%d %d", i, cc, i, ev)
	}
}

// regsFlash displays the registers of the flash memory controller.
func (mon *Monitor) regsFlash() {
	regs := regmap.FMCRegisters()

	sr, _ := mon.mc.Peek(regs.Sr)
	cr, _ := mon.mc.Peek(regs.Cr)
	ar, _ := mon.mc.Peek(regs.Ar)
	wrpr, _ := mon.mc.Peek(regs.Wrpr)

	mon.printLine(terminal.StyleRegister, "FLASH")
	mon.printLine(terminal.StyleRegister, "   SR        %#010x%s", sr, flashSrDecoration(sr))
	mon.printLine(terminal.StyleRegister, "   CR        %#010x%s", cr, flashCrDecoration(cr))
	mon.printLine(terminal.StyleRegister, "   AR        %#010x", ar)
	mon.printLine(terminal.StyleRegister, "   WRPR      %#010x", wrpr)
}

func tcuModeName(mode uint32) string {
	switch mode {
	case regmap.TCUModeTimer:
		return "timer"
	case regmap.TCUModeCounter, regmap.TCUModeLowPowerCounter:
		return "counter"
	}
	return "unknown"
}

func flashSrDecoration(sr uint32) string {
	s := strings.Builder{}
	if sr&regmap.SrBsy != 0 {
		s.WriteString(" BSY")
	}
	if sr&regmap.SrPgErr != 0 {
		s.WriteString(" PGERR")
	}
	if sr&regmap.SrWrPrt != 0 {
		s.WriteString(" WRPRT")
	}
	if sr&regmap.SrEop != 0 {
		s.WriteString(" EOP")
	}
	return s.String()
}

func flashCrDecoration(cr uint32) string {
	s := strings.Builder{}
	if cr&regmap.CrPg != 0 {
		s.WriteString(" PG")
	}
	if cr&regmap.CrPer != 0 {
		s.WriteString(" PER")
	}
	if cr&regmap.CrMer != 0 {
		s.WriteString(" MER")
	}
	if cr&regmap.CrStrt != 0 {
		s.WriteString(" STRT")
	}
	if cr&regmap.CrLock != 0 {
		s.WriteString(" LOCK")
	}
	return s.String()
}
