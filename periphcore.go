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

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Ardelean-Calin/periphcore/hardware/regmap"
	"github.com/Ardelean-Calin/periphcore/logger"
	"github.com/Ardelean-Calin/periphcore/modalflag"
	"github.com/Ardelean-Calin/periphcore/monitor"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal/colorterm"
	"github.com/Ardelean-Calin/periphcore/monitor/terminal/plainterm"
	"github.com/Ardelean-Calin/periphcore/performance"
	"github.com/Ardelean-Calin/periphcore/programmer"
	"github.com/Ardelean-Calin/periphcore/silicon"
	"github.com/Ardelean-Calin/periphcore/statsview"
	"github.com/Ardelean-Calin/periphcore/version"
	xterm "golang.org/x/term"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("MONITOR", "FLASH", "BENCH", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "MONITOR":
		err = monitorMode(md)

	case "FLASH":
		err = flashMode(md)

	case "BENCH":
		err = bench(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

func monitorMode(md *modalflag.Modes) error {
	md.NewMode()

	termType := md.AddString("term", "AUTO", "terminal type to use in monitor mode: AUTO, COLOR, PLAIN")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("stats", false, "launch statistics viewer")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(logger.NewColorizer(os.Stdout), false)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Println("! statsview not compiled in. build with the 'statsview' constraint")
		}
	}

	// the AUTO terminal type picks the color terminal when stdin looks like
	// an interactive terminal and the plain terminal otherwise, which is
	// what piped scripts want
	tt := strings.ToUpper(*termType)
	if tt == "AUTO" {
		if xterm.IsTerminal(int(os.Stdin.Fd())) {
			tt = "COLOR"
		} else {
			tt = "PLAIN"
		}
	}

	var trm terminal.Terminal

	switch tt {
	default:
		fmt.Printf("! unknown terminal type (%s) defaulting to plain\n", *termType)
		fallthrough
	case "PLAIN":
		trm = &plainterm.PlainTerminal{}
	case "COLOR":
		trm = &colorterm.ColorTerminal{}
	}

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	// interrupt signals are handled by the monitor itself, with a
	// confirmation request. nothing to set up here
	mon := monitor.NewMonitor(silicon.NewMachine(), trm)

	return mon.Run()
}

func flashMode(md *modalflag.Modes) error {
	md.NewMode()

	base := md.AddUint("base", uint(regmap.FlashOrigin), "base address to program the image at")
	protect := md.AddString("protect", "", "write protect a region before programming: start,length")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	md.AdditionalHelp(
		`The image file is raw binary and is programmed into flash as-is. Numbers given to the
-base and -protect flags accept the 0x prefix.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(logger.NewColorizer(os.Stdout), false)
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("binary image required for %s mode", md)

	case 1:
		image, err := programmer.Load(md.GetArg(0))
		if err != nil {
			return err
		}

		mc := silicon.NewMachine()

		// write protecting part of flash before programming is a way of
		// exercising the failure paths from the command line
		if *protect != "" {
			start, size, err := parseRegion(*protect)
			if err != nil {
				return err
			}
			mc.ProtectRegion(start, size)
		}

		err = programmer.Program(mc, image, uint32(*base))
		if err != nil {
			return err
		}

		fmt.Printf("programmed %d bytes at %#08x\n", len(image), uint32(*base))

	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

// parseRegion converts a string of the form "start,length" into its two
// numbers.
func parseRegion(s string) (uint32, uint32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("region must be of the form start,length (%s)", s)
	}

	start, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("region start must be a number (%s)", parts[0])
	}
	size, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("region length must be a number (%s)", parts[1])
	}

	return uint32(start), uint32(size), nil
}

func bench(md *modalflag.Modes) error {
	md.NewMode()

	profile := md.AddString("profile", "none", "run benchmark through a profiler: CPU, MEM, TRACE or ALL (comma sep)")
	duration := md.AddString("duration", "5s", "run duration")
	batch := md.AddInt("batch", 1000, "base clock cycles per machine tick [timer workload]")

	md.AdditionalHelp(
		`The benchmark runs the simulated machine flat out for the given duration, split evenly
between two workloads: a 16MHz timer with a compare-to-clear shortcut, and a flash
erase/program cycle on one sector.

The -batch flag sets how many base clock cycles are advanced per machine tick in the
timer workload. Larger batches amortise the locking overhead of the machine, so the
simulated clock figure rises with the batch size.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return performance.Check(md.Output, prf, *duration, *batch)

	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	verbose := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Printf("%s %s\n", version.ApplicationName, ver)
	if *verbose {
		fmt.Printf("  revision: %s\n", rev)
	}

	return nil
}
