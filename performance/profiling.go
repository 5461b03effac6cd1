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

package performance

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/Ardelean-Calin/periphcore/curated"
)

// Profile selects the profiling information generated by RunProfiler().
// Values can be combined with a bitwise or.
type Profile int

// List of valid Profile values.
const (
	ProfileNone  Profile = 0x00
	ProfileCPU   Profile = 0x01
	ProfileMem   Profile = 0x02
	ProfileTrace Profile = 0x04
	ProfileAll           = ProfileCPU | ProfileMem | ProfileTrace
)

// ParseProfileString converts a comma-separated list of profile names to a
// Profile value. Recognised names are cpu, mem, trace, all and none, in any
// letter-case.
func ParseProfileString(spec string) (Profile, error) {
	p := ProfileNone

	for _, s := range strings.Split(spec, ",") {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "NONE":
		case "CPU":
			p |= ProfileCPU
		case "MEM":
			p |= ProfileMem
		case "TRACE":
			p |= ProfileTrace
		case "ALL":
			p = ProfileAll
		default:
			return ProfileNone, curated.Errorf("profiling: unrecognised profile (%s)", s)
		}
	}

	return p, nil
}

// RunProfiler runs the supplied function, surrounding it with the requested
// profiling. Profile files are written to the working directory as
// <tag>_cpu.profile, <tag>_mem.profile and <tag>_trace.profile.
func RunProfiler(profile Profile, tag string, run func() error) error {
	if profile&ProfileCPU == ProfileCPU {
		f, err := os.Create(fmt.Sprintf("%s_cpu.profile", tag))
		if err != nil {
			return curated.Errorf("profiling: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return curated.Errorf("profiling: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if profile&ProfileTrace == ProfileTrace {
		f, err := os.Create(fmt.Sprintf("%s_trace.profile", tag))
		if err != nil {
			return curated.Errorf("profiling: %v", err)
		}
		defer f.Close()

		if err := trace.Start(f); err != nil {
			return curated.Errorf("profiling: %v", err)
		}
		defer trace.Stop()
	}

	err := run()
	if err != nil {
		return err
	}

	if profile&ProfileMem == ProfileMem {
		f, err := os.Create(fmt.Sprintf("%s_mem.profile", tag))
		if err != nil {
			return curated.Errorf("profiling: %v", err)
		}
		defer f.Close()

		// the garbage collector is run before the heap profile is taken so
		// that the profile reflects live allocations, not garbage
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return curated.Errorf("profiling: %v", err)
		}
	}

	return nil
}
