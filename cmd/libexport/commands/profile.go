package commands

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ProfileArgs holds the runtime profiling flags. Profiles are collected
// between [ProfileArgs.Start] and [ProfileArgs.Stop].
type ProfileArgs struct {
	cpu       *string
	heap      *string
	mem       *string
	block     *string
	mutex     *string
	memRate   *int
	blockRate *int
	mutexRate *int

	cpuFile *os.File
	active  []namedProfile
}

type namedProfile struct {
	profile *pprof.Profile
	kind    string
	path    string
}

func NewProfileArgs() *ProfileArgs {
	return &ProfileArgs{
		cpu:       new(string),
		heap:      new(string),
		mem:       new(string),
		block:     new(string),
		mutex:     new(string),
		memRate:   new(int),
		blockRate: new(int),
		mutexRate: new(int),
	}
}

// AddFlags registers the profiling flags on fs.
func (a *ProfileArgs) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(a.cpu, "cpuprofile", "", "Write a CPU profile to this file")
	fs.StringVar(a.heap, "heapprofile", "", "Write a heap profile to this file")
	fs.StringVar(a.mem, "memprofile", "", "Write a memory profile to this file")
	fs.IntVar(a.memRate, "memprofile_rate", 512*1024, "Memory profiling rate as a fraction")
	fs.StringVar(a.block, "blockprofile", "", "Write a block profile to this file")
	fs.IntVar(a.blockRate, "blockprofile_rate", 1, "Block profiling rate as a fraction")
	fs.StringVar(a.mutex, "mutexprofile", "", "Write a mutex profile to this file")
	fs.IntVar(a.mutexRate, "mutexprofile_rate", 1, "Mutex profiling rate as a fraction")

	for _, f := range []string{"cpuprofile", "heapprofile", "memprofile", "blockprofile", "mutexprofile"} {
		must(cobra.MarkFlagFilename(fs, f))
	}
}

// Enabled reports whether any profile was requested.
func (a *ProfileArgs) Enabled() bool {
	return *a.cpu != "" || *a.heap != "" || *a.mem != "" || *a.block != "" || *a.mutex != ""
}

// Start starts CPU profiling and sets the sampling rates of the requested
// profiles.
func (a *ProfileArgs) Start() error {
	if *a.cpu != "" {
		f, err := os.Create(*a.cpu)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}

		err = pprof.StartCPUProfile(f)
		if err != nil {
			must(f.Close())

			return fmt.Errorf("failed to start CPU profile: %w", err)
		}

		a.cpuFile = f
	}

	if *a.heap != "" || *a.mem != "" {
		runtime.MemProfileRate = *a.memRate
	}

	if *a.block != "" {
		runtime.SetBlockProfileRate(*a.blockRate)
	}

	if *a.mutex != "" {
		runtime.SetMutexProfileFraction(*a.mutexRate)
	}

	a.active = nil

	for _, p := range []namedProfile{
		{kind: "heap", path: *a.heap},
		{kind: "allocs", path: *a.mem},
		{kind: "block", path: *a.block},
		{kind: "mutex", path: *a.mutex},
	} {
		if p.path != "" {
			p.profile = pprof.Lookup(p.kind)
			a.active = append(a.active, p)
		}
	}

	return nil
}

// Stop stops CPU profiling and writes every requested profile.
func (a *ProfileArgs) Stop() error {
	if a.cpuFile != nil {
		pprof.StopCPUProfile()

		err := a.cpuFile.Close()
		a.cpuFile = nil

		if err != nil {
			return fmt.Errorf("failed to close CPU profile: %w", err)
		}
	}

	for _, p := range a.active {
		if p.kind == "allocs" {
			runtime.GC() //nolint:revive // Get up-to-date statistics for the profile.
		}

		err := writeProfile(p)
		if err != nil {
			return err
		}
	}

	a.active = nil

	return nil
}

func writeProfile(p namedProfile) error {
	f, err := os.Create(p.path)
	if err != nil {
		return fmt.Errorf("failed to create %s profile: %w", p.kind, err)
	}

	err = p.profile.WriteTo(f, 0)
	if err != nil {
		must(f.Close())

		return fmt.Errorf("failed to write %s profile: %w", p.kind, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("failed to close %s profile: %w", p.kind, err)
	}

	return nil
}
