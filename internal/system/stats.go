package system

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of host and process resource usage.
type Stats struct {
	LogicalCPUs   int     `yaml:"logical_cpus"`
	HostMemUsed   float64 `yaml:"host_mem_used_percent"`
	ProcessRSS    uint64  `yaml:"process_rss_bytes"`
	ProcessCPU    float64 `yaml:"process_cpu_percent"`
	Goroutines    int     `yaml:"goroutines"`
	CollectionErr string  `yaml:"collection_error,omitempty"`
}

// Collect gathers a Stats snapshot. Fields that cannot be read stay zero and
// the first error is kept in CollectionErr.
func Collect() Stats {
	s := Stats{Goroutines: runtime.NumGoroutine()}
	keep := func(err error) {
		if err != nil && s.CollectionErr == "" {
			s.CollectionErr = err.Error()
		}
	}

	n, err := cpu.Counts(true)
	keep(err)
	s.LogicalCPUs = n

	vm, err := mem.VirtualMemory()
	keep(err)
	if vm != nil {
		s.HostMemUsed = vm.UsedPercent
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	keep(err)
	if p != nil {
		if info, err := p.MemoryInfo(); err == nil {
			s.ProcessRSS = info.RSS
		} else {
			keep(err)
		}
		if pct, err := p.CPUPercent(); err == nil {
			s.ProcessCPU = pct
		} else {
			keep(err)
		}
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("CPUs: %d | Host memory: %.1f%% | RSS: %.1f MiB | CPU: %.1f%% | Goroutines: %d",
		s.LogicalCPUs, s.HostMemUsed, float64(s.ProcessRSS)/(1<<20), s.ProcessCPU, s.Goroutines)
}
