package renderer

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// HostInfo describes the machine a CPU backend runs on
type HostInfo struct {
	CPUModel      string
	LogicalCores  int
	PhysicalCores int
	TotalMemory   uint64 // Bytes
}

// DetectHost queries CPU and memory information. Partial results are
// returned together with the first error encountered.
func DetectHost() (HostInfo, error) {
	info := HostInfo{LogicalCores: runtime.NumCPU()}

	cpuInfo, err := cpu.Info()
	if err != nil {
		return info, fmt.Errorf("cpu info: %w", err)
	}
	if len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
	}

	if logical, err := cpu.Counts(true); err == nil && logical > 0 {
		info.LogicalCores = logical
	}
	if physical, err := cpu.Counts(false); err == nil {
		info.PhysicalCores = physical
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return info, fmt.Errorf("memory info: %w", err)
	}
	info.TotalMemory = memInfo.Total

	return info, nil
}

// Workers returns the worker count a pool should use on this host
func (h HostInfo) Workers() int {
	if h.LogicalCores > 0 {
		return h.LogicalCores
	}
	return runtime.NumCPU()
}

func (h HostInfo) String() string {
	model := h.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s, %d logical / %d physical cores, %.1f GiB RAM",
		model, h.LogicalCores, h.PhysicalCores, float64(h.TotalMemory)/(1<<30))
}
