// Package sysinfo samples process and system memory for log enrichment.
package sysinfo

import (
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MemorySnapshot is a point-in-time view of memory usage. Zero fields
// mean the corresponding probe failed; a snapshot is always usable.
type MemorySnapshot struct {
	ProcessRSSMB  float64 `json:"process_rss_mb"`
	SystemUsedGB  float64 `json:"system_used_gb"`
	SystemTotalGB float64 `json:"system_total_gb"`
	SystemUsedPct float64 `json:"system_used_pct"`
}

// Memory probes current memory usage. Probe failures are swallowed so a
// missing /proc or an unsupported platform never breaks the caller's
// log line.
func Memory() MemorySnapshot {
	var snap MemorySnapshot

	if v, err := mem.VirtualMemory(); err == nil && v.Total > 0 {
		snap.SystemTotalGB = float64(v.Total) / 1024 / 1024 / 1024
		snap.SystemUsedGB = float64(v.Used) / 1024 / 1024 / 1024
		snap.SystemUsedPct = v.UsedPercent
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil && info != nil {
			snap.ProcessRSSMB = float64(info.RSS) / 1024 / 1024
		}
	}

	return snap
}
