package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shirou/gopsutil/process"

	"presence-lab/domain/event"
)

// PresenceStats aggregates what /debug/stats exposes.
type PresenceStats struct {
	Connections    int     `json:"connections"`
	OnlineUsers    int     `json:"online_users"`
	Delivered      uint64  `json:"delivered"`
	Offline        uint64  `json:"offline"`
	Failed         uint64  `json:"failed"`
	WorkerRestarts uint64  `json:"worker_restarts"`
	PidStatus      string  `json:"pid_status"`
	CpuPercent     float64 `json:"cpu_percent"`
	RamBytes       uint64  `json:"ram_bytes"`
	AllocMemMb     uint64  `json:"alloc_mem_mb"`
	NumGC          uint32  `json:"num_gc"`
}

// MonitoringManager keeps running totals of the telemetry stream.
type MonitoringManager struct {
	log            *slog.Logger
	once           sync.Once
	self           *process.Process
	delivered      uint64
	offline        uint64
	failed         uint64
	workerRestarts uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrDelivery(outcome event.Outcome) {
	switch outcome {
	case event.Delivered:
		atomic.AddUint64(&mm.delivered, 1)
	case event.Offline:
		atomic.AddUint64(&mm.offline, 1)
	case event.Failed:
		atomic.AddUint64(&mm.failed, 1)
	}
}

func (mm *MonitoringManager) IncrWorkerRestarts() {
	atomic.AddUint64(&mm.workerRestarts, 1)
}

// GetLatest mixes the counters with the caller's live figures and the process stats.
func (mm *MonitoringManager) GetLatest(connections, onlineUsers int) PresenceStats {
	stats := PresenceStats{
		Connections:    connections,
		OnlineUsers:    onlineUsers,
		Delivered:      atomic.LoadUint64(&mm.delivered),
		Offline:        atomic.LoadUint64(&mm.offline),
		Failed:         atomic.LoadUint64(&mm.failed),
		WorkerRestarts: atomic.LoadUint64(&mm.workerRestarts),
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	if p := mm.process(); p != nil {
		rss, cpu, status, err := selfStats(p)
		if err != nil {
			mm.log.Debug("Failed to collect self stats", "error", err)
		} else {
			stats.RamBytes, stats.CpuPercent, stats.PidStatus = rss, cpu, status
		}
	}
	return stats
}

func (mm *MonitoringManager) process() *process.Process {
	mm.once.Do(func() {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			mm.log.Warn("Process stats unavailable", "error", err)
			return
		}
		mm.self = p
	})
	return mm.self
}

// selfStats retrieves memory, CPU and OS status of the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
