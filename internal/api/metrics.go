package api

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// bytesPerMB converts bytes to megabytes.
const bytesPerMB = 1024 * 1024

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	Process       *ProcessMetrics  `json:"process,omitempty"`
	Host          *HostMetrics     `json:"host,omitempty"`
	MQTT          MQTTMetrics      `json:"mqtt"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
	Workers       WorkerMetrics    `json:"workers"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// ProcessMetrics contains OS-level statistics for this process.
type ProcessMetrics struct {
	PID        int32   `json:"pid"`
	RSSMB      float64 `json:"rss_mb"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
}

// HostMetrics contains host memory and, for SQLite, free disk space.
type HostMetrics struct {
	MemoryTotalMB     float64  `json:"memory_total_mb"`
	MemoryUsedPercent float64  `json:"memory_used_percent"`
	DiskFreeMB        *float64 `json:"disk_free_mb,omitempty"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	Driver          string `json:"driver"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
}

// WorkerMetrics describes the loaded worker directory.
type WorkerMetrics struct {
	Buildings int `json:"buildings"`
}

// handleMetrics returns runtime, process, host and dependency metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
		Process: s.processMetrics(),
		Host:    s.hostMetrics(),
		Workers: WorkerMetrics{
			Buildings: s.workers.Size(),
		},
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{
			Enabled:   true,
			Connected: s.mqtt.IsConnected(),
		}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			Driver:          s.db.Driver(),
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

// processMetrics reads this process's OS statistics. Nil when the platform
// does not expose them.
func (s *Server) processMetrics() *ProcessMetrics {
	pid := int32(os.Getpid()) //nolint:gosec // PIDs fit in int32 on every supported OS
	proc, err := process.NewProcess(pid)
	if err != nil {
		s.logger.Debug("process metrics unavailable", "error", err)
		return nil
	}

	pm := &ProcessMetrics{PID: pid}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		pm.RSSMB = float64(memInfo.RSS) / bytesPerMB
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		pm.CPUPercent = cpu
	}
	if threads, err := proc.NumThreads(); err == nil {
		pm.Threads = threads
	}
	return pm
}

// hostMetrics reads host memory and the free space next to a SQLite file.
func (s *Server) hostMetrics() *HostMetrics {
	vm, err := mem.VirtualMemory()
	if err != nil {
		s.logger.Debug("host memory metrics unavailable", "error", err)
		return nil
	}

	hm := &HostMetrics{
		MemoryTotalMB:     float64(vm.Total) / bytesPerMB,
		MemoryUsedPercent: vm.UsedPercent,
	}

	if s.db != nil && s.db.Path() != "" {
		if usage, err := disk.Usage(filepath.Dir(s.db.Path())); err == nil {
			free := float64(usage.Free) / bytesPerMB
			hm.DiskFreeMB = &free
		}
	}
	return hm
}
