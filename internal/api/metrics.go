package api

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerMetrics метрики процесса для /api/stats
type ServerMetrics struct {
	StartTime time.Time

	once sync.Once
	proc *process.Process
	err  error
}

// NewServerMetrics создает новый экземпляр метрик
func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		StartTime: time.Now(),
	}
}

// GetUptime возвращает время работы в виде "1д 2ч 3м 4с"
func (sm *ServerMetrics) GetUptime() string {
	return formatUptime(time.Since(sm.StartTime))
}

func formatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// GetMemoryUsage возвращает занятую кучу в MB
func (sm *ServerMetrics) GetMemoryUsage() (float64, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024, nil
}

// ownProcess процесс сервера, открывается один раз
func (sm *ServerMetrics) ownProcess() (*process.Process, error) {
	sm.once.Do(func() {
		sm.proc, sm.err = process.NewProcess(int32(os.Getpid()))
	})
	return sm.proc, sm.err
}

// GetCPUUsage возвращает загрузку CPU процессом в процентах.
// Если процесс недоступен, берется короткий замер по системе.
func (sm *ServerMetrics) GetCPUUsage() (float64, error) {
	proc, err := sm.ownProcess()
	if err == nil {
		var pct float64
		if pct, err = proc.CPUPercent(); err == nil {
			return pct, nil
		}
	}
	percents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}

// GetSystemCPUUsage загрузка CPU системы за секунду
func (sm *ServerMetrics) GetSystemCPUUsage() (float64, error) {
	percents, err := cpu.Percent(time.Second, false)
	if err != nil || len(percents) == 0 {
		return 0, err
	}
	return percents[0], nil
}

// GetDetailedMemoryStats возвращает детальную статистику памяти
func (sm *ServerMetrics) GetDetailedMemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := map[string]interface{}{
		"alloc_mb":      float64(m.Alloc) / 1024 / 1024,
		"sys_mb":        float64(m.Sys) / 1024 / 1024,
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
	if proc, err := sm.ownProcess(); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			stats["rss_mb"] = float64(info.RSS) / 1024 / 1024
		}
	}
	return stats
}
