// Package metrics samples process and host resource usage during a run
// and reports it through the structured log.
package metrics

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Sample is one resource snapshot.
type Sample struct {
	SystemCPU  float64 // host CPU usage, 0-100
	ProcessCPU float64 // this process, 0-100 per core
	MemPercent float64
	MemUsedGB  float64
	HeapMB     float64 // Go heap in use
	Goroutines int
	Taken      time.Time
}

// Collector logs a Sample on a fixed interval until its context ends.
type Collector struct {
	interval time.Duration
	log      *zap.Logger
	proc     *process.Process

	mu   sync.RWMutex
	last *Sample
}

// NewCollector creates a collector. Intervals under a second fall back
// to the 30 second default.
func NewCollector(interval time.Duration, log *zap.Logger) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Collector{interval: interval, log: log, proc: proc}
}

// Start runs the sampling loop. It returns when ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Prime the CPU counters so the first reported sample has a delta.
	c.sample()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

// Last returns the most recent sample, or nil before the first tick.
func (c *Collector) Last() *Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *Collector) sample() {
	s := &Sample{Taken: time.Now(), Goroutines: runtime.NumGoroutine()}

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		s.SystemCPU = pcts[0]
	}
	if c.proc != nil {
		if p, err := c.proc.Percent(0); err == nil {
			s.ProcessCPU = p
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemPercent = vm.UsedPercent
		s.MemUsedGB = float64(vm.Used) / (1 << 30)
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapMB = float64(ms.HeapInuse) / (1 << 20)

	c.mu.Lock()
	c.last = s
	c.mu.Unlock()

	c.log.Info("Resource usage",
		zap.Float64("sys_cpu", s.SystemCPU),
		zap.Float64("proc_cpu", s.ProcessCPU),
		zap.Float64("mem_pct", s.MemPercent),
		zap.Float64("mem_used_gb", s.MemUsedGB),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Int("goroutines", s.Goroutines),
	)
}
