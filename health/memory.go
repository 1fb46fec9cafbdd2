package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig configures the memory health checker.
type MemoryCheckerConfig struct {
	// MaxHeapBytes is the heap size considered full. Zero means no ceiling:
	// the check only reports stats.
	MaxHeapBytes uint64

	// WarningThreshold is the fraction of MaxHeapBytes that reports degraded.
	// Default: 0.8
	WarningThreshold float64

	// CriticalThreshold is the fraction that reports unhealthy.
	// Default: 0.95
	CriticalThreshold float64
}

// MemoryChecker watches heap growth. The default cache never evicts, so heap
// use tracks the number of distinct places served.
type MemoryChecker struct {
	cfg  MemoryCheckerConfig
	read func(*runtime.MemStats)
}

// NewMemoryChecker creates a new memory health checker.
func NewMemoryChecker(cfg MemoryCheckerConfig) *MemoryChecker {
	if cfg.WarningThreshold <= 0 || cfg.WarningThreshold >= 1 {
		cfg.WarningThreshold = 0.8
	}
	if cfg.CriticalThreshold <= cfg.WarningThreshold || cfg.CriticalThreshold >= 1 {
		cfg.CriticalThreshold = max(0.95, cfg.WarningThreshold)
	}
	return &MemoryChecker{cfg: cfg, read: runtime.ReadMemStats}
}

func (m *MemoryChecker) Name() string { return "memory" }

// Check compares HeapAlloc with the configured ceiling.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	var stats runtime.MemStats
	m.read(&stats)

	ceiling := m.cfg.MaxHeapBytes
	details := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"heap_objects":     stats.HeapObjects,
		"max_heap_bytes":   ceiling,
		"num_gc":           stats.NumGC,
		"goroutines":       runtime.NumGoroutine(),
	}
	if ceiling == 0 {
		return Healthy("no heap ceiling configured").WithDetails(details)
	}

	ratio := float64(stats.HeapAlloc) / float64(ceiling)
	details["usage_percent"] = ratio * 100
	msg := fmt.Sprintf("heap usage %.1f%%", ratio*100)

	switch {
	case ratio >= m.cfg.CriticalThreshold:
		return Unhealthy(msg, ErrCheckFailed).WithDetails(details)
	case ratio >= m.cfg.WarningThreshold:
		return Degraded(msg).WithDetails(details)
	default:
		return Healthy(msg).WithDetails(details)
	}
}
