package check

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/backmassage/multiencode/internal/config"
	"github.com/backmassage/multiencode/internal/display"
)

// HostInfo is a snapshot of the resources relevant to sizing a batch.
// Zero fields mean the value could not be read on this platform.
type HostInfo struct {
	PhysicalCores int
	LogicalCores  int
	TotalMemory   uint64
	AvailMemory   uint64
	Load1         float64
}

// Host reads CPU, memory, and load information. Individual probe failures
// leave the corresponding fields zero.
func Host(ctx context.Context) HostInfo {
	var h HostInfo
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		h.PhysicalCores = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		h.LogicalCores = n
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		h.TotalMemory = vm.Total
		h.AvailMemory = vm.Available
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		h.Load1 = avg.Load1
	}
	return h
}

// SuggestedWorkers is the bounded-policy pool size used when none is
// configured: one encoder per physical core, falling back to the logical
// CPU count when physical cores cannot be read.
func SuggestedWorkers(ctx context.Context) int {
	return suggestedWorkers(Host(ctx))
}

func suggestedWorkers(h HostInfo) int {
	if h.PhysicalCores > 0 {
		return h.PhysicalCores
	}
	if h.LogicalCores > 0 {
		return h.LogicalCores
	}
	return max(runtime.NumCPU(), 1)
}

// ResolveWorkers fills cfg.Workers with SuggestedWorkers when the bounded
// policy is selected without an explicit pool size.
func ResolveWorkers(ctx context.Context, cfg *config.Config) {
	if cfg.Policy == config.PolicyBounded && cfg.Workers == 0 {
		cfg.Workers = SuggestedWorkers(ctx)
	}
}

func checkHost(ctx context.Context, cfg *config.Config, log Logger) {
	h := Host(ctx)
	log.Info("Host:")
	log.Info("  CPU: %d physical / %d logical cores", h.PhysicalCores, h.LogicalCores)
	if h.TotalMemory > 0 {
		log.Info("  Memory: %s available of %s",
			display.FormatBytes(int64(h.AvailMemory)), display.FormatBytes(int64(h.TotalMemory)))
	}
	if h.Load1 > 0 {
		log.Info("  Load (1m): %.2f", h.Load1)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = suggestedWorkers(h)
	}
	log.Info("Policy: %s (bounded pool would use %d workers)", cfg.Policy, workers)

	if jobs := len(cfg.Profiles); jobs > 0 && cfg.Policy != config.PolicySequential &&
		h.LogicalCores > 0 && jobs > h.LogicalCores {
		log.Warn("  %d profiles per file exceed %d logical cores; consider --policy bounded", jobs, h.LogicalCores)
	}
}
