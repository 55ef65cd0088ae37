package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chathub/contract"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// StatsProvider reports live hub figures (connections, rooms, online users).
type StatsProvider func() map[string]any

// TelemetryWorker periodically logs process health (CPU, RSS, OS status)
// together with the hub's live counters. Observability only: losing a tick
// has no effect on delivery.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	stats    StatsProvider
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration, stats StatsProvider) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval, stats: stats}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			attrs := []any{
				"pid_status", status,
				"cpu_percent", cpu,
				"ram_bytes", rss,
			}
			for k, v := range w.stats() {
				attrs = append(attrs, k, v)
			}
			w.log.Info("Hub telemetry", attrs...)
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
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
