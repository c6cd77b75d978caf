package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-sync/observability"
)

// HeartbeatWorker periodically logs engine counters together with the
// process's own memory and CPU footprint. It runs under the supervisor,
// so a failure to read process stats only skips one beat.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.Monitor
	interval   time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitoring *observability.Monitor,
	interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			stats := w.monitoring.GetLatest()
			w.log.Info("Heartbeat",
				"merged", stats.MessagesMerged,
				"history_loads", stats.HistoryLoads,
				"feed_drops", stats.FeedDrops,
				"replies_skipped", stats.RepliesSkipped,
				"rooms_activated", stats.RoomsActivated,
				"ram_bytes", rss,
				"cpu_percent", cpu)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpu, nil
}
