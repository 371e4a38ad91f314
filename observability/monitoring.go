package observability

import (
	"context"
	"couple-chat/contract"
	"couple-chat/domain/event"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

const maxRecentDeliveries = 20

// RecentDelivery is one send_message outcome shown on the debug page.
type RecentDelivery struct {
	RoomID     string `json:"room_id"`
	SenderID   string `json:"sender_id,omitempty"`
	Status     string `json:"status"`
	Recipients int    `json:"recipients"`
	Reason     string `json:"reason,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// MonitoringStats aggregates every metric exposed by the debug server.
type MonitoringStats struct {
	// --- CHAT METRICS ---
	Connections      int    `json:"connections"`
	Rooms            int    `json:"rooms"`
	Delivered        uint64 `json:"delivered"`
	Failed           uint64 `json:"failed"`
	Dropped          uint64 `json:"dropped"`
	RestartedWorkers uint64 `json:"restarted_workers"`

	// --- SYSTEM METRICS ---
	AllocMemMb        uint64           `json:"alloc_mem_mb"`
	NumGC             uint32           `json:"num_gc"`
	NumGoroutine      int              `json:"num_goroutine"`
	ProcessRSSBytes   uint64           `json:"process_rss_bytes"`
	ProcessCPUPercent float64          `json:"process_cpu_percent"`
	RecentDeliveries  []RecentDelivery `json:"recent_deliveries"`
	UpdatedAt         string           `json:"updated_at"`
}

// MonitoringManager samples the chat state on a fixed interval and keeps
// the latest snapshot for readers.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats
	interval    time.Duration
	registry    contract.IConnectionRegistry
	membership  contract.IRoomMembership
	counter     *event.Counter
	process     *process.Process
}

var (
	_ contract.Worker = (*MonitoringManager)(nil)
	_ event.Handler   = (*MonitoringManager)(nil)
)

func NewMonitoringManager(log *slog.Logger, interval time.Duration,
	registry contract.IConnectionRegistry, membership contract.IRoomMembership,
	counter *event.Counter) *MonitoringManager {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process metrics unavailable", "error", err)
		p = nil
	}
	return &MonitoringManager{
		log:        log,
		interval:   interval,
		registry:   registry,
		membership: membership,
		counter:    counter,
		process:    p,
		latestStats: MonitoringStats{
			RecentDeliveries: make([]RecentDelivery, 0),
		},
	}
}

func (mm *MonitoringManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Debug("Monitoring manager stopped")
			return nil
		case <-ticker.C:
			mm.Refresh()
		}
	}
}

// Handle records delivery outcomes seen on the telemetry channel.
func (mm *MonitoringManager) Handle(e event.Event) {
	var delivery RecentDelivery
	switch payload := e.Payload.(type) {
	case event.MessageDelivered:
		delivery = RecentDelivery{RoomID: string(payload.Room), SenderID: string(payload.SenderID), Status: "delivered", Recipients: payload.Recipients}
	case event.SendFailed:
		delivery = RecentDelivery{RoomID: string(payload.Room), SenderID: string(payload.SenderID), Status: "failed", Reason: payload.Reason}
	case event.SendDropped:
		delivery = RecentDelivery{RoomID: string(payload.Room), Status: "dropped", Reason: payload.Reason}
	default:
		return
	}
	delivery.Timestamp = e.CreatedAt.Format("15:04:05")

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.RecentDeliveries = append([]RecentDelivery{delivery}, mm.latestStats.RecentDeliveries...)
	if len(mm.latestStats.RecentDeliveries) > maxRecentDeliveries {
		mm.latestStats.RecentDeliveries = mm.latestStats.RecentDeliveries[:maxRecentDeliveries]
	}
}

// Refresh recomputes the snapshot from the registries, counters and runtime.
func (mm *MonitoringManager) Refresh() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var rss uint64
	var cpu float64
	if mm.process != nil {
		if info, err := mm.process.MemoryInfo(); err == nil {
			rss = info.RSS
		}
		if percent, err := mm.process.CPUPercent(); err == nil {
			cpu = percent
		}
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.latestStats.Connections = mm.registry.Len()
	mm.latestStats.Rooms = mm.membership.Len()
	mm.latestStats.Delivered = mm.counter.Get(event.MessageDeliveredType)
	mm.latestStats.Failed = mm.counter.Get(event.SendFailedType)
	mm.latestStats.Dropped = mm.counter.Get(event.SendDroppedType)
	mm.latestStats.RestartedWorkers = mm.counter.Get(event.RestartedAfterPanicType)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.NumGoroutine = runtime.NumGoroutine()
	mm.latestStats.ProcessRSSBytes = rss
	mm.latestStats.ProcessCPUPercent = cpu
	mm.latestStats.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	mm.log.Debug("Stats updated",
		"connections", mm.latestStats.Connections,
		"rooms", mm.latestStats.Rooms,
		"delivered", mm.latestStats.Delivered,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	stats := mm.latestStats
	stats.RecentDeliveries = append([]RecentDelivery(nil), mm.latestStats.RecentDeliveries...)
	return stats
}
