package server

import "go.uber.org/atomic"

// WorldMetrics 记录世界运行期的关键指标（用于监控与调试）
type WorldMetrics struct {
	TickCount         atomic.Int64 // 统计的 Tick 次数
	TotalTickNs       atomic.Int64 // Tick 累计耗时（纳秒）
	Connections       atomic.Int64 // 当前连接数
	CommandsAccepted  atomic.Int64 // 写入命令缓冲的命令数
	CommandsLate      atomic.Int64 // 到达时对应 Tick 已模拟完成的命令数
	CommandsDropped   atomic.Int64 // 因连接未进入游戏或内容非法被丢弃的命令数
	DropsSimulated    atomic.Int64 // 因模拟丢包被丢弃的命令批次数
	ChanFullDiscarded atomic.Int64 // 因通道满被丢弃的命令批次数
	SnapshotsSent     atomic.Int64
	GoInGameProcessed atomic.Int64
	GoInGameIgnored   atomic.Int64 // 重复的进入游戏请求
}

func (m *WorldMetrics) AddTick(ns int64) {
	m.TickCount.Inc()
	m.TotalTickNs.Add(ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *WorldMetrics) Snapshot() map[string]any {
	tick := m.TickCount.Load()
	total := m.TotalTickNs.Load()
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"connections":         m.Connections.Load(),
		"commands_accepted":   m.CommandsAccepted.Load(),
		"commands_late":       m.CommandsLate.Load(),
		"commands_dropped":    m.CommandsDropped.Load(),
		"drops_simulated":     m.DropsSimulated.Load(),
		"chan_full_discarded": m.ChanFullDiscarded.Load(),
		"snapshots_sent":      m.SnapshotsSent.Load(),
		"go_in_game":          m.GoInGameProcessed.Load(),
		"go_in_game_ignored":  m.GoInGameIgnored.Load(),
		"avg_tick_ms":         avgMs,
	}
}
