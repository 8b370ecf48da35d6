package server

import (
	"encoding/json"
	"net/http"
)

// HandleAdminConfig 提供世界配置的读取与更新（热更新）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
// tick_rate / move_rate 影响客户端预测的一致性，不允许运行时修改。
func (m *WorldManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	world := m.GetOrCreateWorld(roomID)

	type cfg struct {
		SnapshotInterval *int     `json:"snapshotInterval,omitempty"`
		SimulateDropProb *float64 `json:"simulateDropProb,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		interval := world.SnapshotInterval()
		drop := world.SimulateDropProb()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg{SnapshotInterval: &interval, SimulateDropProb: &drop})
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.SnapshotInterval != nil {
			if *body.SnapshotInterval <= 0 {
				http.Error(w, "snapshotInterval must be positive", http.StatusBadRequest)
				return
			}
			world.SetSnapshotInterval(*body.SnapshotInterval)
		}
		if body.SimulateDropProb != nil {
			world.SetSimulateDropProb(*body.SimulateDropProb)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		world.log.Infof("config updated: snapshotInterval=%d drop=%.2f",
			world.SnapshotInterval(), world.SimulateDropProb())
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定世界的运行指标
// GET /metrics?room=room-1
func (m *WorldManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	world := m.GetOrCreateWorld(r.URL.Query().Get("room"))
	payload := map[string]any{
		"room":    world.ID,
		"tick":    world.Tick(),
		"metrics": world.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
