package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"netcube/logging"
	"netcube/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源
		return true
	},
}

// HandleWS WebSocket 接入：/ws?room=room-1
func (m *WorldManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.Warnf("upgrade error: %v", err)
		return
	}

	world := m.GetOrCreateWorld(r.URL.Query().Get("room"))
	conn := transport.NewConn(ws)
	id := world.RequestJoin(conn)

	go conn.WritePump()
	go func() {
		// 读泵退出时，通知世界在 Tick 线程中移除该连接
		defer world.RequestLeave(id)
		conn.ReadPump(func(frame []byte) {
			world.OnFrame(id, frame)
		})
	}()
}

// Routes 注册全部 HTTP 接口
func (m *WorldManager) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}
