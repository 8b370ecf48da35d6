package server

import "sync"

// DefaultWorldID 未指定 room 参数时使用的世界
const DefaultWorldID = "room-1"

// WorldManager 管理多个世界的生命周期
type WorldManager struct {
	mu     sync.RWMutex
	worlds map[string]*World
	opts   Options
}

func NewWorldManager(opts Options) *WorldManager {
	return &WorldManager{worlds: make(map[string]*World), opts: opts}
}

// GetOrCreateWorld 获取或创建世界，并确保开始 Tick
func (m *WorldManager) GetOrCreateWorld(id string) *World {
	if id == "" {
		id = DefaultWorldID
	}
	m.mu.RLock()
	w, ok := m.worlds[id]
	m.mu.RUnlock()
	if ok {
		return w
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok = m.worlds[id]; !ok {
		w = NewWorld(id, m.opts)
		m.worlds[id] = w
		w.StartTicker()
	}
	return w
}

// StopAll 停止全部世界
func (m *WorldManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.worlds {
		w.Stop()
	}
}
