package server

import (
	"github.com/elliotchance/orderedmap/v2"

	"netcube/game"
)

// goInGameRequests 待处理的进入游戏请求；每个连接最多一条
type goInGameRequests struct {
	m *orderedmap.OrderedMap[game.NetworkID, struct{}]
}

func newGoInGameRequests() goInGameRequests {
	return goInGameRequests{m: orderedmap.NewOrderedMap[game.NetworkID, struct{}]()}
}

// ReceiveGoInGame 记录连接 id 的进入游戏请求。
// 已有未处理请求时拒绝（返回 false），保证每个连接至多一条在途请求。
func (w *World) ReceiveGoInGame(id game.NetworkID) bool {
	if _, ok := w.conns.get(id); !ok {
		return false
	}
	if _, pending := w.requests.m.Get(id); pending {
		w.metrics.GoInGameIgnored.Inc()
		return false
	}
	w.requests.m.Set(id, struct{}{})
	return true
}

// PendingRequests 当前未处理的请求数
func (w *World) PendingRequests() int { return w.requests.m.Len() }

// ProcessGoInGame 处理全部待处理请求：标记连接进入游戏、生成其实体、绑定命令目标、删除请求。
// 已在游戏中的连接请求直接丢弃。返回新生成的实体数。
func (w *World) ProcessGoInGame() int {
	var batch game.Batch
	spawned := 0
	for el := w.requests.m.Front(); el != nil; el = el.Next() {
		conn, ok := w.conns.get(el.Key)
		if !ok {
			continue
		}
		if conn.InGame {
			w.metrics.GoInGameIgnored.Inc()
			continue
		}
		conn.InGame = true
		w.log.Infof("Server setting connection %d to in game", conn.ID)
		batch.Spawn(w.spawn, conn.ID, func(e *game.Entity) {
			conn.Target = e.ID
		})
		spawned++
	}
	w.requests.m = orderedmap.NewOrderedMap[game.NetworkID, struct{}]()
	batch.Commit(w.arena)
	w.metrics.GoInGameProcessed.Add(int64(spawned))
	return spawned
}
