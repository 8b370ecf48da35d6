package server

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"

	"netcube/game"
)

// Peer 连接的发送端（写协程），transport.Conn 实现了它
type Peer interface {
	Enqueue(b []byte) bool
	EnqueueReliable(b []byte) bool
	Close()
}

// Connection 一个远端玩家的连接状态，只在 Tick 线程中读写
type Connection struct {
	ID      game.NetworkID
	Session uuid.UUID
	InGame  bool
	Target  game.EntityID // 命令目标（拥有的实体），0 表示尚未分配

	Peer Peer
}

// connections 以 NetworkID 为键的连接表，按接入顺序遍历
type connections struct {
	m *orderedmap.OrderedMap[game.NetworkID, *Connection]
}

func newConnections() connections {
	return connections{m: orderedmap.NewOrderedMap[game.NetworkID, *Connection]()}
}

func (c connections) add(conn *Connection) { c.m.Set(conn.ID, conn) }

func (c connections) get(id game.NetworkID) (*Connection, bool) { return c.m.Get(id) }

func (c connections) remove(id game.NetworkID) bool { return c.m.Delete(id) }

func (c connections) len() int { return c.m.Len() }

func (c connections) each(fn func(conn *Connection)) {
	for el := c.m.Front(); el != nil; el = el.Next() {
		fn(el.Value)
	}
}
