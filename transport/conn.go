package transport

import (
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"netcube/logging"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	readLimit  = 1 << 20 // 1MB
	sendQueue  = 64
)

// Conn 对 WebSocket 连接的轻量包装：写协程消费发送队列，读协程把帧交给回调。
// 两端（服务端与客户端）共用。
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
	dropped   atomic.Int64
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendQueue),
		done: make(chan struct{}),
	}
}

// Enqueue 将要发送的帧压入队列（非阻塞，满则丢弃，不阻塞 Tick）。
// 返回是否入队成功。
func (c *Conn) Enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		c.dropped.Inc()
		return false
	}
}

// EnqueueReliable 用于一次性请求（如进入游戏）：队列满时等待，连接关闭时放弃
func (c *Conn) EnqueueReliable(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	case <-c.done:
		return false
	}
}

// Dropped 因队列满被丢弃的帧数
func (c *Conn) Dropped() int64 { return c.dropped.Load() }

// Done 连接关闭后被关闭
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close 关闭底层连接，可重复调用
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// WritePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *Conn) WritePump() {
	defer sentry.Recover()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				logging.Log.Debugf("write: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadPump 读取帧并交给 onFrame，直到连接出错或关闭。
// onFrame 在读协程中调用，不得直接修改 Tick 线程拥有的状态。
func (c *Conn) ReadPump(onFrame func(frame []byte)) {
	defer sentry.Recover()
	defer c.Close()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Log.Debugf("read: %v", err)
			}
			return
		}
		onFrame(payload)
	}
}
