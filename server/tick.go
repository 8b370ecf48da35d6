package server

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// StartTicker 启动世界的 Tick 循环（单线程推进世界）
func (w *World) StartTicker() {
	if w.tickerStarted {
		return
	}
	w.tickerStarted = true
	interval := time.Second / time.Duration(w.tickRate)
	go func() {
		defer sentry.Recover()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-w.quit:
				w.closeAll()
				return
			}
			start := time.Now()
			w.Step()
			w.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}()
}

// Stop 停止 Tick 循环；Tick 协程退出前关闭全部连接
func (w *World) Stop() {
	select {
	case <-w.quit:
		return
	default:
	}
	close(w.quit)
}

func (w *World) closeAll() {
	w.conns.each(func(conn *Connection) {
		if conn.Peer != nil {
			conn.Peer.Close()
		}
	})
}
