package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"

	"netcube/transport"
)

// Dial 连接服务端 WebSocket 并启动读写协程。返回的连接已 Attach 到客户端。
func (c *Client) Dial(ctx context.Context, rawURL, room string) (*transport.Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if room != "" {
		q := u.Query()
		q.Set("room", room)
		u.RawQuery = q.Encode()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	conn := transport.NewConn(ws)
	c.Attach(conn)

	go conn.WritePump()
	go conn.ReadPump(func(frame []byte) {
		if !c.Push(frame) {
			c.log.Debugf("inbox full, frame dropped")
		}
	})
	c.log.Infof("connected to %s", u)
	return conn, nil
}

// Run 等待 welcome 后以服务端 Tick 频率驱动客户端，直到 ctx 取消或连接断开。
// onTick 在每个 Tick 结束后调用，可为 nil。
func (c *Client) Run(ctx context.Context, conn *transport.Conn, onTick func(c *Client)) error {
	defer sentry.Recover()
	defer conn.Close()

	// 先同步处理帧直到拿到 NetworkID 与 Tick 频率
	for c.networkID == 0 {
		select {
		case frame := <-c.inbox:
			c.HandleFrame(frame)
		case <-conn.Done():
			return fmt.Errorf("connection closed before welcome")
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if c.tickRate <= 0 {
		return fmt.Errorf("invalid server tick rate %d", c.tickRate)
	}
	ticker := time.NewTicker(time.Second / time.Duration(c.tickRate))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Step()
			if onTick != nil {
				onTick(c)
			}
		case <-conn.Done():
			c.log.Infof("connection closed")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
