package server

import (
	"sync"
	"testing"

	"netcube/game"
)

// recordingPeer 记录发送的帧
type recordingPeer struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (p *recordingPeer) Enqueue(b []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames = append(p.frames, b)
	return true
}

func (p *recordingPeer) EnqueueReliable(b []byte) bool { return p.Enqueue(b) }

func (p *recordingPeer) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *recordingPeer) envelopes(t *testing.T) []game.Envelope {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]game.Envelope, 0, len(p.frames))
	for _, f := range p.frames {
		env, err := game.Decode(f)
		if err != nil {
			t.Fatalf("decode sent frame: %v", err)
		}
		out = append(out, env)
	}
	return out
}

func newTestWorld() *World {
	opts := DefaultOptions()
	opts.TickRate = 20
	opts.MoveRate = 2
	return NewWorld("test", opts)
}

// joinInGame 接入连接并完成进入游戏握手
func joinInGame(t *testing.T, w *World, id game.NetworkID) (*Connection, *game.Entity) {
	t.Helper()
	conn := w.Connect(id, &recordingPeer{})
	if !w.ReceiveGoInGame(id) {
		t.Fatalf("go in game request for %d rejected", id)
	}
	w.ProcessGoInGame()
	e, ok := w.Arena().Get(conn.Target)
	if !ok {
		t.Fatalf("connection %d has no avatar after handshake", id)
	}
	return conn, e
}
