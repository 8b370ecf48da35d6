package client

import (
	"sync"
	"testing"

	"netcube/game"
)

func tick(n uint32) game.Tick { return game.Tick(n) }

// recordingSender 记录客户端发出的帧
type recordingSender struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *recordingSender) Enqueue(b []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, b)
	return true
}

func (s *recordingSender) EnqueueReliable(b []byte) bool { return s.Enqueue(b) }

func (s *recordingSender) ofType(t *testing.T, msgType string) []game.Envelope {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []game.Envelope
	for _, f := range s.frames {
		env, err := game.Decode(f)
		if err != nil {
			t.Fatalf("decode sent frame: %v", err)
		}
		if env.Type == msgType {
			out = append(out, env)
		}
	}
	return out
}

// welcomed 返回已收到 welcome 的客户端
func welcomed(t *testing.T, input InputSource) (*Client, *recordingSender) {
	t.Helper()
	c := New(DefaultOptions(), input)
	out := &recordingSender{}
	c.Attach(out)
	c.OnWelcome(game.Welcome{NetworkID: 3, Session: "s", Tick: 10, TickRate: 20, MoveRate: 2})
	return c, out
}

// ownSnapshot 只含本地实体的快照
func ownSnapshot(tk game.Tick, id game.EntityID, owner game.NetworkID, pos [3]float32) game.Snapshot {
	s := game.Snapshot{Tick: tk, Entities: []game.EntityState{{ID: id, Owner: owner, Position: pos}}}
	s.Checksum = s.Sum()
	return s
}
