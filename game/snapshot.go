package game

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
)

// EntityState 快照中单个实体的权威状态
type EntityState struct {
	ID       EntityID   `json:"id"`
	Owner    NetworkID  `json:"owner"`
	Position mgl32.Vec3 `json:"pos"`
}

// Snapshot 服务端在某个 Tick 模拟完成后的权威世界状态
type Snapshot struct {
	Tick     Tick          `json:"tick"`
	Entities []EntityState `json:"entities"`
	Checksum uint64        `json:"checksum"`
}

// TakeSnapshot 按 Arena 顺序采集全部实体并计算校验和
func TakeSnapshot(tick Tick, a *Arena) Snapshot {
	s := Snapshot{Tick: tick, Entities: make([]EntityState, 0, a.Len())}
	a.Each(func(e *Entity) {
		s.Entities = append(s.Entities, EntityState{ID: e.ID, Owner: e.Owner, Position: e.Position})
	})
	s.Checksum = s.Sum()
	return s
}

// Sum 对 Tick 与实体列表的规范二进制编码做 xxh3
func (s Snapshot) Sum() uint64 {
	buf := make([]byte, 0, 4+len(s.Entities)*20)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(s.Tick))
	for _, e := range s.Entities {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.ID))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.Owner))
		for _, f := range e.Position {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return xxh3.Hash(buf)
}

// Verify 校验和是否与内容一致
func (s Snapshot) Verify() bool {
	return s.Checksum == s.Sum()
}

// Find 查找实体状态
func (s Snapshot) Find(id EntityID) (EntityState, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return EntityState{}, false
}
