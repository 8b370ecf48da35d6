package game

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityID 实体在 Arena 中的稳定标识，不复用，0 表示空
type EntityID uint32

// Entity 玩家控制的方块：位置、所属连接以及命令缓冲
type Entity struct {
	ID       EntityID
	Owner    NetworkID
	Position mgl32.Vec3
	Commands *CommandBuffer
}

// SpawnTemplate 生成新实体所用的模板
type SpawnTemplate struct {
	Position       mgl32.Vec3
	BufferCapacity int
}

// Arena 以 EntityID 为键的实体存储；遍历顺序即插入顺序，两端迭代结果确定
type Arena struct {
	entities *orderedmap.OrderedMap[EntityID, *Entity]
	nextID   EntityID
}

func NewArena() *Arena {
	return &Arena{entities: orderedmap.NewOrderedMap[EntityID, *Entity]()}
}

// Spawn 按模板创建由 owner 拥有的实体
func (a *Arena) Spawn(tpl SpawnTemplate, owner NetworkID) *Entity {
	a.nextID++
	e := &Entity{
		ID:       a.nextID,
		Owner:    owner,
		Position: tpl.Position,
		Commands: NewCommandBuffer(tpl.BufferCapacity),
	}
	a.entities.Set(e.ID, e)
	return e
}

// Insert 以既定 ID 放入实体（客户端镜像服务端实体时使用）
func (a *Arena) Insert(e *Entity) {
	if e.Commands == nil {
		e.Commands = NewCommandBuffer(0)
	}
	if e.ID > a.nextID {
		a.nextID = e.ID
	}
	a.entities.Set(e.ID, e)
}

func (a *Arena) Get(id EntityID) (*Entity, bool) {
	return a.entities.Get(id)
}

// Remove 删除实体，连同其命令缓冲
func (a *Arena) Remove(id EntityID) bool {
	return a.entities.Delete(id)
}

// RemoveOwnedBy 删除 owner 拥有的全部实体，返回删除数量
func (a *Arena) RemoveOwnedBy(owner NetworkID) int {
	var ids []EntityID
	for el := a.entities.Front(); el != nil; el = el.Next() {
		if el.Value.Owner == owner {
			ids = append(ids, el.Key)
		}
	}
	for _, id := range ids {
		a.entities.Delete(id)
	}
	return len(ids)
}

// OwnedBy 查找 owner 拥有的第一个实体
func (a *Arena) OwnedBy(owner NetworkID) (*Entity, bool) {
	for el := a.entities.Front(); el != nil; el = el.Next() {
		if el.Value.Owner == owner {
			return el.Value, true
		}
	}
	return nil, false
}

// Each 按插入顺序遍历。遍历中不要增删实体，结构性修改请走 Batch。
func (a *Arena) Each(fn func(e *Entity)) {
	for el := a.entities.Front(); el != nil; el = el.Next() {
		fn(el.Value)
	}
}

// IDs 当前全部实体 ID（插入顺序）
func (a *Arena) IDs() []EntityID {
	return a.entities.Keys()
}

func (a *Arena) Len() int { return a.entities.Len() }

// Batch 在读遍历期间收集结构性修改，遍历结束后由 Commit 一次性应用
type Batch struct {
	ops []func(a *Arena)
}

// Spawn 延迟创建实体；then 在创建后调用，可为 nil
func (b *Batch) Spawn(tpl SpawnTemplate, owner NetworkID, then func(e *Entity)) {
	b.ops = append(b.ops, func(a *Arena) {
		e := a.Spawn(tpl, owner)
		if then != nil {
			then(e)
		}
	})
}

// Remove 延迟删除实体
func (b *Batch) Remove(id EntityID) {
	b.ops = append(b.ops, func(a *Arena) { a.Remove(id) })
}

// Do 延迟执行任意修改
func (b *Batch) Do(fn func(a *Arena)) {
	b.ops = append(b.ops, fn)
}

func (b *Batch) Len() int { return len(b.ops) }

// Commit 按记录顺序应用全部修改并清空，返回应用的数量
func (b *Batch) Commit(a *Arena) int {
	n := len(b.ops)
	for _, op := range b.ops {
		op(a)
	}
	b.ops = b.ops[:0]
	return n
}
