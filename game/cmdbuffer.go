package game

// DefaultBufferCapacity 每个实体默认保留的命令数
const DefaultBufferCapacity = 64

type commandSlot struct {
	cmd  Command
	used bool
}

// CommandBuffer 按 Tick 存储命令的定长环形缓冲，槽位 = tick % 容量。
// 写入方只有一个（本端输入采集或网络入站），读取在同一 Tick 线程内完成，无需加锁。
type CommandBuffer struct {
	slots  []commandSlot
	count  int
	newest Tick
}

// NewCommandBuffer 创建容量为 capacity 的缓冲，capacity <= 0 时使用默认容量
func NewCommandBuffer(capacity int) *CommandBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &CommandBuffer{slots: make([]commandSlot, capacity)}
}

// Add 记录一条命令；同一 Tick 的旧命令被替换，环满时覆盖同槽位的最旧命令。
// 过旧（会覆盖更新命令）的命令被拒绝，返回 false。
func (b *CommandBuffer) Add(cmd Command) bool {
	capacity := uint64(len(b.slots))
	if b.count > 0 && uint64(cmd.Tick)+capacity <= uint64(b.newest) {
		return false
	}
	s := &b.slots[uint64(cmd.Tick)%capacity]
	if !s.used {
		b.count++
	}
	s.cmd = cmd
	s.used = true
	if b.count == 1 || cmd.Tick > b.newest {
		b.newest = cmd.Tick
	}
	return true
}

// At 查询 tick 对应的命令：
//   - 返回 Tick <= tick 的最新命令（中间缺失时保持上一条）；
//   - 所有命令都比 tick 新时，返回仍在缓冲中的最旧命令；
//   - 仅当缓冲为空时 ok 为 false。
func (b *CommandBuffer) At(tick Tick) (cmd Command, ok bool) {
	var best, oldest Command
	var haveBest, haveOldest bool
	for _, s := range b.slots {
		if !s.used {
			continue
		}
		if !haveOldest || s.cmd.Tick < oldest.Tick {
			oldest, haveOldest = s.cmd, true
		}
		if s.cmd.Tick <= tick && (!haveBest || s.cmd.Tick > best.Tick) {
			best, haveBest = s.cmd, true
		}
	}
	switch {
	case haveBest:
		return best, true
	case haveOldest:
		return oldest, true
	default:
		return Command{}, false
	}
}

// Exact 仅在 tick 的命令确实存在时返回
func (b *CommandBuffer) Exact(tick Tick) (Command, bool) {
	if b.count == 0 {
		return Command{}, false
	}
	s := b.slots[uint64(tick)%uint64(len(b.slots))]
	if !s.used || s.cmd.Tick != tick {
		return Command{}, false
	}
	return s.cmd, true
}

// Window 按 Tick 升序返回 [from, to] 内确实存在的命令
func (b *CommandBuffer) Window(from, to Tick) []Command {
	var out []Command
	if b.count == 0 || from > to {
		return out
	}
	if span := uint64(to-from) + 1; span > uint64(len(b.slots)) {
		from = to - Tick(len(b.slots)) + 1
	}
	for t := from; ; t++ {
		if cmd, ok := b.Exact(t); ok {
			out = append(out, cmd)
		}
		if t == to {
			break
		}
	}
	return out
}

// Newest 最新命令的 Tick
func (b *CommandBuffer) Newest() (Tick, bool) {
	return b.newest, b.count > 0
}

// Len 当前保留的命令数
func (b *CommandBuffer) Len() int { return b.count }

// Cap 缓冲容量
func (b *CommandBuffer) Cap() int { return len(b.slots) }

// Reset 清空缓冲
func (b *CommandBuffer) Reset() {
	for i := range b.slots {
		b.slots[i] = commandSlot{}
	}
	b.count = 0
	b.newest = 0
}
