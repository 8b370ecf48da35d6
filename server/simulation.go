package server

import "netcube/game"

// Simulate 推进一次权威模拟：每个实体取当前 Tick 的命令（按缓冲的回退规则）并移动。
// 命令缓冲为空的实体本 Tick 不动。这是权威位置的唯一写入方。
func (w *World) Simulate() {
	tick := w.Tick()
	w.arena.Each(func(e *game.Entity) {
		cmd, ok := e.Commands.At(tick)
		if !ok {
			return
		}
		e.Position = w.motion.Apply(e.Position, cmd)
	})
}

// Step 执行一个完整 Tick：推进时钟 → 处理入站事件 → 进入游戏握手 → 权威模拟 → 广播快照
func (w *World) Step() {
	w.tick.Inc()
	w.ProcessInbound()
	w.ProcessGoInGame()
	w.Simulate()
	w.BroadcastSnapshot()
}
