package client

import "netcube/game"

// Clock 客户端预测时钟：预测 Tick 领先最近一次服务端快照 lead 个 Tick。
// 客户端与服务端只在 Tick 编号上对齐，不要求真实时间一致。
type Clock struct {
	lead     game.Tick
	maxDrift game.Tick

	started    bool
	predicting game.Tick
	lastServer game.Tick
}

func NewClock(lead, maxDrift int) *Clock {
	return &Clock{lead: game.Tick(lead), maxDrift: game.Tick(maxDrift)}
}

// Start 以 welcome 中的服务端 Tick 初始化
func (c *Clock) Start(serverTick game.Tick) {
	c.started = true
	c.lastServer = serverTick
	c.predicting = serverTick + c.lead
}

func (c *Clock) Started() bool { return c.started }

// Advance 本地推进一个 Tick，返回新的预测 Tick
func (c *Clock) Advance() game.Tick {
	c.predicting++
	return c.predicting
}

// Observe 根据快照 Tick 校正预测 Tick。重复或乱序的快照返回 false。
//   - 预测落后于服务端：跳到 serverTick+lead；
//   - 领先过多（> lead+maxDrift）：回拉到 serverTick+lead。
func (c *Clock) Observe(serverTick game.Tick) bool {
	if !c.started {
		c.Start(serverTick)
		return true
	}
	if serverTick <= c.lastServer {
		return false
	}
	c.lastServer = serverTick
	target := serverTick + c.lead
	switch {
	case c.predicting <= serverTick:
		c.predicting = target
	case c.predicting > target+c.maxDrift:
		c.predicting = target
	}
	return true
}

// PredictingTick 当前预测 Tick
func (c *Clock) PredictingTick() game.Tick { return c.predicting }

// LastServerTick 最近一次接受的快照 Tick
func (c *Clock) LastServerTick() game.Tick { return c.lastServer }
