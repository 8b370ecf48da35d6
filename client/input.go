package client

import "netcube/game"

// InputSource 本地方向键来源，每个客户端 Tick 采样一次
type InputSource interface {
	Sample() game.Keys
}

// InputFunc 函数适配器
type InputFunc func() game.Keys

func (f InputFunc) Sample() game.Keys { return f() }

// PatternInput 按固定序列循环输出按键，每个按键状态保持 Hold 个 Tick（机器人/测试用）
type PatternInput struct {
	Pattern []game.Keys
	Hold    int

	n int
}

func (p *PatternInput) Sample() game.Keys {
	if len(p.Pattern) == 0 {
		return game.Keys{}
	}
	hold := p.Hold
	if hold <= 0 {
		hold = 1
	}
	k := p.Pattern[(p.n/hold)%len(p.Pattern)]
	p.n++
	return k
}

// BotPattern 绕正方形行走
func BotPattern() *PatternInput {
	return &PatternInput{
		Pattern: []game.Keys{{Right: true}, {Up: true}, {Left: true}, {Down: true}},
		Hold:    30,
	}
}

// CaptureInput 采集本 Tick 的输入，写入本地命令缓冲，并发送截至当前预测 Tick 的最近 redundancy 条命令。
// 时钟回拉后缓冲中可能残留更高 Tick 的旧命令，它们不随本批发送。
// 尚无命令目标时，改为在本地查找属于自己的实体并绑定（本 Tick 不产生命令）。
func (c *Client) CaptureInput() bool {
	if !c.inGame || c.networkID == 0 {
		return false
	}
	if c.target == 0 {
		if e, ok := c.arena.OwnedBy(c.networkID); ok {
			c.target = e.ID
			c.log.Infof("command target bound to entity %d", e.ID)
		}
		return false
	}
	e, ok := c.arena.Get(c.target)
	if !ok {
		c.target = 0
		return false
	}

	var keys game.Keys
	if c.input != nil {
		keys = c.input.Sample()
	}
	now := c.clock.PredictingTick()
	e.Commands.Add(keys.Fold(now))

	if c.out != nil {
		from := game.Tick(0)
		if span := game.Tick(c.redundancy - 1); now > span {
			from = now - span
		}
		frame, err := game.Encode(game.MsgCommands, game.CommandBatch{Commands: e.Commands.Window(from, now)})
		if err != nil {
			c.log.Errorf("encode commands: %v", err)
			return true
		}
		c.out.Enqueue(frame)
	}
	return true
}
