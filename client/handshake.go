package client

import "netcube/game"

// OnWelcome 连接获得 NetworkID：记录身份，用服务端参数构造相同的移动规则并启动预测时钟
func (c *Client) OnWelcome(w game.Welcome) {
	if c.networkID != 0 {
		return
	}
	c.networkID = w.NetworkID
	c.session = w.Session
	c.tickRate = w.TickRate
	c.predictor = Predictor{Motion: game.NewMotion(w.MoveRate, w.TickRate)}
	c.clock.Start(w.Tick)
	c.log.Infof("assigned network id %d (session %s), server tick %d", w.NetworkID, w.Session, w.Tick)
}

// GoInGame 有 NetworkID 且尚未进入游戏时，发送一次进入游戏请求并在本地标记进入游戏。
// 返回是否发送了请求。
func (c *Client) GoInGame() bool {
	if c.networkID == 0 || c.inGame {
		return false
	}
	c.inGame = true
	if c.out != nil {
		frame, err := game.Encode(game.MsgGoInGame, game.GoInGame{})
		if err != nil {
			c.log.Errorf("encode go in game: %v", err)
			return false
		}
		c.out.EnqueueReliable(frame)
	}
	return true
}
