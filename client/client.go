package client

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"netcube/config"
	"netcube/game"
	"netcube/logging"
)

// Sender 向服务端发送帧，transport.Conn 实现了它
type Sender interface {
	Enqueue(b []byte) bool
	EnqueueReliable(b []byte) bool
}

// Options 客户端运行参数
type Options struct {
	LeadTicks      int
	MaxDrift       int
	Redundancy     int
	BufferCapacity int
}

// OptionsFromConfig 从配置文件的 [client] 段构造
func OptionsFromConfig(c config.Client) Options {
	return Options{
		LeadTicks:      c.LeadTicks,
		MaxDrift:       c.MaxDrift,
		Redundancy:     c.Redundancy,
		BufferCapacity: c.BufferCapacity,
	}
}

// DefaultOptions 与 config.Default() 的 [client] 段一致
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Client)
}

// Client 客户端状态：连接身份、镜像实体、预测与本地命令缓冲。
// 全部状态只在 Tick 协程中读写；网络读协程通过 inbox 投递帧。
type Client struct {
	networkID game.NetworkID
	session   string
	tickRate  int
	inGame    bool
	target    game.EntityID // 命令目标，0 表示尚未找到本地实体

	arena     *game.Arena
	states    map[game.EntityID]*PredictedState
	predictor Predictor
	history   *positionHistory
	clock     *Clock

	input      InputSource
	out        Sender
	inbox      chan []byte
	redundancy int
	bufferCap  int

	mispredictions int
	log            *zap.SugaredLogger
}

// New 创建客户端；out 可以稍后通过 Attach 设置
func New(opts Options, input InputSource) *Client {
	if opts.Redundancy <= 0 {
		opts.Redundancy = 1
	}
	return &Client{
		arena:      game.NewArena(),
		states:     make(map[game.EntityID]*PredictedState),
		history:    newPositionHistory(opts.BufferCapacity),
		clock:      NewClock(opts.LeadTicks, opts.MaxDrift),
		input:      input,
		inbox:      make(chan []byte, 256),
		redundancy: opts.Redundancy,
		bufferCap:  opts.BufferCapacity,
		log:        logging.Named("client"),
	}
}

// Attach 设置发送端
func (c *Client) Attach(out Sender) { c.out = out }

// NetworkID 服务端分配的标识，0 表示尚未收到 welcome
func (c *Client) NetworkID() game.NetworkID { return c.networkID }

// InGame 本地是否已进入游戏
func (c *Client) InGame() bool { return c.inGame }

// Target 命令目标实体
func (c *Client) Target() game.EntityID { return c.target }

// Clock 预测时钟
func (c *Client) Clock() *Clock { return c.clock }

// Arena 镜像实体存储
func (c *Client) Arena() *game.Arena { return c.arena }

// Mispredictions 预测与权威结果不一致的次数
func (c *Client) Mispredictions() int { return c.mispredictions }

// TickRate welcome 中的服务端 Tick 频率
func (c *Client) TickRate() int { return c.tickRate }

// Push 由网络读协程调用，把一帧投递给 Tick 协程（满则丢弃）
func (c *Client) Push(frame []byte) bool {
	select {
	case c.inbox <- frame:
		return true
	default:
		return false
	}
}

// ProcessInbound 非阻塞地处理全部已到达的帧
func (c *Client) ProcessInbound() {
	for {
		select {
		case frame := <-c.inbox:
			c.HandleFrame(frame)
		default:
			return
		}
	}
}

// HandleFrame 解析并应用一帧
func (c *Client) HandleFrame(frame []byte) {
	env, err := game.Decode(frame)
	if err != nil {
		c.log.Debugf("drop frame: %v", err)
		return
	}
	switch env.Type {
	case game.MsgWelcome:
		var w game.Welcome
		if err := env.Into(&w); err != nil {
			c.log.Debugf("drop frame: %v", err)
			return
		}
		c.OnWelcome(w)
	case game.MsgSnapshot:
		var s game.Snapshot
		if err := env.Into(&s); err != nil {
			c.log.Debugf("drop frame: %v", err)
			return
		}
		c.ApplySnapshot(s)
	default:
		// 未知类型忽略
	}
}

// Step 执行一个客户端 Tick：处理入站 → 推进预测时钟 → 进入游戏 → 采集输入 → 预测
func (c *Client) Step() {
	c.ProcessInbound()
	if !c.clock.Started() {
		return
	}
	c.clock.Advance()
	c.GoInGame()
	c.CaptureInput()
	c.PredictAll()
}

// ApplySnapshot 应用权威快照：校验、校正时钟、同步镜像实体并重设预测基线。
// 校验失败或过期的快照返回 false。
func (c *Client) ApplySnapshot(s game.Snapshot) bool {
	if !s.Verify() {
		c.log.Warnf("snapshot %d checksum mismatch, dropped", s.Tick)
		return false
	}
	if !c.clock.Observe(s.Tick) {
		return false
	}

	present := make(map[game.EntityID]struct{}, len(s.Entities))
	for _, es := range s.Entities {
		present[es.ID] = struct{}{}
		e, ok := c.arena.Get(es.ID)
		if !ok {
			e = &game.Entity{ID: es.ID, Owner: es.Owner, Commands: game.NewCommandBuffer(c.bufferCap)}
			c.arena.Insert(e)
		}
		st, ok := c.states[es.ID]
		if !ok {
			st = &PredictedState{}
			c.states[es.ID] = st
		}
		if es.ID == c.target {
			c.checkPrediction(s.Tick, es.Position)
		}
		st.Rebase(e, s.Tick, es.Position)
	}

	for _, id := range c.arena.IDs() {
		if _, ok := present[id]; ok {
			continue
		}
		c.arena.Remove(id)
		delete(c.states, id)
		if id == c.target {
			c.log.Infof("command target %d removed by server", id)
			c.target = 0
			c.history.reset()
		}
	}
	return true
}

func (c *Client) checkPrediction(tick game.Tick, authoritative mgl32.Vec3) {
	predicted, ok := c.history.at(tick)
	if !ok {
		return
	}
	if err := predictionError(predicted, authoritative); err > mispredictEpsilon {
		c.mispredictions++
		c.log.Debugf("misprediction at tick %d: predicted %v, server %v (error %.5f)",
			tick, predicted, authoritative, err)
	}
}

// PredictAll 对每个镜像实体重放到当前预测 Tick，命令目标的每个重放 Tick 都记入历史。
// 没有本地命令的实体（其他玩家）保持在确认位置。
func (c *Client) PredictAll() {
	tick := c.clock.PredictingTick()
	c.arena.Each(func(e *game.Entity) {
		st, ok := c.states[e.ID]
		if !ok {
			return
		}
		if e.ID != c.target {
			c.predictor.Reconcile(e, st, tick, nil)
			return
		}
		// 重放会改写历史 Tick 的预测结果，逐 Tick 记录
		c.predictor.Reconcile(e, st, tick, c.history.record)
	})
}

// Status 状态行，用于终端显示与日志
func (c *Client) Status() string {
	if c.networkID == 0 {
		return "connecting..."
	}
	if c.target == 0 {
		return fmt.Sprintf("id=%d tick=%d waiting for avatar", c.networkID, c.clock.PredictingTick())
	}
	e, ok := c.arena.Get(c.target)
	if !ok {
		return fmt.Sprintf("id=%d tick=%d", c.networkID, c.clock.PredictingTick())
	}
	return fmt.Sprintf("id=%d tick=%d server=%d pos=(%.2f, %.2f, %.2f) entities=%d mispredictions=%d",
		c.networkID, c.clock.PredictingTick(), c.clock.LastServerTick(),
		e.Position.X(), e.Position.Y(), e.Position.Z(), c.arena.Len(), c.mispredictions)
}
