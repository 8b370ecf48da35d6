package server

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"netcube/config"
	"netcube/game"
	"netcube/logging"
)

// Options 世界的运行参数
type Options struct {
	TickRate         int
	MoveRate         float32
	SnapshotInterval int
	BufferCapacity   int
	SimulateDropProb float64
	SpawnPosition    mgl32.Vec3
}

// OptionsFromConfig 从配置文件的 [server] 段构造
func OptionsFromConfig(c config.Server) Options {
	return Options{
		TickRate:         c.TickRate,
		MoveRate:         c.MoveRate,
		SnapshotInterval: c.SnapshotInterval,
		BufferCapacity:   c.BufferCapacity,
		SimulateDropProb: c.SimulateDropProb,
	}
}

// DefaultOptions 与 config.Default() 的 [server] 段一致
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Server)
}

type controlKind int

const (
	ctrlJoin controlKind = iota
	ctrlLeave
	ctrlGoInGame
)

// control 需要可靠送达的事件（接入、断开、进入游戏），保持到达顺序
type control struct {
	kind controlKind
	id   game.NetworkID
	peer Peer
}

// inbound 尽力而为的命令批次
type inbound struct {
	id   game.NetworkID
	cmds []game.Command
}

// World 服务端权威世界：状态只在 Tick 协程中修改，网络协程通过通道投递事件
type World struct {
	ID string

	arena    *game.Arena
	conns    connections
	requests goInGameRequests
	motion   game.Motion
	spawn    game.SpawnTemplate
	tickRate int
	moveRate float32

	tick             atomic.Uint32
	nextID           atomic.Int32
	snapshotInterval atomic.Int64
	dropProb         atomic.Float64

	controlChan chan control
	inputChan   chan inbound

	metrics *WorldMetrics
	log     *zap.SugaredLogger

	tickerStarted bool
	quit          chan struct{}
}

// NewWorld 创建世界，初始化数据结构
func NewWorld(id string, opts Options) *World {
	w := &World{
		ID:       id,
		arena:    game.NewArena(),
		conns:    newConnections(),
		requests: newGoInGameRequests(),
		motion:   game.NewMotion(opts.MoveRate, opts.TickRate),
		spawn: game.SpawnTemplate{
			Position:       opts.SpawnPosition,
			BufferCapacity: opts.BufferCapacity,
		},
		tickRate:    opts.TickRate,
		moveRate:    opts.MoveRate,
		controlChan: make(chan control, 64),
		inputChan:   make(chan inbound, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		metrics:     &WorldMetrics{},
		log:         logging.Named("world." + id),
		quit:        make(chan struct{}),
	}
	w.SetSnapshotInterval(opts.SnapshotInterval)
	w.SetSimulateDropProb(opts.SimulateDropProb)
	return w
}

// Tick 当前 Tick：Step 开始时递增，本 Tick 内接入的连接在 welcome 中收到的就是它
func (w *World) Tick() game.Tick { return game.Tick(w.tick.Load()) }

// Motion 世界使用的移动规则
func (w *World) Motion() game.Motion { return w.motion }

// Metrics 运行指标
func (w *World) Metrics() *WorldMetrics { return w.metrics }

// Arena 实体存储；仅供 Tick 协程与测试使用
func (w *World) Arena() *game.Arena { return w.arena }

// Connection 查找连接；仅供 Tick 协程与测试使用
func (w *World) Connection(id game.NetworkID) (*Connection, bool) { return w.conns.get(id) }

func (w *World) SnapshotInterval() int { return int(w.snapshotInterval.Load()) }

func (w *World) SetSnapshotInterval(n int) {
	if n <= 0 {
		n = 1
	}
	w.snapshotInterval.Store(int64(n))
}

func (w *World) SimulateDropProb() float64 { return w.dropProb.Load() }

func (w *World) SetSimulateDropProb(p float64) {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	w.dropProb.Store(p)
}

// ---- 网络协程调用 ----

// RequestJoin 分配 NetworkID 并请求在 Tick 线程中接入
func (w *World) RequestJoin(peer Peer) game.NetworkID {
	id := game.NetworkID(w.nextID.Inc())
	w.sendControl(control{kind: ctrlJoin, id: id, peer: peer})
	return id
}

// RequestLeave 请求在 Tick 线程中移除连接（阻塞写入，保证一定生效）
func (w *World) RequestLeave(id game.NetworkID) {
	w.sendControl(control{kind: ctrlLeave, id: id})
}

// sendControl 阻塞投递控制事件；世界已停止时放弃
func (w *World) sendControl(c control) {
	select {
	case w.controlChan <- c:
	case <-w.quit:
	}
}

// OnFrame 解析来自连接 id 的一帧并投递到 Tick 线程
func (w *World) OnFrame(id game.NetworkID, frame []byte) {
	env, err := game.Decode(frame)
	if err != nil {
		w.log.Debugf("connection %d: %v", id, err)
		return
	}
	switch env.Type {
	case game.MsgGoInGame:
		w.sendControl(control{kind: ctrlGoInGame, id: id})
	case game.MsgCommands:
		var batch game.CommandBatch
		if err := env.Into(&batch); err != nil {
			w.log.Debugf("connection %d: %v", id, err)
			return
		}
		w.OnCommands(id, batch.Commands)
	default:
		// 未知类型忽略
	}
}

// OnCommands 入站命令（不立即生效），等下一次 Tick 处理
func (w *World) OnCommands(id game.NetworkID, cmds []game.Command) {
	if p := w.dropProb.Load(); p > 0 && rand.Float64() < p {
		w.metrics.DropsSimulated.Inc()
		return
	}
	select {
	case w.inputChan <- inbound{id: id, cmds: cmds}:
	default:
		// 丢弃：为了实时性，避免背压影响世界推进
		w.metrics.ChanFullDiscarded.Inc()
	}
}

// ---- Tick 协程 ----

// Connect 接入一个连接并发送 welcome
func (w *World) Connect(id game.NetworkID, peer Peer) *Connection {
	conn := &Connection{ID: id, Session: uuid.New(), Peer: peer}
	w.conns.add(conn)
	w.metrics.Connections.Store(int64(w.conns.len()))
	w.log.Infof("connection %d joined (session %s)", id, conn.Session)

	if peer != nil {
		frame, err := game.Encode(game.MsgWelcome, game.Welcome{
			NetworkID: id,
			Session:   conn.Session.String(),
			Tick:      w.Tick(),
			TickRate:  w.tickRate,
			MoveRate:  w.moveRate,
		})
		if err != nil {
			w.log.Errorf("encode welcome: %v", err)
			return conn
		}
		peer.EnqueueReliable(frame)
	}
	return conn
}

// Disconnect 移除连接，并级联删除其实体、命令缓冲与未处理请求
func (w *World) Disconnect(id game.NetworkID) bool {
	conn, ok := w.conns.get(id)
	if !ok {
		return false
	}
	w.arena.RemoveOwnedBy(id)
	w.requests.m.Delete(id)
	w.conns.remove(id)
	if conn.Peer != nil {
		conn.Peer.Close()
	}
	w.metrics.Connections.Store(int64(w.conns.len()))
	w.log.Infof("connection %d left", id)
	return true
}

// ReceiveCommands 把命令写入连接命令目标的缓冲。
// Tick 超出当前 Tick 一个缓冲容量以上的命令被丢弃。
func (w *World) ReceiveCommands(id game.NetworkID, cmds []game.Command) {
	conn, ok := w.conns.get(id)
	if !ok || !conn.InGame || conn.Target == 0 {
		w.metrics.CommandsDropped.Add(int64(len(cmds)))
		return
	}
	e, ok := w.arena.Get(conn.Target)
	if !ok {
		w.metrics.CommandsDropped.Add(int64(len(cmds)))
		return
	}
	now := w.Tick()
	horizon := uint64(now) + uint64(e.Commands.Cap())
	for _, cmd := range cmds {
		if !cmd.Valid() || uint64(cmd.Tick) > horizon {
			w.metrics.CommandsDropped.Inc()
			continue
		}
		if cmd.Tick <= now {
			w.metrics.CommandsLate.Inc()
		}
		if e.Commands.Add(cmd) {
			w.metrics.CommandsAccepted.Inc()
		}
	}
}

// ProcessInbound 非阻塞地取出本 Tick 之前到达的全部事件：先控制事件，再命令
func (w *World) ProcessInbound() {
	for {
		select {
		case c := <-w.controlChan:
			switch c.kind {
			case ctrlJoin:
				w.Connect(c.id, c.peer)
			case ctrlLeave:
				w.Disconnect(c.id)
			case ctrlGoInGame:
				w.ReceiveGoInGame(c.id)
			}
			continue
		default:
		}
		select {
		case in := <-w.inputChan:
			w.ReceiveCommands(in.id, in.cmds)
		default:
			return
		}
	}
}

// Snapshot 当前 Tick 的权威状态
func (w *World) Snapshot() game.Snapshot {
	return game.TakeSnapshot(w.Tick(), w.arena)
}

// BroadcastSnapshot 每 snapshotInterval 个 Tick 向全部已进入游戏的连接广播一次
func (w *World) BroadcastSnapshot() {
	if uint64(w.Tick())%uint64(w.SnapshotInterval()) != 0 {
		return
	}
	frame, err := game.Encode(game.MsgSnapshot, w.Snapshot())
	if err != nil {
		w.log.Errorf("encode snapshot: %v", err)
		return
	}
	w.conns.each(func(conn *Connection) {
		if !conn.InGame || conn.Peer == nil {
			return
		}
		if conn.Peer.Enqueue(frame) {
			w.metrics.SnapshotsSent.Inc()
		}
	})
}
