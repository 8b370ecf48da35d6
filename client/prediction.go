package client

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"netcube/game"
)

// mispredictEpsilon 超过该误差视为预测失败
const mispredictEpsilon = 1e-4

// PredictedState 单个实体的预测状态：最近一次权威确认 + 已预测到的 Tick
type PredictedState struct {
	ConfirmedTick game.Tick
	Confirmed     mgl32.Vec3
	PredictedTick game.Tick

	based bool
}

// ShouldPredict 预测 Tick 晚于服务端已确认的 Tick 时才需要预测
func ShouldPredict(tick game.Tick, st *PredictedState) bool {
	return tick > st.ConfirmedTick
}

// Rebase 以更新的权威快照作为新的基线，位置回到确认值。
// 不比当前基线新的快照被忽略。
func (st *PredictedState) Rebase(e *game.Entity, tick game.Tick, pos mgl32.Vec3) bool {
	if st.based && tick <= st.ConfirmedTick {
		return false
	}
	st.based = true
	st.ConfirmedTick = tick
	st.Confirmed = pos
	st.PredictedTick = tick
	e.Position = pos
	return true
}

// Predictor 使用与服务端相同的 Motion 在本地推进实体
type Predictor struct {
	Motion game.Motion
}

// Predict 预测单个 Tick：已确认则跳过；否则取本地命令缓冲中该 Tick 的命令并移动
func (p Predictor) Predict(e *game.Entity, st *PredictedState, tick game.Tick) bool {
	if !ShouldPredict(tick, st) {
		return false
	}
	if cmd, ok := e.Commands.At(tick); ok {
		e.Position = p.Motion.Apply(e.Position, cmd)
	}
	st.PredictedTick = tick
	return true
}

// Reconcile 按递增顺序重放 (PredictedTick, predictingTick] 区间内的每个 Tick，返回重放数。
// onTick 非 nil 时在每个重放的 Tick 之后以该 Tick 的位置调用。
func (p Predictor) Reconcile(e *game.Entity, st *PredictedState, predictingTick game.Tick, onTick func(game.Tick, mgl32.Vec3)) int {
	n := 0
	for t := st.PredictedTick + 1; t <= predictingTick; t++ {
		if !p.Predict(e, st, t) {
			continue
		}
		n++
		if onTick != nil {
			onTick(t, e.Position)
		}
	}
	return n
}

// positionHistory 记录本地实体每个预测 Tick 的位置，用于衡量预测误差
type positionHistory struct {
	ticks []game.Tick
	pos   []mgl32.Vec3
}

func newPositionHistory(capacity int) *positionHistory {
	if capacity <= 0 {
		capacity = game.DefaultBufferCapacity
	}
	return &positionHistory{ticks: make([]game.Tick, capacity), pos: make([]mgl32.Vec3, capacity)}
}

func (h *positionHistory) record(tick game.Tick, pos mgl32.Vec3) {
	i := int(tick) % len(h.ticks)
	h.ticks[i] = tick
	h.pos[i] = pos
}

func (h *positionHistory) at(tick game.Tick) (mgl32.Vec3, bool) {
	i := int(tick) % len(h.ticks)
	if h.ticks[i] != tick || tick == 0 {
		return mgl32.Vec3{}, false
	}
	return h.pos[i], true
}

func (h *positionHistory) reset() {
	for i := range h.ticks {
		h.ticks[i] = 0
	}
}

// predictionError 各分量差的最大绝对值
func predictionError(predicted, authoritative mgl32.Vec3) float32 {
	var worst float32
	for i := range predicted {
		worst = math32.Max(worst, math32.Abs(predicted[i]-authoritative[i]))
	}
	return worst
}
