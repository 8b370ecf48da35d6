package game

import "github.com/go-gl/mathgl/mgl32"

// Motion 服务端权威模拟与客户端预测共用的移动规则。
// 两端必须使用同一个 Motion（相同 tick_rate 与 move_rate），轨迹才能逐位一致。
type Motion struct {
	Step float32 // 每 Tick 每个轴的位移 = move_rate × (1 / tick_rate)
}

// NewMotion 根据每秒移动速度与 Tick 频率计算单步位移
func NewMotion(moveRate float32, tickRate int) Motion {
	dt := float32(1) / float32(tickRate)
	return Motion{Step: float32(moveRate * dt)}
}

// Apply 将一条命令作用于位置：水平轴映射到 X，竖直轴映射到 Z
func (m Motion) Apply(pos mgl32.Vec3, cmd Command) mgl32.Vec3 {
	switch {
	case cmd.Horizontal > 0:
		pos[0] += m.Step
	case cmd.Horizontal < 0:
		pos[0] -= m.Step
	}
	switch {
	case cmd.Vertical > 0:
		pos[2] += m.Step
	case cmd.Vertical < 0:
		pos[2] -= m.Step
	}
	return pos
}
