package game

// Tick 离散模拟步，命令与快照的时间单位
type Tick uint32

// NetworkID 服务端分配的连接标识，从 1 开始，连接生命周期内不变
type NetworkID int32

// Command 某一 Tick 的输入意图。两个轴的取值均为 {-1,0,1}
type Command struct {
	Tick       Tick `json:"tick"`
	Horizontal int8 `json:"h"`
	Vertical   int8 `json:"v"`
}

// Keys 一次采样得到的四个方向键状态
type Keys struct {
	Left, Right, Down, Up bool
}

// Fold 将方向键折叠为轴：相反方向同时按下时抵消为 0
func (k Keys) Fold(tick Tick) Command {
	cmd := Command{Tick: tick}
	if k.Left {
		cmd.Horizontal--
	}
	if k.Right {
		cmd.Horizontal++
	}
	if k.Down {
		cmd.Vertical--
	}
	if k.Up {
		cmd.Vertical++
	}
	return cmd
}

// Valid 检查轴是否在合法范围内（网络入站数据需要校验）
func (c Command) Valid() bool {
	return c.Horizontal >= -1 && c.Horizontal <= 1 && c.Vertical >= -1 && c.Vertical <= 1
}

// Idle 是否无任何移动意图
func (c Command) Idle() bool {
	return c.Horizontal == 0 && c.Vertical == 0
}
