package client

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"netcube/game"
)

func TestCaptureInputBindsTargetFirst(t *testing.T) {
	c, out := welcomed(t, InputFunc(func() game.Keys { return game.Keys{Right: true} }))
	c.GoInGame()

	if c.CaptureInput() {
		t.Fatalf("no command may be produced before the avatar is known")
	}
	c.ApplySnapshot(ownSnapshot(11, 8, 3, [3]float32{}))
	if c.CaptureInput() {
		t.Fatalf("the tick that binds the target produces no command")
	}
	if c.Target() != 8 {
		t.Fatalf("expected target 8, got %d", c.Target())
	}

	if !c.CaptureInput() {
		t.Fatalf("expected a command once the target is bound")
	}
	e, _ := c.Arena().Get(8)
	cmd, ok := e.Commands.Exact(c.Clock().PredictingTick())
	if !ok || cmd.Horizontal != 1 || cmd.Vertical != 0 {
		t.Fatalf("expected (1,0) at predicting tick, got %+v ok=%v", cmd, ok)
	}
	if n := len(out.ofType(t, game.MsgCommands)); n != 1 {
		t.Fatalf("expected 1 commands frame, got %d", n)
	}
}

func TestCaptureInputIgnoresOtherOwners(t *testing.T) {
	c, _ := welcomed(t, nil)
	c.GoInGame()
	c.ApplySnapshot(ownSnapshot(11, 8, 99, [3]float32{}))
	c.CaptureInput()
	if c.Target() != 0 {
		t.Fatalf("must not bind an entity owned by another connection")
	}
}

func TestCaptureInputOpposingKeysCancel(t *testing.T) {
	c, _ := welcomed(t, InputFunc(func() game.Keys {
		return game.Keys{Left: true, Right: true, Up: true}
	}))
	c.GoInGame()
	c.ApplySnapshot(ownSnapshot(11, 8, 3, [3]float32{}))
	c.CaptureInput()
	c.CaptureInput()

	e, _ := c.Arena().Get(8)
	cmd, _ := e.Commands.Exact(c.Clock().PredictingTick())
	if cmd.Horizontal != 0 || cmd.Vertical != 1 {
		t.Fatalf("left+right must cancel to 0, got %+v", cmd)
	}
}

func TestCaptureInputSendsRedundantBatch(t *testing.T) {
	c, out := welcomed(t, nil)
	c.GoInGame()
	c.ApplySnapshot(ownSnapshot(11, 8, 3, [3]float32{}))
	c.CaptureInput()
	for i := 0; i < 6; i++ {
		c.clock.Advance()
		c.CaptureInput()
	}

	frames := out.ofType(t, game.MsgCommands)
	var last game.CommandBatch
	if err := frames[len(frames)-1].Into(&last); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(last.Commands) != DefaultOptions().Redundancy {
		t.Fatalf("expected %d commands per batch, got %d", DefaultOptions().Redundancy, len(last.Commands))
	}
	if last.Commands[len(last.Commands)-1].Tick != c.Clock().PredictingTick() {
		t.Fatalf("newest command must be last, got %+v", last.Commands)
	}
}

func TestCaptureInputNotInGame(t *testing.T) {
	c, out := welcomed(t, nil)
	if c.CaptureInput() {
		t.Fatalf("must not capture before going in game")
	}
	if len(out.frames) != 0 {
		t.Fatalf("nothing may be sent")
	}
}

func TestPatternInputCycles(t *testing.T) {
	p := &PatternInput{Pattern: []game.Keys{{Left: true}, {Up: true}}, Hold: 2}
	want := []game.Keys{{Left: true}, {Left: true}, {Up: true}, {Up: true}, {Left: true}}
	for i, w := range want {
		if got := p.Sample(); got != w {
			t.Fatalf("sample %d: expected %+v, got %+v", i, w, got)
		}
	}
	if (&PatternInput{}).Sample() != (game.Keys{}) {
		t.Fatalf("empty pattern must yield no keys")
	}
}

func TestTerminalKeyHoldWindow(t *testing.T) {
	now := time.Unix(100, 0)
	term := &Terminal{now: func() time.Time { return now }}

	if term.Sample() != (game.Keys{}) {
		t.Fatalf("no key pressed yet")
	}
	term.press(dirLeft)
	term.press(dirRight)
	if got := term.Sample(); !got.Left || !got.Right || got.Up {
		t.Fatalf("expected left and right held, got %+v", got)
	}
	if cmd := term.Sample().Fold(1); cmd.Horizontal != 0 {
		t.Fatalf("held left+right must fold to 0, got %+v", cmd)
	}
	now = now.Add(keyHold)
	if got := term.Sample(); got.Left || got.Right {
		t.Fatalf("keys must release after the hold window, got %+v", got)
	}
}

func TestCaptureAfterClockPullBackSendsFreshCommands(t *testing.T) {
	keys := game.Keys{Right: true}
	c, out := welcomed(t, InputFunc(func() game.Keys { return keys }))
	c.GoInGame()
	c.ApplySnapshot(ownSnapshot(11, 8, 3, [3]float32{}))
	c.CaptureInput() // 绑定目标
	for c.Clock().PredictingTick() < 40 {
		c.clock.Advance()
		c.CaptureInput()
	}

	// 快照 12 远落后于预测 Tick 40，时钟回拉到 14
	if !c.ApplySnapshot(ownSnapshot(12, 8, 3, [3]float32{})) {
		t.Fatalf("snapshot 12 must be accepted")
	}
	if got := c.Clock().PredictingTick(); got != 14 {
		t.Fatalf("expected pull-back to 14, got %d", got)
	}

	keys = game.Keys{Up: true}
	for c.Clock().PredictingTick() < 18 {
		c.Step()
	}

	frames := out.ofType(t, game.MsgCommands)
	var last game.CommandBatch
	if err := frames[len(frames)-1].Into(&last); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if len(last.Commands) != DefaultOptions().Redundancy {
		t.Fatalf("expected a full batch, got %+v", last.Commands)
	}
	for i, cmd := range last.Commands {
		want := game.Tick(15 + i)
		if cmd.Tick != want || cmd.Vertical != 1 || cmd.Horizontal != 0 {
			t.Fatalf("batch[%d]: expected fresh command for tick %d, got %+v", i, want, cmd)
		}
	}

	// 服务端按收到的顺序写入同样容量的缓冲后，回拉之后的每个 Tick 与本地取到相同的命令
	server := game.NewCommandBuffer(DefaultOptions().BufferCapacity)
	for _, env := range frames {
		var b game.CommandBatch
		if err := env.Into(&b); err != nil {
			t.Fatalf("decode batch: %v", err)
		}
		for _, cmd := range b.Commands {
			server.Add(cmd)
		}
	}
	own, _ := c.Arena().Get(8)
	for tk := game.Tick(13); tk <= 18; tk++ {
		local, _ := own.Commands.At(tk)
		remote, _ := server.At(tk)
		if local != remote {
			t.Fatalf("tick %d: client uses %+v, server would use %+v", tk, local, remote)
		}
	}

	// 自确认 Tick 12 起重放：13、14 沿用回拉前的右移，15..18 为新的上移
	m := game.NewMotion(2, 20)
	want := mgl32.Vec3{}
	for _, cmd := range []game.Command{{Horizontal: 1}, {Horizontal: 1}, {Vertical: 1}, {Vertical: 1}, {Vertical: 1}, {Vertical: 1}} {
		want = m.Apply(want, cmd)
	}
	if own.Position != want {
		t.Fatalf("replay after pull-back: expected %v, got %v", want, own.Position)
	}
}
