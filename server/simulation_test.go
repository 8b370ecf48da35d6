package server

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"netcube/game"
)

func TestSimulateHeldInputTrajectory(t *testing.T) {
	w := newTestWorld()
	_, e := joinInGame(t, w, 1)
	w.ReceiveCommands(1, []game.Command{
		{Tick: 10, Horizontal: 1},
		{Tick: 11, Horizontal: 1},
		{Tick: 12, Vertical: 1},
	})

	for tick := game.Tick(10); tick <= 12; tick++ {
		w.tick.Store(uint32(tick))
		w.Simulate()
	}
	s := w.Motion().Step
	want := mgl32.Vec3{s + s, 0, s}
	if e.Position != want {
		t.Fatalf("expected %v after tick 12, got %v", want, e.Position)
	}
}

func TestSimulateWithoutCommandsDoesNotMove(t *testing.T) {
	w := newTestWorld()
	_, e := joinInGame(t, w, 1)
	start := e.Position
	for i := 0; i < 5; i++ {
		w.Step()
	}
	if e.Position != start {
		t.Fatalf("entity without commands moved from %v to %v", start, e.Position)
	}
}

func TestSimulateHoldsLastCommand(t *testing.T) {
	w := newTestWorld()
	_, e := joinInGame(t, w, 1)
	w.ReceiveCommands(1, []game.Command{{Tick: 3, Horizontal: -1}})

	for tick := game.Tick(3); tick <= 5; tick++ {
		w.tick.Store(uint32(tick))
		w.Simulate()
	}
	s := w.Motion().Step
	if want := (mgl32.Vec3{-s - s - s, 0, 0}); e.Position != want {
		t.Fatalf("missing commands must hold the last one: expected %v, got %v", want, e.Position)
	}
}

func TestStepAppliesCommandsFromFrames(t *testing.T) {
	w := newTestWorld()
	id := w.RequestJoin(&recordingPeer{})
	goInGame, _ := game.Encode(game.MsgGoInGame, game.GoInGame{})
	w.OnFrame(id, goInGame)
	w.Step() // tick 1: join + spawn

	batch, _ := game.Encode(game.MsgCommands, game.CommandBatch{Commands: []game.Command{{Tick: 2, Horizontal: 1}}})
	w.OnFrame(id, batch)
	w.OnFrame(id, []byte("garbage"))
	w.Step() // tick 2

	conn, _ := w.Connection(id)
	e, _ := w.Arena().Get(conn.Target)
	if want := (mgl32.Vec3{w.Motion().Step, 0, 0}); e.Position != want {
		t.Fatalf("expected %v, got %v", want, e.Position)
	}
	if got := w.Metrics().CommandsAccepted.Load(); got != 1 {
		t.Fatalf("expected 1 accepted command, got %d", got)
	}
}
