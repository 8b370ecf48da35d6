package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"netcube/game"
)

func TestWebSocketHandshakeEndToEnd(t *testing.T) {
	opts := DefaultOptions()
	opts.TickRate = 50
	wm := NewWorldManager(opts)
	defer wm.StopAll()

	mux := http.NewServeMux()
	wm.Routes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=e2e"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() game.Envelope {
		t.Helper()
		_, frame, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		env, err := game.Decode(frame)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		return env
	}

	env := read()
	if env.Type != game.MsgWelcome {
		t.Fatalf("first frame must be welcome, got %q", env.Type)
	}
	var welcome game.Welcome
	if err := env.Into(&welcome); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if welcome.NetworkID == 0 || welcome.TickRate != 50 {
		t.Fatalf("unexpected welcome %+v", welcome)
	}

	req, _ := game.Encode(game.MsgGoInGame, game.GoInGame{})
	if err := ws.WriteMessage(websocket.TextMessage, req); err != nil {
		t.Fatalf("write: %v", err)
	}

	for {
		env := read()
		if env.Type != game.MsgSnapshot {
			continue
		}
		var s game.Snapshot
		if err := env.Into(&s); err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if !s.Verify() {
			t.Fatalf("snapshot checksum mismatch")
		}
		for _, e := range s.Entities {
			if e.Owner == welcome.NetworkID {
				return
			}
		}
	}
}

func TestHealthz(t *testing.T) {
	wm := NewWorldManager(DefaultOptions())
	defer wm.StopAll()
	mux := http.NewServeMux()
	wm.Routes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
}
