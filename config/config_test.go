package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveDefault(path); err != nil {
		t.Fatalf("save default: %v", err)
	}
	if err := SaveDefault(path); err == nil {
		t.Fatalf("saving over an existing file must fail")
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("round trip changed config:\n got %+v\nwant %+v", cfg, Default())
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := []byte(`
[server]
addr = ":9000"
tick_rate = 30
move_rate = 2.5

[client]
lead_ticks = 4
bot = true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.TickRate != 30 || cfg.Server.MoveRate != 2.5 {
		t.Fatalf("server overrides not applied: %+v", cfg.Server)
	}
	if cfg.Client.LeadTicks != 4 || !cfg.Client.Bot {
		t.Fatalf("client overrides not applied: %+v", cfg.Client)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero tick rate":     "[server]\ntick_rate = 0\n",
		"zero snapshot":      "[server]\nsnapshot_interval = 0\n",
		"negative lead":      "[client]\nlead_ticks = -1\n",
		"malformed document": "[server\n",
	}
	for name, doc := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
