package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"SerialNode/internal/model"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	data := `
nodes:
  - id: N01
    device: /dev/ttyUSB0
  - id: LOG
    source: file
    follow: true
  - id: IN
    source: stdin
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Global.HubAddr != ":10000" {
		t.Fatalf("expected default hub addr :10000, got %s", cfg.Global.HubAddr)
	}
	if cfg.Global.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.Global.LogLevel)
	}
	if cfg.Nodes[0].Source != model.SourceSerial || cfg.Nodes[0].Baud != 9600 {
		t.Fatalf("expected serial node with baud 9600, got %+v", cfg.Nodes[0])
	}
	if cfg.Nodes[1].Path != "log.txt" || !cfg.Nodes[1].Follow {
		t.Fatalf("expected file node on log.txt following, got %+v", cfg.Nodes[1])
	}
	if cfg.Nodes[2].Source != model.SourceStdin {
		t.Fatalf("expected stdin node, got %+v", cfg.Nodes[2])
	}
}

func TestParseKeepsExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`
global:
  hub_addr: "127.0.0.1:9000"
  log_level: debug
  log_pretty: true
nodes:
  - id: N01
    source: serial
    device: /dev/ttyACM0
    baud: 115200
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Global.HubAddr != "127.0.0.1:9000" || cfg.Global.LogLevel != "debug" || !cfg.Global.LogPretty {
		t.Fatalf("unexpected global %+v", cfg.Global)
	}
	if cfg.Nodes[0].Baud != 115200 {
		t.Fatalf("unexpected baud %d", cfg.Nodes[0].Baud)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"missing id", "nodes:\n  - source: stdin\n", "id is required"},
		{"duplicate id", "nodes:\n  - {id: A, source: stdin}\n  - {id: A, source: file}\n", "duplicate node id"},
		{"serial without device", "nodes:\n  - {id: A}\n", "device is required"},
		{"unknown source", "nodes:\n  - {id: A, source: udp}\n", "unknown source"},
		{"two stdin", "nodes:\n  - {id: A, source: stdin}\n  - {id: B, source: stdin}\n", "at most one stdin"},
		{"bad yaml", "nodes: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
