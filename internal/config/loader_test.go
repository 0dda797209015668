package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func checkSinks(t *testing.T, cfg Config) {
	t.Helper()
	if len(cfg.Sinks) != 2 {
		t.Fatalf("sinks: %+v", cfg.Sinks)
	}
	if cfg.Sinks[0] != (Sink{Event: "user.login", Kind: "log", Label: "audit"}) {
		t.Fatalf("sinks[0]: %+v", cfg.Sinks[0])
	}
	if cfg.Sinks[1] != (Sink{Event: "user.login", Kind: "count"}) {
		t.Fatalf("sinks[1]: %+v", cfg.Sinks[1])
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
log_level: debug
recover_panics: true
journal_path: /tmp/j.db
sinks:
  - event: user.login
    kind: log
    label: audit
  - event: user.login
    kind: count
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || !cfg.RecoverPanics || cfg.JournalPath != "/tmp/j.db" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	checkSinks(t, cfg)
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","cors_enabled":true,"cors_origins":["http://a"],"max_body_bytes":2048,
"sinks":[{"event":"user.login","kind":"log","label":"audit"},{"event":"user.login","kind":"count"}]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || !cfg.CORSEnabled || len(cfg.CORSOrigins) != 1 || cfg.MaxBodyBytes != 2048 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	checkSinks(t, cfg)
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", `addr=":8081"
log_format="console"
watch=true

[[sinks]]
event="user.login"
kind="log"
label="audit"

[[sinks]]
event="user.login"
kind="count"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.LogFormat != "console" || !cfg.Watch {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	checkSinks(t, cfg)
}

func TestLoadHCL(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.hcl", `addr = ":6060"
recover_panics = true

sink {
  event = "user.login"
  kind  = "log"
  label = "audit"
}

sink {
  event = "user.login"
  kind  = "count"
}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":6060" || !cfg.RecoverPanics {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	checkSinks(t, cfg)
}

func TestLoadHCL_EnvVariables(t *testing.T) {
	t.Setenv("EVTD_TEST_JOURNAL", "/var/lib/evtd/journal.db")
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.hcl", `journal_path = env.EVTD_TEST_JOURNAL
addr         = "127.0.0.1:${env.EVTD_TEST_PORT}"
`)
	t.Setenv("EVTD_TEST_PORT", "9090")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JournalPath != "/var/lib/evtd/journal.db" || cfg.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestHCLSyntaxName(t *testing.T) {
	for k, want := range map[string]bool{"HOME": true, "_x": true, "a-b1": true, "1a": false, "-a": false, "a.b": false, "": true} {
		if got := hclsyntaxName(k); got != want {
			t.Fatalf("%q: got %v want %v", k, got, want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
