package config

import (
	"testing"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "addr: :8080\n: broken\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.json", `{ "addr": ":8080", "sinks": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.toml", "addr=:8080\nsinks\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected TOML unmarshal error")
	}
}

func TestLoad_InvalidHCL(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.hcl", "addr = \nsink {\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected HCL decode error")
	}
}

func TestLoad_SinkWithoutEvent(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "sinks:\n  - kind: log\n")
	_, err := Load(p)
	if err == nil || !IsInvalid(err) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"empty", Config{}, true},
		{"sink ok", Config{Sinks: []Sink{{Event: "e", Kind: "log"}}}, true},
		{"missing kind", Config{Sinks: []Sink{{Event: "e"}}}, false},
		{"blank event", Config{Sinks: []Sink{{Event: "  ", Kind: "log"}}}, false},
		{"negative body", Config{MaxBodyBytes: -1}, false},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if (err == nil) != c.ok {
			t.Fatalf("%s: err=%v", c.name, err)
		}
		if err != nil && !IsInvalid(err) {
			t.Fatalf("%s: expected IsInvalid, got %v", c.name, err)
		}
	}
}
