package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for evtd.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr          string   `json:"addr" yaml:"addr" toml:"addr" hcl:"addr,optional"`
	LogLevel      string   `json:"log_level" yaml:"log_level" toml:"log_level" hcl:"log_level,optional"`
	LogFormat     string   `json:"log_format" yaml:"log_format" toml:"log_format" hcl:"log_format,optional"`
	RecoverPanics bool     `json:"recover_panics" yaml:"recover_panics" toml:"recover_panics" hcl:"recover_panics,optional"`
	MaxBodyBytes  int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" hcl:"max_body_bytes,optional"`
	CORSEnabled   bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" hcl:"cors_enabled,optional"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" hcl:"cors_origins,optional"`
	JournalPath   string   `json:"journal_path" yaml:"journal_path" toml:"journal_path" hcl:"journal_path,optional"`
	Watch         bool     `json:"watch" yaml:"watch" toml:"watch" hcl:"watch,optional"`
	Sinks         []Sink   `json:"sinks" yaml:"sinks" toml:"sinks" hcl:"sink,block"`
}

// Sink declares a built-in subscriber the daemon registers at startup.
type Sink struct {
	Event string `json:"event" yaml:"event" toml:"event" hcl:"event"`
	Kind  string `json:"kind" yaml:"kind" toml:"kind" hcl:"kind"`
	Label string `json:"label" yaml:"label" toml:"label" hcl:"label,optional"`
}

// invalidConfigError reports a semantically invalid configuration.
type invalidConfigError struct{ msg string }

func (e invalidConfigError) Error() string { return "invalid config: " + e.msg }

// IsInvalid reports whether err came from Validate.
func IsInvalid(err error) bool {
	_, ok := err.(invalidConfigError)
	return ok
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml, .hcl
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".hcl":
		if err := hclsimple.Decode(filepath.Base(path), b, hclEvalContext(), &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// hclEvalContext exposes the process environment to HCL configs as env.NAME.
func hclEvalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" && hclsyntaxName(k) {
			env[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": cty.ObjectVal(env)}}
}

// hclsyntaxName reports whether k can be used as an attribute name.
func hclsyntaxName(k string) bool {
	for i, r := range k {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}

// Validate checks the sink declarations. Sink kinds are checked by the sink
// package when the sinks are applied.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if strings.TrimSpace(s.Event) == "" {
			return invalidConfigError{msg: fmt.Sprintf("sinks[%d]: event is required", i)}
		}
		if strings.TrimSpace(s.Kind) == "" {
			return invalidConfigError{msg: fmt.Sprintf("sinks[%d]: kind is required", i)}
		}
	}
	if c.MaxBodyBytes < 0 {
		return invalidConfigError{msg: "max_body_bytes must not be negative"}
	}
	return nil
}
