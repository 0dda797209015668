package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Step operations.
const (
	OpSubscribe        = "subscribe"
	OpSubscribeWith    = "subscribe_with"
	OpUnsubscribe      = "unsubscribe"
	OpUnsubscribeID    = "unsubscribe_id"
	OpUnsubscribeEvent = "unsubscribe_event"
	OpPublish          = "publish"
	OpPurge            = "purge"
)

// Script is a named list of steps.
type Script struct {
	Name          string `json:"name" yaml:"name" toml:"name"`
	RecoverPanics bool   `json:"recover_panics" yaml:"recover_panics" toml:"recover_panics"`
	Steps         []Step `json:"steps" yaml:"steps" toml:"steps"`
}

// Step is one registry operation.
//
// Name labels the recorder created by subscribe and subscribe_with. Ref names
// such a recorder so later steps can unsubscribe it without knowing its id.
type Step struct {
	Op       string `json:"op" yaml:"op" toml:"op"`
	Event    string `json:"event,omitempty" yaml:"event,omitempty" toml:"event,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Receiver string `json:"receiver,omitempty" yaml:"receiver,omitempty" toml:"receiver,omitempty"`
	ID       *int64 `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Ref      string `json:"ref,omitempty" yaml:"ref,omitempty" toml:"ref,omitempty"`
	Args     []any  `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
	// Panic makes the recorder panic after recording each invocation.
	Panic bool `json:"panic,omitempty" yaml:"panic,omitempty" toml:"panic,omitempty"`
}

// Load reads a script file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Script, error) {
	var s Script
	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &s)
	case ".json":
		err = json.Unmarshal(b, &s)
	case ".toml":
		err = toml.Unmarshal(b, &s)
	default:
		return s, fmt.Errorf("unsupported script extension: %s", ext)
	}
	if err != nil {
		return s, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, s.Validate()
}

// Validate checks every step for the fields its operation needs. Refs must
// name a recorder declared by an earlier step.
func (s Script) Validate() error {
	names := make(map[string]bool)
	for i, st := range s.Steps {
		bad := func(format string, a ...any) error {
			return invalidStepError{index: i, msg: fmt.Sprintf(format, a...)}
		}
		switch st.Op {
		case OpSubscribe, OpSubscribeWith:
			if st.Event == "" {
				return bad("%s requires event", st.Op)
			}
			if st.Name != "" {
				if names[st.Name] {
					return bad("duplicate recorder name %q", st.Name)
				}
				names[st.Name] = true
			}
		case OpPublish, OpUnsubscribeEvent:
			if st.Event == "" {
				return bad("%s requires event", st.Op)
			}
		case OpUnsubscribeID:
			if st.ID == nil && st.Ref == "" {
				return bad("unsubscribe_id requires id or ref")
			}
		case OpUnsubscribe:
			n := 0
			if st.ID != nil {
				n++
			}
			if st.Ref != "" {
				n++
			}
			if st.Event != "" {
				n++
			}
			if n != 1 {
				return bad("unsubscribe requires exactly one of id, ref or event")
			}
		case OpPurge:
		case "":
			return bad("op is required")
		default:
			return bad("unknown op %q", st.Op)
		}
		if st.Ref != "" && !names[st.Ref] {
			return bad("ref %q does not name an earlier recorder", st.Ref)
		}
	}
	return nil
}
