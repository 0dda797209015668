package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAMLAndTOMLAgree(t *testing.T) {
	y, err := Load(filepath.Join("testdata", "scenario.yaml"))
	require.NoError(t, err)
	tm, err := Load(filepath.Join("testdata", "scenario.toml"))
	require.NoError(t, err)

	assert.Equal(t, "ordered-fanout", y.Name)
	assert.Equal(t, y.Name, tm.Name)
	require.Len(t, y.Steps, 5)
	require.Len(t, tm.Steps, 5)
	for i := range y.Steps {
		assert.Equal(t, y.Steps[i].Op, tm.Steps[i].Op, "step %d", i)
		assert.Equal(t, y.Steps[i].Event, tm.Steps[i].Event, "step %d", i)
	}
	require.NotNil(t, y.Steps[3].ID)
	assert.EqualValues(t, 0, *y.Steps[3].ID)
	assert.Equal(t, "f1", tm.Steps[3].Ref)
}

func TestLoad_NameDefaultsToFileStem(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "bound.json"))
	require.NoError(t, err)
	assert.Equal(t, "bound", s.Name)
	assert.True(t, s.RecoverPanics)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	p := filepath.Join(dir, "s.ini")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	_, err = Load(p)
	assert.ErrorContains(t, err, "unsupported script extension")

	p = filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("steps: [op: publish\n"), 0o644))
	_, err = Load(p)
	assert.ErrorContains(t, err, "parse bad.yaml")

	p = filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(p, []byte("steps:\n  - op: publish\n"), 0o644))
	_, err = Load(p)
	assert.True(t, IsInvalidStep(err), "got %v", err)
}

func TestValidate(t *testing.T) {
	id := int64(3)
	cases := []struct {
		name string
		step []Step
		ok   bool
	}{
		{"empty", nil, true},
		{"missing op", []Step{{Event: "a"}}, false},
		{"unknown op", []Step{{Op: "emit", Event: "a"}}, false},
		{"subscribe needs event", []Step{{Op: OpSubscribe}}, false},
		{"publish needs event", []Step{{Op: OpPublish}}, false},
		{"unsubscribe_event needs event", []Step{{Op: OpUnsubscribeEvent}}, false},
		{"unsubscribe_id needs target", []Step{{Op: OpUnsubscribeID}}, false},
		{"unsubscribe_id by literal", []Step{{Op: OpUnsubscribeID, ID: &id}}, true},
		{"unsubscribe ambiguous", []Step{{Op: OpSubscribe, Event: "a", Name: "f"}, {Op: OpUnsubscribe, Ref: "f", Event: "a"}}, false},
		{"unsubscribe by event", []Step{{Op: OpUnsubscribe, Event: "a"}}, true},
		{"ref before declaration", []Step{{Op: OpUnsubscribeID, Ref: "f"}, {Op: OpSubscribe, Event: "a", Name: "f"}}, false},
		{"duplicate name", []Step{{Op: OpSubscribe, Event: "a", Name: "f"}, {Op: OpSubscribeWith, Event: "b", Name: "f"}}, false},
		{"purge", []Step{{Op: OpPurge}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Script{Steps: c.step}.Validate()
			if c.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsInvalidStep(err), "got %v", err)
		})
	}
}
