package evtctl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evt/internal/script"
	"evt/internal/version"
)

var scenario = filepath.Join("..", "script", "testdata", "scenario.yaml")

func TestMainWithArgs_NoArgs_ShowsUsageAndExit2(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, MainWithArgs(nil, &out))
	assert.Contains(t, out.String(), "evtctl")
}

func TestMainWithArgs_UnknownCommand_Exit1(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, MainWithArgs([]string{"wat"}, &out))
}

func TestMainWithArgs_Version(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, MainWithArgs([]string{"version"}, &out))
	assert.Equal(t, "evtctl "+version.Version+"\n", out.String())
}

func TestMainWithArgs_RunPrintsTrace(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, MainWithArgs([]string{"--no-color", "run", scenario}, &out))
	got := out.String()
	assert.Contains(t, got, "ordered-fanout")
	assert.Contains(t, got, "f1(x), f2(x)")
	assert.Contains(t, got, "removed")
	assert.Contains(t, got, "f2(y)")
	assert.NotContains(t, got, "f1(y)")
	assert.Contains(t, got, "events=1 subscriptions=1 last_id=1")
}

func TestMainWithArgs_RunNeedsOneArg(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, MainWithArgs([]string{"run"}, &out))
}

func TestMainWithArgs_Check(t *testing.T) {
	var out bytes.Buffer
	require.Equal(t, 0, MainWithArgs([]string{"check", scenario}, &out))
	assert.Equal(t, "ordered-fanout: 5 steps ok\n", out.String())

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("steps:\n  - op: emit\n"), 0o644))
	out.Reset()
	assert.Equal(t, 1, MainWithArgs([]string{"check", bad}, &out))
}

func TestRenderCells(t *testing.T) {
	e := script.Entry{Op: script.OpUnsubscribeID, ID: 4}
	assert.Equal(t, "4", idCell(e))
	assert.Equal(t, "no-op", resultCell(e))

	e = script.Entry{Op: script.OpPurge, ID: -1}
	assert.Equal(t, "-", idCell(e))
	assert.Equal(t, "", resultCell(e))

	e = script.Entry{
		Op:     script.OpPublish,
		ID:     -1,
		Calls:  []script.Call{{Recorder: "a", Args: []any{1}}, {Recorder: "b", Bound: true, Receiver: "r"}},
		Panics: []string{"b panicked"},
	}
	assert.Equal(t, "a(1), b[r]()", callsCell(e))
	assert.True(t, strings.HasPrefix(resultCell(e), "2 calls"))
	assert.Contains(t, resultCell(e), "panic: b panicked")
}
