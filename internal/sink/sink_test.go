package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evt/internal/config"
	"evt/pkg/evt"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSet_HandlerKinds(t *testing.T) {
	s := NewSet(zerolog.Nop(), nil)
	for _, k := range []string{KindLog, KindCount} {
		h, err := s.Handler(k)
		require.NoError(t, err, k)
		require.NotNil(t, h, k)
	}
	_, err := s.Handler(KindJournal)
	assert.True(t, IsJournalUnavailable(err), "got %v", err)
	_, err = s.Handler("webhook")
	assert.True(t, IsUnknownKind(err), "got %v", err)
	assert.Contains(t, err.Error(), "log|count|journal")
}

func TestSet_SubscribeBindsReceiver(t *testing.T) {
	s := NewSet(zerolog.Nop(), nil)
	reg := evt.New()
	id, err := s.Subscribe(reg, "user.login", KindCount, "")
	require.NoError(t, err)

	subs := reg.Subscribers("user.login")
	require.Len(t, subs, 1)
	assert.Equal(t, id, subs[0].ID)
	assert.True(t, subs[0].Bound)
	assert.Equal(t, Receiver{Event: "user.login", Kind: KindCount, Label: KindCount}, subs[0].Receiver)
}

func TestCounter_CountsPerEvent(t *testing.T) {
	s := NewSet(zerolog.Nop(), nil)
	reg := evt.New()
	_, err := s.Apply(reg, []config.Sink{
		{Event: "a", Kind: KindCount},
		{Event: "a", Kind: KindCount, Label: "second"},
		{Event: "b", Kind: KindCount},
	})
	require.NoError(t, err)

	reg.Publish("a", 1)
	reg.Publish("b")
	reg.Publish("b")
	assert.Equal(t, map[string]int64{"a": 2, "b": 2}, s.Counts.Snapshot())

	s.Counts.Reset()
	assert.Empty(t, s.Counts.Snapshot())
}

func TestCounter_BareSubscription(t *testing.T) {
	c := NewCounter()
	reg := evt.New()
	reg.Subscribe("x", c.handle)
	reg.Publish("x")
	assert.Equal(t, map[string]int64{"": 1}, c.Snapshot())
}

func TestLogSink_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewSet(zerolog.New(&buf), nil)
	reg := evt.New()
	_, err := s.Subscribe(reg, "user.login", KindLog, "audit")
	require.NoError(t, err)

	reg.Publish("user.login", "ada", 42)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "event delivered", line["message"])
	assert.Equal(t, "user.login", line["event"])
	assert.Equal(t, "audit", line["sink"])
	assert.Equal(t, []any{"ada", float64(42)}, line["args"])
}

func TestApply_RollsBackOnError(t *testing.T) {
	s := NewSet(zerolog.Nop(), nil)
	reg := evt.New()
	ids, err := s.Apply(reg, []config.Sink{
		{Event: "a", Kind: KindLog},
		{Event: "a", Kind: KindCount},
		{Event: "a", Kind: "bogus"},
	})
	require.Error(t, err)
	assert.True(t, IsUnknownKind(err))
	assert.Nil(t, ids)
	assert.Equal(t, 0, reg.Len("a"))
	// ids were consumed even though the subscriptions were rolled back
	assert.Equal(t, evt.ID(1), reg.LastID())
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	s := NewSet(zerolog.Nop(), j)
	reg := evt.New()
	_, err := s.Apply(reg, []config.Sink{
		{Event: "a", Kind: KindJournal, Label: "ja"},
		{Event: "b", Kind: KindJournal},
	})
	require.NoError(t, err)

	reg.Publish("a", "first")
	reg.Publish("b", 1, true)
	reg.Publish("a", "second")

	ctx := context.Background()
	all, err := j.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Event)
	assert.Equal(t, []any{"second"}, all[0].Args)
	assert.Equal(t, "b", all[1].Event)
	assert.Equal(t, KindJournal, all[1].Label)
	assert.Equal(t, []any{float64(1), true}, all[1].Args)
	assert.NotZero(t, all[2].AtUnixNano)

	onlyA, err := j.Recent(ctx, "a", 1)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, "ja", onlyA[0].Label)
	assert.Equal(t, []any{"second"}, onlyA[0].Args)
}

func TestJournal_NoArgsStoredAsEmptyList(t *testing.T) {
	j := openTestJournal(t)
	s := NewSet(zerolog.Nop(), j)
	reg := evt.New()
	_, err := s.Subscribe(reg, "tick", KindJournal, "")
	require.NoError(t, err)
	reg.Publish("tick")

	got, err := j.Recent(context.Background(), "tick", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []any{}, got[0].Args)
}
