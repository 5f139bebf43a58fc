package insights

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodtunes/moodtunes/internal/domain/history"
	"github.com/moodtunes/moodtunes/internal/domain/track"
	"github.com/moodtunes/moodtunes/internal/infra/store"
)

func newTestRecorder(t *testing.T) (*Recorder, *store.Store) {
	t.Helper()
	st, err := store.New(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	return NewRecorder(st), st
}

func TestRecorder_Record(t *testing.T) {
	r, st := newTestRecorder(t)

	r.Record("Happy", track.Track{ID: "a", Title: "First"})
	r.Record("Sad", track.Track{ID: "b", Title: "Second"})

	items := r.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].TrackID)
	assert.Equal(t, "a", items[1].TrackID)

	// Every record is persisted, so a new recorder sees the same log.
	restored := NewRecorder(st)
	assert.Equal(t, 2, restored.Len())
}

func TestRecorder_CapEnforced(t *testing.T) {
	r, _ := newTestRecorder(t)

	for i := 0; i < history.Cap+10; i++ {
		r.Record("Chill", track.Track{ID: fmt.Sprintf("t%d", i)})
	}

	items := r.Items()
	assert.Len(t, items, history.Cap)
	assert.Equal(t, fmt.Sprintf("t%d", history.Cap+9), items[0].TrackID)
}

func TestAggregate(t *testing.T) {
	items := []history.Item{
		{Mood: "Happy"},
		{Mood: "Happy"},
		{Mood: "Sad"},
		{Mood: "Chill"},
	}

	report := Aggregate(items)
	assert.False(t, report.Empty)
	assert.Equal(t, 4, report.Total)
	require.Len(t, report.Stats, 3)

	assert.Equal(t, "Happy", report.Stats[0].Mood)
	assert.Equal(t, 2, report.Stats[0].Count)
	assert.InDelta(t, 50.0, report.Stats[0].Percentage, 0.001)

	// Percentages sum to 100.
	var sum float64
	for _, s := range report.Stats {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.001)
}

func TestAggregate_TiesKeepEncounterOrder(t *testing.T) {
	items := []history.Item{
		{Mood: "Sleep"},
		{Mood: "Anger"},
		{Mood: "Sleep"},
		{Mood: "Anger"},
	}

	report := Aggregate(items)
	require.Len(t, report.Stats, 2)
	assert.Equal(t, "Sleep", report.Stats[0].Mood)
	assert.Equal(t, "Anger", report.Stats[1].Mood)
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil)
	assert.True(t, report.Empty)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.Stats)
}
