package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moodtunes/moodtunes/internal/domain/track"
)

func TestPrepend(t *testing.T) {
	var saved []Saved
	saved = Prepend(saved, Saved{ID: "a"})
	saved = Prepend(saved, Saved{ID: "b"})

	assert.Len(t, saved, 2)
	assert.Equal(t, "b", saved[0].ID)
	assert.Equal(t, "a", saved[1].ID)
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name        string
		saved       []Saved
		id          string
		expectedIDs []string
		removed     bool
	}{
		{
			name:        "remove middle entry preserves order",
			saved:       []Saved{{ID: "a"}, {ID: "b"}, {ID: "c"}},
			id:          "b",
			expectedIDs: []string{"a", "c"},
			removed:     true,
		},
		{
			name:        "remove head",
			saved:       []Saved{{ID: "a"}, {ID: "b"}},
			id:          "a",
			expectedIDs: []string{"b"},
			removed:     true,
		},
		{
			name:        "unknown id removes nothing",
			saved:       []Saved{{ID: "a"}},
			id:          "zzz",
			expectedIDs: []string{"a"},
			removed:     false,
		},
		{
			name:        "empty collection",
			saved:       nil,
			id:          "a",
			expectedIDs: []string{},
			removed:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, removed := Remove(tt.saved, tt.id)
			assert.Equal(t, tt.removed, removed)

			ids := make([]string, 0, len(updated))
			for _, s := range updated {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestSaved_TrackIDs(t *testing.T) {
	s := Saved{Tracks: []track.Track{{ID: "x"}, {ID: "y"}}}
	assert.Equal(t, []string{"x", "y"}, s.TrackIDs())
}
