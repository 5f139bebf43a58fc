package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moodtunes/moodtunes/internal/domain/track"
)

func TestPush_NewestFirst(t *testing.T) {
	var log []Item
	log = Push(log, Item{TrackID: "a"})
	log = Push(log, Item{TrackID: "b"})
	log = Push(log, Item{TrackID: "c"})

	assert.Len(t, log, 3)
	assert.Equal(t, "c", log[0].TrackID)
	assert.Equal(t, "b", log[1].TrackID)
	assert.Equal(t, "a", log[2].TrackID)
}

func TestPush_EvictsOldestAtCap(t *testing.T) {
	var log []Item
	for i := 0; i < Cap; i++ {
		log = Push(log, Item{TrackID: fmt.Sprintf("t%d", i)})
	}
	assert.Len(t, log, Cap)
	assert.Equal(t, "t0", log[Cap-1].TrackID)

	// One more push evicts the oldest entry, not the newest.
	log = Push(log, Item{TrackID: "overflow"})
	assert.Len(t, log, Cap)
	assert.Equal(t, "overflow", log[0].TrackID)
	assert.Equal(t, "t1", log[Cap-1].TrackID)
}

func TestNewItem(t *testing.T) {
	tr := track.Track{
		ID:     "happy-0-1700000000000",
		Title:  "Walking on Sunshine",
		Artist: "Katrina and the Waves",
	}

	item := NewItem(1700000000000, "Happy", tr)
	assert.Equal(t, int64(1700000000000), item.Timestamp)
	assert.Equal(t, "Happy", item.Mood)
	assert.Equal(t, tr.ID, item.TrackID)
	assert.Equal(t, tr.Title, item.TrackTitle)
	assert.Equal(t, tr.Artist, item.TrackArtist)
}
