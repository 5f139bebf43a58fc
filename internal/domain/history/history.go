// Package history provides the play history log.
package history

import "github.com/moodtunes/moodtunes/internal/domain/track"

// Cap is the maximum number of retained history entries. Appending to a
// full log evicts the oldest entry.
const Cap = 100

// Item records a single (re)play of a track under a mood.
type Item struct {
	Timestamp   int64  `json:"timestamp"` // unix milliseconds
	Mood        string `json:"mood"`
	TrackID     string `json:"trackId"`
	TrackTitle  string `json:"trackTitle"`
	TrackArtist string `json:"trackArtist"`
}

// NewItem builds a history item for a played track.
func NewItem(timestamp int64, mood string, t track.Track) Item {
	return Item{
		Timestamp:   timestamp,
		Mood:        mood,
		TrackID:     t.ID,
		TrackTitle:  t.Title,
		TrackArtist: t.Artist,
	}
}

// Push prepends item to the newest-first log, evicting from the tail
// when the cap is exceeded, and returns the updated log.
func Push(log []Item, item Item) []Item {
	updated := make([]Item, 0, len(log)+1)
	updated = append(updated, item)
	updated = append(updated, log...)
	if len(updated) > Cap {
		updated = updated[:Cap]
	}
	return updated
}
