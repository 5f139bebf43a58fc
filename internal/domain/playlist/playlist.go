// Package playlist provides the SavedPlaylist domain entity.
package playlist

import "github.com/moodtunes/moodtunes/internal/domain/track"

// Saved represents a durably archived snapshot of a past queue.
type Saved struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Mood      string        `json:"mood"`
	Tracks    []track.Track `json:"tracks"`
	Timestamp int64         `json:"timestamp"` // unix milliseconds
}

// TrackIDs returns all track IDs in the saved playlist.
func (s *Saved) TrackIDs() []string {
	ids := make([]string, len(s.Tracks))
	for i, t := range s.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// Prepend inserts entry at the head of the newest-first collection.
func Prepend(saved []Saved, entry Saved) []Saved {
	updated := make([]Saved, 0, len(saved)+1)
	updated = append(updated, entry)
	updated = append(updated, saved...)
	return updated
}

// Remove deletes the entry with the given id, preserving the order of the
// remainder. The second return value reports whether anything was removed.
func Remove(saved []Saved, id string) ([]Saved, bool) {
	for i, s := range saved {
		if s.ID == id {
			updated := make([]Saved, 0, len(saved)-1)
			updated = append(updated, saved[:i]...)
			updated = append(updated, saved[i+1:]...)
			return updated, true
		}
	}
	return saved, false
}
