// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"net/url"
)

// FallbackVideoID is the known-good video reference substituted when the
// generation service returns a missing or malformed one.
const FallbackVideoID = "dQw4w9WgXcQ"

// videoIDLength is the fixed length of an external video reference.
const videoIDLength = 11

// Track represents a generated song suggestion.
// Instances are immutable after gateway normalization.
type Track struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	AlbumArtURL string `json:"albumArt"`
	VideoID     string `json:"videoId"`
	Genre       string `json:"genre"`
}

// WatchURL returns the external playback URL for the track's video reference.
func (t Track) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + t.VideoID
}

// ValidVideoID reports whether id has the shape of an external video reference.
func ValidVideoID(id string) bool {
	if len(id) != videoIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// AlbumArtFor derives a deterministic identicon URL from title and artist,
// so re-generated playlists keep stable artwork per song.
func AlbumArtFor(title, artist string) string {
	seed := url.QueryEscape(title + artist)
	return fmt.Sprintf("https://api.dicebear.com/7.x/identicon/svg?seed=%s&backgroundColor=b6e3f4,c0aede,d1d4f9", seed)
}

// Clone returns copies of the given tracks. Callers use it to snapshot a
// queue so later queue mutations cannot reach the copy.
func Clone(tracks []Track) []Track {
	snapshot := make([]Track, len(tracks))
	copy(snapshot, tracks)
	return snapshot
}
