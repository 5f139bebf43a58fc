package player

import (
	"github.com/moodtunes/moodtunes/internal/domain/mood"
	"github.com/moodtunes/moodtunes/internal/domain/track"
)

// EventType represents a playback session event type.
type EventType int

const (
	EventQueueReplaced    EventType = iota // A generation or load replaced the queue
	EventTrackChanged                      // The current index moved
	EventStateChanged                      // Playing flag toggled
	EventGenerationFailed                  // Generation resolved with zero tracks
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventQueueReplaced:
		return "queue_replaced"
	case EventTrackChanged:
		return "track_changed"
	case EventStateChanged:
		return "state_changed"
	case EventGenerationFailed:
		return "generation_failed"
	default:
		return "unknown"
	}
}

// Event represents a playback session event.
type Event struct {
	Type  EventType
	Track *track.Track // Current track (nil for some events)
	Index int          // Current index
	Mood  mood.Mood    // Selected mood at the time of the event
	State State        // Session state after the event
}
