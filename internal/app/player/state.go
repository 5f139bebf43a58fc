// Package player provides playback session control over the in-memory queue.
package player

// State represents the playback session state.
type State int

const (
	StateIdle    State = iota // No queue loaded
	StateLoading              // Generation request in flight
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
