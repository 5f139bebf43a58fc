package player

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/domain/mood"
	"github.com/moodtunes/moodtunes/internal/domain/track"
)

// Errors
var (
	ErrQueueEmpty         = errors.New("queue is empty")
	ErrGenerationInFlight = errors.New("a generation request is already in flight")
	ErrNoTrack            = errors.New("no track loaded")
	ErrBlankText          = errors.New("text input is blank")
)

// Generator defines the recommendation gateway operations the controller
// consumes. Implementations never fail: a failed generation yields an
// empty slice and a failed classification yields the default mood.
type Generator interface {
	GeneratePlaylist(ctx context.Context, m mood.Mood) []track.Track
	DetectMood(ctx context.Context, text string) mood.Mood
}

// HistoryRecorder receives every played track.
type HistoryRecorder interface {
	Record(mood string, t track.Track)
}

// Controller owns the ephemeral playback queue: the loaded tracks, the
// current index, the playing flag, and the selected mood. Every index
// change is forwarded to the history recorder. The queue is never read
// back from the store.
type Controller struct {
	mu sync.Mutex

	queue        []track.Track
	index        int
	state        State
	selectedMood mood.Mood // empty until a mood is selected

	gateway Generator
	history HistoryRecorder

	eventCh chan Event
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewController creates a new playback session controller.
func NewController(gateway Generator, history HistoryRecorder) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		queue:   make([]track.Track, 0),
		state:   StateIdle,
		gateway: gateway,
		history: history,
		eventCh: make(chan Event, 16),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// SelectMood loads a fresh playlist for the given mood. Re-selecting the
// currently selected mood while the queue is non-empty is a no-op; a
// trigger while another generation is in flight is rejected.
func (c *Controller) SelectMood(ctx context.Context, m mood.Mood) error {
	c.mu.Lock()

	if c.state == StateLoading {
		c.mu.Unlock()
		return ErrGenerationInFlight
	}
	if m == c.selectedMood && len(c.queue) > 0 {
		c.mu.Unlock()
		zlog.Debug().Msgf("player: mood %s already loaded, skipping regeneration", m)
		return nil
	}

	c.selectedMood = m
	c.state = StateLoading
	c.mu.Unlock()

	// The gateway call suspends on the caller's goroutine; the Loading
	// state rejects re-entrant triggers meanwhile.
	tracks := c.gateway.GeneratePlaylist(ctx, m)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyGeneratedLocked(tracks)
	return nil
}

// SubmitText classifies free text into a mood and loads a playlist for it.
// Returns the detected mood.
func (c *Controller) SubmitText(ctx context.Context, text string) (mood.Mood, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrBlankText
	}

	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return "", ErrGenerationInFlight
	}
	c.state = StateLoading
	c.mu.Unlock()

	detected := c.gateway.DetectMood(ctx, text)
	tracks := c.gateway.GeneratePlaylist(ctx, detected)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedMood = detected
	c.applyGeneratedLocked(tracks)
	return detected, nil
}

// applyGeneratedLocked installs a generation result. Zero tracks returns
// the session to Idle; otherwise the queue is replaced, playback starts at
// index 0 and the first track is logged. Must be called with the lock held.
func (c *Controller) applyGeneratedLocked(tracks []track.Track) {
	if len(tracks) == 0 {
		c.state = StateIdle
		c.sendEventLocked(Event{
			Type:  EventGenerationFailed,
			Mood:  c.selectedMood,
			State: c.state,
		})
		return
	}

	c.queue = tracks
	c.index = 0
	c.state = StatePlaying
	c.history.Record(c.moodLabelLocked(), c.queue[0])

	c.sendEventLocked(Event{
		Type:  EventQueueReplaced,
		Track: &c.queue[0],
		Index: 0,
		Mood:  c.selectedMood,
		State: c.state,
	})
}

// TogglePlay flips between Playing and Paused.
func (c *Controller) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePlaying:
		c.state = StatePaused
	case StatePaused:
		c.state = StatePlaying
	default:
		return ErrNoTrack
	}

	c.sendEventLocked(Event{
		Type:  EventStateChanged,
		Track: c.currentLocked(),
		Index: c.index,
		Mood:  c.selectedMood,
		State: c.state,
	})
	return nil
}

// Next advances to the next track, wrapping at the end of the queue.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return ErrQueueEmpty
	}
	c.moveLocked((c.index + 1) % len(c.queue))
	return nil
}

// Prev moves to the previous track, wrapping at the start of the queue.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return ErrQueueEmpty
	}
	c.moveLocked((c.index - 1 + len(c.queue)) % len(c.queue))
	return nil
}

// Seek jumps to the given index. An out-of-bounds target is a no-op.
func (c *Controller) Seek(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return ErrQueueEmpty
	}
	if index < 0 || index >= len(c.queue) {
		zlog.Debug().Msgf("player: seek target out of bounds, ignoring: index=%d queue=%d", index, len(c.queue))
		return nil
	}
	c.state = StatePlaying
	c.moveLocked(index)
	return nil
}

// TrackEnded handles the end-of-media signal from the playback surface.
// It behaves exactly like Next.
func (c *Controller) TrackEnded() {
	if err := c.Next(); err != nil {
		zlog.Debug().Msgf("player: track ended with empty queue: %v", err)
	}
}

// moveLocked sets the current index, logs the newly current track and
// emits a track change. Must be called with the lock held and a non-empty
// queue.
func (c *Controller) moveLocked(index int) {
	c.index = index
	t := c.queue[c.index]
	c.history.Record(c.moodLabelLocked(), t)

	c.sendEventLocked(Event{
		Type:  EventTrackChanged,
		Track: &c.queue[c.index],
		Index: c.index,
		Mood:  c.selectedMood,
		State: c.state,
	})
}

// LoadSnapshot replaces the live queue with an archived snapshot, resets
// the index and resumes playing.
func (c *Controller) LoadSnapshot(moodLabel string, tracks []track.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLoading {
		return ErrGenerationInFlight
	}
	if len(tracks) == 0 {
		return ErrQueueEmpty
	}

	if m, ok := mood.Parse(moodLabel); ok {
		c.selectedMood = m
	} else {
		c.selectedMood = mood.Default
	}

	c.queue = track.Clone(tracks)
	c.index = 0
	c.state = StatePlaying

	c.sendEventLocked(Event{
		Type:  EventQueueReplaced,
		Track: &c.queue[0],
		Index: 0,
		Mood:  c.selectedMood,
		State: c.state,
	})
	return nil
}

// Reset clears the queue and selection, returning the session to Idle.
// Called on logout.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = make([]track.Track, 0)
	c.index = 0
	c.selectedMood = ""
	c.state = StateIdle
}

// Snapshot is a consistent read of the session for rendering or archiving.
type Snapshot struct {
	Queue        []track.Track
	Index        int
	State        State
	SelectedMood mood.Mood
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Queue:        track.Clone(c.queue),
		Index:        c.index,
		State:        c.state,
		SelectedMood: c.selectedMood,
	}
}

// CurrentTrack returns the currently loaded track.
func (c *Controller) CurrentTrack() (track.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return track.Track{}, false
	}
	return c.queue[c.index], true
}

// GetState returns the current session state.
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectedMood returns the currently selected mood, if any.
func (c *Controller) SelectedMood() (mood.Mood, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedMood, c.selectedMood != ""
}

// Close closes the controller and releases resources.
func (c *Controller) Close() {
	c.cancel()
	close(c.eventCh)
}

// moodLabelLocked returns the history label for the selected mood, falling
// back to the default when none is selected. Must be called with the lock
// held.
func (c *Controller) moodLabelLocked() string {
	if c.selectedMood == "" {
		return mood.Default.String()
	}
	return c.selectedMood.String()
}

// currentLocked returns a pointer to the current track or nil. Must be
// called with the lock held.
func (c *Controller) currentLocked() *track.Track {
	if len(c.queue) == 0 {
		return nil
	}
	return &c.queue[c.index]
}

// sendEventLocked sends an event without blocking.
// Must be called with lock held.
func (c *Controller) sendEventLocked(e Event) {
	select {
	case c.eventCh <- e:
	case <-c.ctx.Done():
	default:
		// Channel full, drop event
	}
}
