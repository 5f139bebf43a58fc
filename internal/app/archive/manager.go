// Package archive provides the saved playlist manager.
package archive

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/domain/playlist"
	"github.com/moodtunes/moodtunes/internal/domain/track"
	"github.com/moodtunes/moodtunes/internal/infra/store"
)

var (
	ErrBlankName = errors.New("playlist name is blank")
	ErrNotFound  = errors.New("saved playlist not found")
)

// Manager names and persists snapshots of past queues. The saved
// collection is kept newest first.
type Manager struct {
	mu    sync.Mutex
	store *store.Store
	saved []playlist.Saved
	now   func() time.Time
}

// NewManager creates an archive manager, restoring any stored collection.
func NewManager(st *store.Store) *Manager {
	m := &Manager{
		store: st,
		now:   time.Now,
	}
	st.Read(store.SavedPlaylists, &m.saved)
	return m
}

// Stage proposes a default name for archiving the current queue. The user
// may edit it before confirming.
func (m *Manager) Stage(moodLabel string) string {
	if moodLabel == "" {
		moodLabel = "Custom"
	}
	return fmt.Sprintf("%s Vibe %s", moodLabel, m.now().Format("1/2/2006"))
}

// Confirm archives a deep copy of the queue under the given name,
// prepending it to the saved collection. A blank or whitespace-only name
// is rejected and nothing is created.
func (m *Manager) Confirm(name, moodLabel string, queue []track.Track) (playlist.Saved, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return playlist.Saved{}, ErrBlankName
	}
	if moodLabel == "" {
		moodLabel = "Chill"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := playlist.Saved{
		ID:        uuid.New().String(),
		Name:      trimmed,
		Mood:      moodLabel,
		Tracks:    track.Clone(queue),
		Timestamp: m.now().UnixMilli(),
	}

	m.saved = playlist.Prepend(m.saved, entry)
	if err := m.store.Write(store.SavedPlaylists, m.saved); err != nil {
		return playlist.Saved{}, errors.Wrap(err, "failed to persist saved playlists")
	}

	zlog.Info().Msgf("archived playlist: id=%s name=%s tracks=%d", entry.ID, entry.Name, len(entry.Tracks))
	return entry, nil
}

// Remove deletes the entry with the given id and persists the remainder,
// preserving its order.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, removed := playlist.Remove(m.saved, id)
	if !removed {
		return ErrNotFound
	}

	m.saved = updated
	if err := m.store.Write(store.SavedPlaylists, m.saved); err != nil {
		return errors.Wrap(err, "failed to persist saved playlists")
	}
	return nil
}

// Get returns the saved entry with the given id.
func (m *Manager) Get(id string) (playlist.Saved, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.saved {
		if s.ID == id {
			return s, true
		}
	}
	return playlist.Saved{}, false
}

// List returns a copy of the saved collection, newest first.
func (m *Manager) List() []playlist.Saved {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]playlist.Saved, len(m.saved))
	copy(result, m.saved)
	return result
}
