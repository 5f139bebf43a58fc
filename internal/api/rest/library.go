package rest

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/moodtunes/moodtunes/internal/app/archive"
	"github.com/moodtunes/moodtunes/internal/app/insights"
)

func (h *Handler) historyLog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.insights.Items())
}

func (h *Handler) insightsReport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, insights.Aggregate(h.insights.Items()))
}

func (h *Handler) listPlaylists(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.archive.List())
}

// stagePlaylist proposes a default name for saving the current queue.
func (h *Handler) stagePlaylist(w http.ResponseWriter, _ *http.Request) {
	snap := h.player.Snapshot()
	if len(snap.Queue) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to save: the queue is empty")
		return
	}
	name := h.archive.Stage(string(snap.SelectedMood))
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

type savePlaylistRequest struct {
	Name string `json:"name"`
}

func (h *Handler) savePlaylist(w http.ResponseWriter, r *http.Request) {
	var req savePlaylistRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap := h.player.Snapshot()
	if len(snap.Queue) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to save: the queue is empty")
		return
	}

	saved, err := h.archive.Confirm(req.Name, string(snap.SelectedMood), snap.Queue)
	if err != nil {
		if errors.Is(err, archive.ErrBlankName) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.archive.Remove(id); err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// loadPlaylist replaces the queue with a saved playlist and starts playback.
func (h *Handler) loadPlaylist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	saved, ok := h.archive.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "saved playlist not found")
		return
	}

	if err := h.player.LoadSnapshot(saved.Mood, saved.Tracks); err != nil {
		writePlayerError(w, err)
		return
	}
	h.writeState(w)
}
