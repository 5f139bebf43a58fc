package rest

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/moodtunes/moodtunes/internal/app/player"
	"github.com/moodtunes/moodtunes/internal/domain/mood"
	"github.com/moodtunes/moodtunes/internal/domain/track"
)

type moodInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DefaultGenre string `json:"defaultGenre"`
}

func (h *Handler) moods(w http.ResponseWriter, _ *http.Request) {
	all := mood.All()
	result := make([]moodInfo, 0, len(all))
	for _, m := range all {
		result = append(result, moodInfo{
			Name:         m.String(),
			Description:  m.Description(),
			DefaultGenre: m.DefaultGenre(),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

type selectMoodRequest struct {
	Mood string `json:"mood"`
}

type submitTextRequest struct {
	Text string `json:"text"`
}

type seekRequest struct {
	Index int `json:"index"`
}

type stateResponse struct {
	Queue        []track.Track `json:"queue"`
	Index        int           `json:"index"`
	State        string        `json:"state"`
	SelectedMood string        `json:"selectedMood,omitempty"`
}

func (h *Handler) selectMood(w http.ResponseWriter, r *http.Request) {
	var req selectMoodRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, ok := mood.Parse(req.Mood)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown mood: "+req.Mood)
		return
	}

	if err := h.player.SelectMood(r.Context(), m); err != nil {
		writePlayerError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) submitText(w http.ResponseWriter, r *http.Request) {
	var req submitTextRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detected, err := h.player.SubmitText(r.Context(), req.Text)
	if err != nil {
		writePlayerError(w, err)
		return
	}

	snap := h.player.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		DetectedMood string        `json:"detectedMood"`
		Queue        []track.Track `json:"queue"`
		Index        int           `json:"index"`
		State        string        `json:"state"`
	}{detected.String(), snap.Queue, snap.Index, snap.State.String()})
}

func (h *Handler) togglePlay(w http.ResponseWriter, _ *http.Request) {
	if err := h.player.TogglePlay(); err != nil {
		writePlayerError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) next(w http.ResponseWriter, _ *http.Request) {
	if err := h.player.Next(); err != nil {
		writePlayerError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) prev(w http.ResponseWriter, _ *http.Request) {
	if err := h.player.Prev(); err != nil {
		writePlayerError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) seek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.player.Seek(req.Index); err != nil {
		writePlayerError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) trackEnded(w http.ResponseWriter, _ *http.Request) {
	h.player.TrackEnded()
	h.writeState(w)
}

func (h *Handler) playerState(w http.ResponseWriter, _ *http.Request) {
	h.writeState(w)
}

func (h *Handler) writeState(w http.ResponseWriter) {
	snap := h.player.Snapshot()
	resp := stateResponse{
		Queue: snap.Queue,
		Index: snap.Index,
		State: snap.State.String(),
	}
	if snap.SelectedMood != "" {
		resp.SelectedMood = snap.SelectedMood.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// writePlayerError maps controller errors to HTTP statuses.
func writePlayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, player.ErrGenerationInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, player.ErrQueueEmpty), errors.Is(err, player.ErrNoTrack), errors.Is(err, player.ErrBlankText):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
