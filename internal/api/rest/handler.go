// Package rest exposes the application over HTTP for the web client.
package rest

import (
	"encoding/json"
	"net/http"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/app/archive"
	"github.com/moodtunes/moodtunes/internal/app/auth"
	"github.com/moodtunes/moodtunes/internal/app/chat"
	"github.com/moodtunes/moodtunes/internal/app/insights"
	"github.com/moodtunes/moodtunes/internal/app/player"
)

// Handler routes client requests to the application services.
type Handler struct {
	auth     *auth.Manager
	player   *player.Controller
	insights *insights.Recorder
	archive  *archive.Manager

	chatMu     sync.Mutex
	chatClient chat.Streamer
	chatModel  string
	chatSess   *chat.Session

	router *http.ServeMux
}

// NewHandler wires application services to the HTTP surface.
func NewHandler(am *auth.Manager, pc *player.Controller, rec *insights.Recorder, arc *archive.Manager, streamer chat.Streamer, chatModel string) *Handler {
	h := &Handler{
		auth:       am,
		player:     pc,
		insights:   rec,
		archive:    arc,
		chatClient: streamer,
		chatModel:  chatModel,
		router:     http.NewServeMux(),
	}
	h.routes()
	return h
}

// ServeHTTP satisfies http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.health)

	h.router.HandleFunc("POST /api/auth/register", h.register)
	h.router.HandleFunc("POST /api/auth/login", h.login)
	h.router.HandleFunc("GET /api/auth/session", h.session)
	h.router.HandleFunc("POST /api/auth/logout", h.authed(h.logout))
	h.router.HandleFunc("POST /api/auth/upgrade", h.authed(h.upgrade))

	h.router.HandleFunc("GET /api/moods", h.moods)

	h.router.HandleFunc("POST /api/player/mood", h.authed(h.selectMood))
	h.router.HandleFunc("POST /api/player/text", h.authed(h.submitText))
	h.router.HandleFunc("POST /api/player/toggle", h.authed(h.togglePlay))
	h.router.HandleFunc("POST /api/player/next", h.authed(h.next))
	h.router.HandleFunc("POST /api/player/prev", h.authed(h.prev))
	h.router.HandleFunc("POST /api/player/seek", h.authed(h.seek))
	h.router.HandleFunc("POST /api/player/ended", h.authed(h.trackEnded))
	h.router.HandleFunc("GET /api/player/state", h.authed(h.playerState))

	h.router.HandleFunc("GET /api/history", h.authed(h.historyLog))
	h.router.HandleFunc("GET /api/insights", h.authed(h.insightsReport))

	h.router.HandleFunc("GET /api/playlists", h.authed(h.listPlaylists))
	h.router.HandleFunc("GET /api/playlists/stage", h.authed(h.stagePlaylist))
	h.router.HandleFunc("POST /api/playlists", h.authed(h.savePlaylist))
	h.router.HandleFunc("DELETE /api/playlists/{id}", h.authed(h.deletePlaylist))
	h.router.HandleFunc("POST /api/playlists/{id}/load", h.authed(h.loadPlaylist))

	h.router.HandleFunc("POST /api/chat", h.authed(h.chatTurn))
	h.router.HandleFunc("GET /api/chat/messages", h.authed(h.chatMessages))
}

// authed rejects requests made without an active session.
func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.auth.Current(); !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next(w, r)
	}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Msgf("rest: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decode parses a JSON request body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
