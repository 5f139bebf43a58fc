package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/moodtunes/moodtunes/internal/app/chat"
)

type chatRequest struct {
	Message string `json:"message"`
}

// chatTurn submits one message to the DJ assistant and streams the reply
// as server-sent events, one chunk per event.
func (h *Handler) chatTurn(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	chunks, err := h.chatSession().Send(r.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrBlankMessage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, chat.ErrTurnInFlight):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for chunk := range chunks {
		payload, err := json.Marshal(map[string]string{"text": chunk})
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (h *Handler) chatMessages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.chatSession().Messages())
}

// chatSession lazily creates the conversation so the system prompt can
// name the signed-in listener.
func (h *Handler) chatSession() *chat.Session {
	h.chatMu.Lock()
	defer h.chatMu.Unlock()
	if h.chatSess == nil {
		username := "listener"
		if session, ok := h.auth.Current(); ok {
			username = session.Username
		}
		h.chatSess = chat.NewSession(h.chatClient, h.chatModel, username)
	}
	return h.chatSess
}

func (h *Handler) resetChat() {
	h.chatMu.Lock()
	defer h.chatMu.Unlock()
	h.chatSess = nil
}
