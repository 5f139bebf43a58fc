package rest

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/moodtunes/moodtunes/internal/app/auth"
)

type registerRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	AvatarStyle string `json:"avatarStyle"`
	AvatarSeed  string `json:"avatarSeed"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.Register(req.Email, req.Username, req.Password, req.AvatarStyle, req.AvatarSeed)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// session reports the restored session, if any. The client calls this on
// startup to skip the login screen.
func (h *Handler) session(w http.ResponseWriter, _ *http.Request) {
	session, ok := h.auth.Restore()
	if !ok {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.auth.Logout()
	h.player.Reset()
	h.resetChat()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) upgrade(w http.ResponseWriter, _ *http.Request) {
	session, err := h.auth.Upgrade()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session)
}
