package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicer/internal/auth"
	"github.com/MrJamesThe3rd/invoicer/internal/http/form"
)

type Handler struct {
	svc      *auth.Service
	sessions *auth.Sessions
}

func NewHandler(svc *auth.Service, sessions *auth.Sessions) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post(auth.LoginPath, h.login)
	r.Post("/logout", h.logout)
}

type loginResponse struct {
	Message string `json:"message"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := form.Parse(r); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, msg, err := h.svc.Authenticate(r.Context(), auth.CredentialsFromValues(r.PostForm))
	if err != nil {
		slog.Error("failed to sign in", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if msg != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)

		if err := json.NewEncoder(w).Encode(loginResponse{Message: msg}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	h.sessions.SetCookie(w, sess)
	slog.Info("user signed in", "user_id", sess.UserID)
	http.Redirect(w, r, auth.HomePath, http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}
