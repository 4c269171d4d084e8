package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"agendei/internal/auth"
)

func (s *HTTPServer) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Provider bool   `json:"provider"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(body.Email)
	if body.Name == "" || body.Email == "" || !strings.Contains(body.Email, "@") || len(body.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	user, err := s.users.Register(r.Context(), body.Name, body.Email, body.Password, body.Provider)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.userToView(user, true))
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	user, err := s.users.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		s.respondError(w, err)
		return
	}

	token, err := auth.MakeToken(user.ID, s.cfg.Auth.JWTSecret, s.cfg.Auth.TokenTTL)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  s.userToView(user, true),
		"token": token,
	})
}

func (s *HTTPServer) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providers, err := s.users.ListProviders(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	views := make([]*userView, 0, len(providers))
	for _, p := range providers {
		views = append(views, s.userToView(p, true))
	}
	writeJSON(w, http.StatusOK, views)
}
