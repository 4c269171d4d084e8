package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"agendei/internal/database"
	"agendei/internal/models"
)

// NotificationReader is what the API needs from the notification store.
type NotificationReader interface {
	ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID int64, id string) (*models.Notification, error)
}

func (s *HTTPServer) requireProvider(w http.ResponseWriter, r *http.Request) (int64, bool) {
	callerID := CallerID(r.Context())
	caller, err := s.users.GetByID(r.Context(), callerID)
	if err != nil {
		s.respondError(w, err)
		return 0, false
	}
	if !caller.Provider {
		writeError(w, http.StatusUnauthorized, "Apenas especialistas podem carregar as notificacoes")
		return 0, false
	}
	return callerID, true
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	callerID, ok := s.requireProvider(w, r)
	if !ok {
		return
	}

	notifications, err := s.notifications.ListForUser(r.Context(), callerID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *HTTPServer) handleNotificationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/notifications/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	callerID, ok := s.requireProvider(w, r)
	if !ok {
		return
	}

	notification, err := s.notifications.MarkRead(r.Context(), callerID, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Registro nao encontrado")
			return
		}
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}
