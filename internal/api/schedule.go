package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"agendei/internal/database"
	"agendei/internal/export"
)

const dayLayout = "2006-01-02"

func parseDay(raw string) (time.Time, error) {
	return time.Parse(dayLayout, strings.TrimSpace(raw))
}

func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	appointments, err := s.schedule.Day(r.Context(), CallerID(r.Context()), day)
	if err != nil {
		if errors.Is(err, database.ErrNotProvider) {
			writeError(w, http.StatusUnauthorized, "Apenas especialistas podem acessar a agenda")
			return
		}
		s.respondError(w, err)
		return
	}

	now := time.Now()
	views := make([]*appointmentView, 0, len(appointments))
	for _, a := range appointments {
		views = append(views, s.appointmentToView(a, now))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) handleScheduleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query()
	start, err := parseDay(query.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	end, err := parseDay(query.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end must not precede start")
		return
	}

	callerID := CallerID(r.Context())
	caller, err := s.users.GetByID(r.Context(), callerID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if !caller.Provider {
		writeError(w, http.StatusUnauthorized, "Apenas especialistas podem acessar a agenda")
		return
	}

	appointments, err := s.schedule.Range(r.Context(), callerID, start, end)
	if err != nil {
		s.respondError(w, err)
		return
	}

	filename := fmt.Sprintf("agenda_%s_%s.xlsx", start.Format(dayLayout), end.Format(dayLayout))
	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteSchedule(w, caller.Name, start, end, appointments); err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
	}
}
