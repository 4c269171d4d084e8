package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func (s *HTTPServer) handleAppointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listAppointments(w, r)
	case http.MethodPost:
		s.createAppointment(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listAppointments(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		// Out-of-range pages fall back to the first page.
		if parsed > 1 {
			page = parsed
		}
	}

	appointments, err := s.appointments.List(r.Context(), CallerID(r.Context()), page)
	if err != nil {
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

func (s *HTTPServer) createAppointment(w http.ResponseWriter, r *http.Request) {
	type request struct {
		ProviderID int64  `json:"provider_id"`
		Date       string `json:"date"`
	}

	var body request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}
	if body.ProviderID <= 0 || strings.TrimSpace(body.Date) == "" {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	date, err := time.Parse(time.RFC3339, body.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Validation fails")
		return
	}

	appointment, err := s.appointments.Create(r.Context(), CallerID(r.Context()), body.ProviderID, date)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.appointmentToView(appointment, time.Now()))
}

func (s *HTTPServer) handleAppointmentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/appointments/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	appointment, err := s.appointments.Cancel(r.Context(), CallerID(r.Context()), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.appointmentToView(appointment, time.Now()))
}
