package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agendei/internal/config"
	"agendei/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer is the REST surface of the booking backend.
type HTTPServer struct {
	cfg           *config.Config
	users         *service.UserService
	appointments  *service.AppointmentService
	schedule      *service.ScheduleService
	notifications NotificationReader
	logger        *zerolog.Logger
	server        *http.Server
}

func NewHTTPServer(
	cfg *config.Config,
	users *service.UserService,
	appointments *service.AppointmentService,
	schedule *service.ScheduleService,
	notifications NotificationReader,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:           cfg,
		users:         users,
		appointments:  appointments,
		schedule:      schedule,
		notifications: notifications,
		logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users", srv.handleUsers)
	mux.HandleFunc("/sessions", srv.handleSessions)
	mux.HandleFunc("/appointments", srv.handleAppointments)
	mux.HandleFunc("/appointments/", srv.handleAppointmentByID)
	mux.HandleFunc("/providers", srv.handleProviders)
	mux.HandleFunc("/files", srv.handleFileUpload)
	mux.Handle("/files/", http.StripPrefix("/files/",
		http.FileServer(http.Dir(cfg.Uploads.Dir))))
	mux.HandleFunc("/notifications", srv.handleNotifications)
	mux.HandleFunc("/notifications/", srv.handleNotificationByID)
	mux.HandleFunc("/schedule", srv.handleSchedule)
	mux.HandleFunc("/schedule/export", srv.handleScheduleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := requestIDMiddleware(
		loggingMiddleware(logger,
			recoverMiddleware(cfg.IsDevelopment(), logger,
				corsMiddleware(
					rateLimitMiddleware(cfg.Server.RateLimit,
						authMiddleware(cfg.Auth.JWTSecret, mux))))))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
