package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agendei/internal/database"
	"agendei/internal/domain"
	"agendei/internal/events"
	"agendei/internal/format"
	"agendei/internal/metrics"
	"agendei/internal/models"

	"github.com/rs/zerolog"
)

type AppointmentService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewAppointmentService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// List returns the caller's active appointments, ascending by date,
// 20 per page.
func (s *AppointmentService) List(ctx context.Context, userID int64, page int) ([]*models.Appointment, error) {
	return s.repo.ListUserAppointments(ctx, userID, page)
}

// Create books an appointment for userID with providerID at date. The date is
// normalized to the start of its hour, which is the booking granularity: two
// requests inside the same clock hour collide on the same slot.
func (s *AppointmentService) Create(ctx context.Context, userID, providerID int64, date time.Time) (*models.Appointment, error) {
	if providerID == userID {
		return nil, database.ErrSelfBooking
	}

	provider, err := s.repo.GetProvider(ctx, providerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, database.ErrNotProvider
	}
	if err != nil {
		return nil, err
	}

	hourStart := date.UTC().Truncate(time.Hour)
	if hourStart.Before(time.Now()) {
		return nil, database.ErrPastDate
	}

	taken, err := s.repo.SlotTaken(ctx, providerID, hourStart)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, database.ErrSlotTaken
	}

	requester, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		UserID:     userID,
		ProviderID: providerID,
		Date:       hourStart,
	}
	content := fmt.Sprintf("Novo agendamento de %s para %s",
		requester.Name, format.AppointmentDate(hourStart))

	// The repository re-checks the slot inside the booking transaction, so a
	// concurrent racer surfaces here as ErrSlotTaken.
	if err := s.repo.CreateAppointmentWithNotification(ctx, appointment, content); err != nil {
		return nil, err
	}

	appointment.Provider = provider
	metrics.IncAppointmentsCreated()
	s.publishEvent(events.EventAppointmentCreated, appointment)

	return appointment, nil
}

// Cancel stamps the cancellation timestamp when the caller owns the
// appointment and the two-hour window is still open.
func (s *AppointmentService) Cancel(ctx context.Context, userID, appointmentID int64) (*models.Appointment, error) {
	appointment, err := s.repo.GetAppointmentWithParties(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.UserID != userID {
		return nil, database.ErrNotOwner
	}
	if appointment.Canceled() {
		return nil, database.ErrAlreadyCanceled
	}

	now := time.Now()
	if !now.Before(appointment.Date.Add(-models.CancelWindow)) {
		return nil, database.ErrCancelWindow
	}

	if err := s.repo.CancelAppointment(ctx, appointmentID, now); err != nil {
		return nil, err
	}
	appointment.CanceledAt = &now
	appointment.UpdatedAt = now

	metrics.IncAppointmentsCanceled()
	s.publishEvent(events.EventAppointmentCanceled, appointment)

	return appointment, nil
}

func (s *AppointmentService) publishEvent(eventType string, appointment *models.Appointment) {
	if s.eventBus == nil {
		return
	}

	payload := events.AppointmentEventPayload{
		AppointmentID: appointment.ID,
		UserID:        appointment.UserID,
		ProviderID:    appointment.ProviderID,
		Date:          appointment.Date,
		CanceledAt:    appointment.CanceledAt,
	}
	if appointment.User != nil {
		payload.UserName = appointment.User.Name
	}
	if appointment.Provider != nil {
		payload.ProviderName = appointment.Provider.Name
		payload.ProviderEmail = appointment.Provider.Email
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).
			Int64("appointment_id", appointment.ID).Msg("publish event error")
	}
}
