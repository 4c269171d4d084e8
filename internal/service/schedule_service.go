package service

import (
	"context"
	"time"

	"agendei/internal/database"
	"agendei/internal/domain"
	"agendei/internal/models"
)

// ScheduleService exposes a provider's own agenda.
type ScheduleService struct {
	repo domain.Repository
}

func NewScheduleService(repo domain.Repository) *ScheduleService {
	return &ScheduleService{repo: repo}
}

// Day returns the provider's active appointments for the calendar day of
// `day`, hour order, with requester names.
func (s *ScheduleService) Day(ctx context.Context, providerID int64, day time.Time) ([]*models.Appointment, error) {
	if err := s.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.GetProviderAppointments(ctx, providerID, start, start.AddDate(0, 0, 1))
}

// Range returns the provider's active appointments in [start, end] days,
// inclusive of the whole end day.
func (s *ScheduleService) Range(ctx context.Context, providerID int64, start, end time.Time) ([]*models.Appointment, error) {
	if err := s.requireProvider(ctx, providerID); err != nil {
		return nil, err
	}

	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return s.repo.GetProviderAppointments(ctx, providerID, from, to)
}

func (s *ScheduleService) requireProvider(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Provider {
		return database.ErrNotProvider
	}
	return nil
}
