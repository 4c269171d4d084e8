package domain

import (
	"context"
	"time"

	"agendei/internal/models"
)

// Repository is the persistence surface consumed by the services.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetProvider(ctx context.Context, id int64) (*models.User, error)
	ListProviders(ctx context.Context) ([]*models.User, error)
	SetUserAvatar(ctx context.Context, userID, fileID int64) error

	CreateFile(ctx context.Context, file *models.File) error
	GetFile(ctx context.Context, id int64) (*models.File, error)

	SlotTaken(ctx context.Context, providerID int64, date time.Time) (bool, error)
	CreateAppointmentWithNotification(ctx context.Context, appointment *models.Appointment, content string) error
	ListUserAppointments(ctx context.Context, userID int64, page int) ([]*models.Appointment, error)
	GetAppointmentWithParties(ctx context.Context, id int64) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, id int64, at time.Time) error
	GetProviderAppointments(ctx context.Context, providerID int64, start, end time.Time) ([]*models.Appointment, error)
}

// OutboxRepository is the slice of the persistence layer the notification
// dispatcher works against.
type OutboxRepository interface {
	GetPendingOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	MarkOutboxDone(ctx context.Context, id int64) error
	MarkOutboxRetry(ctx context.Context, id int64, lastError string, nextRetryAt time.Time) error
	MarkOutboxFailed(ctx context.Context, id int64, lastError string) error
}

// NotificationStore holds per-user notification documents with read state.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID int64, id string) (*models.Notification, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
