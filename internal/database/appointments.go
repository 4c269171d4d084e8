package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agendei/internal/models"

	"github.com/mattn/go-sqlite3"
)

// dateLayout keeps appointment dates lexicographically sortable in sqlite.
// Dates are normalized to UTC before storage.
const dateLayout = time.RFC3339

func (db *DB) SlotTaken(ctx context.Context, providerID int64, date time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM appointments
              WHERE provider_id = ? AND date = ? AND canceled_at IS NULL`
	var count int
	err := db.QueryRowContext(ctx, query, providerID, date.UTC().Format(dateLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return count > 0, nil
}

// CreateAppointmentWithNotification inserts the appointment and the provider
// notification outbox row in one transaction. The partial unique index on
// (provider_id, date) turns concurrent double-bookings into ErrSlotTaken.
func (db *DB) CreateAppointmentWithNotification(ctx context.Context, appointment *models.Appointment, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	queryCount := `SELECT COUNT(*) FROM appointments
                   WHERE provider_id = ? AND date = ? AND canceled_at IS NULL`
	dateStr := appointment.Date.UTC().Format(dateLayout)
	err = tx.QueryRowContext(ctx, queryCount, appointment.ProviderID, dateStr).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if count > 0 {
		return ErrSlotTaken
	}

	now := time.Now()
	queryInsert := `INSERT INTO appointments (user_id, provider_id, date, created_at, updated_at)
                    VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, queryInsert,
		appointment.UserID,
		appointment.ProviderID,
		dateStr,
		now,
		now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrSlotTaken
		}
		return fmt.Errorf("failed to insert appointment in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	queryOutbox := `INSERT INTO notification_outbox (user_id, content, status, created_at)
                    VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, queryOutbox,
		appointment.ProviderID, content, models.OutboxStatusPending, now); err != nil {
		return fmt.Errorf("failed to enqueue notification in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	appointment.ID = id
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	return nil
}

// ListUserAppointments returns the caller's active appointments in ascending
// date order, 20 per page, with the provider and its avatar joined in.
func (db *DB) ListUserAppointments(ctx context.Context, userID int64, page int) ([]*models.Appointment, error) {
	if page < 1 {
		page = 1
	}
	query := `SELECT a.id, a.user_id, a.provider_id, a.date, a.canceled_at,
                     a.created_at, a.updated_at,
                     p.name, COALESCE(p.avatar_id, 0), f.name, f.path
              FROM appointments a
              JOIN users p ON p.id = a.provider_id
              LEFT JOIN files f ON f.id = p.avatar_id
              WHERE a.user_id = ? AND a.canceled_at IS NULL
              ORDER BY a.date ASC
              LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, userID,
		models.AppointmentsPageSize, (page-1)*models.AppointmentsPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a := &models.Appointment{Provider: &models.User{}}
		var dateStr string
		var canceledAt sql.NullTime
		var avatarName, avatarPath sql.NullString
		err := rows.Scan(
			&a.ID, &a.UserID, &a.ProviderID, &dateStr, &canceledAt,
			&a.CreatedAt, &a.UpdatedAt,
			&a.Provider.Name, &a.Provider.AvatarID, &avatarName, &avatarPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}

		a.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
		}
		a.Provider.ID = a.ProviderID
		if canceledAt.Valid {
			t := canceledAt.Time
			a.CanceledAt = &t
		}
		if a.Provider.AvatarID != 0 {
			a.Provider.Avatar = &models.File{
				ID:   a.Provider.AvatarID,
				Name: avatarName.String,
				Path: avatarPath.String,
			}
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// GetAppointmentWithParties loads an appointment together with the provider
// (name, email) and the requesting user (name).
func (db *DB) GetAppointmentWithParties(ctx context.Context, id int64) (*models.Appointment, error) {
	query := `SELECT a.id, a.user_id, a.provider_id, a.date, a.canceled_at,
                     a.created_at, a.updated_at,
                     p.name, p.email, u.name
              FROM appointments a
              JOIN users p ON p.id = a.provider_id
              JOIN users u ON u.id = a.user_id
              WHERE a.id = ?`

	a := &models.Appointment{Provider: &models.User{}, User: &models.User{}}
	var dateStr string
	var canceledAt sql.NullTime
	err := db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.ProviderID, &dateStr, &canceledAt,
		&a.CreatedAt, &a.UpdatedAt,
		&a.Provider.Name, &a.Provider.Email, &a.User.Name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	a.Date, err = time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
	}
	a.Provider.ID = a.ProviderID
	a.User.ID = a.UserID
	if canceledAt.Valid {
		t := canceledAt.Time
		a.CanceledAt = &t
	}
	return a, nil
}

// CancelAppointment stamps canceled_at on a still-active appointment.
// A row that is already canceled is not restamped.
func (db *DB) CancelAppointment(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE appointments SET canceled_at = ?, updated_at = ?
              WHERE id = ? AND canceled_at IS NULL`
	result, err := db.ExecContext(ctx, query, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAlreadyCanceled
	}
	return nil
}

// GetProviderAppointments returns the provider's active appointments in
// [start, end) with requester names, hour order.
func (db *DB) GetProviderAppointments(ctx context.Context, providerID int64, start, end time.Time) ([]*models.Appointment, error) {
	query := `SELECT a.id, a.user_id, a.provider_id, a.date, a.canceled_at,
                     a.created_at, a.updated_at, u.name
              FROM appointments a
              JOIN users u ON u.id = a.user_id
              WHERE a.provider_id = ? AND a.canceled_at IS NULL
                AND a.date >= ? AND a.date < ?
              ORDER BY a.date ASC`
	rows, err := db.QueryContext(ctx, query, providerID,
		start.UTC().Format(dateLayout), end.UTC().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get provider appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*models.Appointment
	for rows.Next() {
		a := &models.Appointment{User: &models.User{}}
		var dateStr string
		var canceledAt sql.NullTime
		err := rows.Scan(
			&a.ID, &a.UserID, &a.ProviderID, &dateStr, &canceledAt,
			&a.CreatedAt, &a.UpdatedAt, &a.User.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}

		a.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse appointment date %s: %w", dateStr, err)
		}
		a.User.ID = a.UserID
		if canceledAt.Valid {
			t := canceledAt.Time
			a.CanceledAt = &t
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
