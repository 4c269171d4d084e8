package models

import "time"

type Appointment struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ProviderID int64      `json:"provider_id"`
	Date       time.Time  `json:"date"`
	CanceledAt *time.Time `json:"canceled_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Joined by list/detail queries, not stored on the appointments table.
	Provider *User `json:"provider,omitempty"`
	User     *User `json:"user,omitempty"`
}

func (a *Appointment) Canceled() bool {
	return a.CanceledAt != nil
}

// Past reports whether the scheduled hour is already behind now.
func (a *Appointment) Past(now time.Time) bool {
	return a.Date.Before(now)
}

// Cancelable reports whether the appointment can still be canceled at now:
// it is active and now has not yet reached the cancellation cutoff
// (two hours before the scheduled date).
func (a *Appointment) Cancelable(now time.Time) bool {
	if a.Canceled() || a.Past(now) {
		return false
	}
	return now.Before(a.Date.Add(-CancelWindow))
}
