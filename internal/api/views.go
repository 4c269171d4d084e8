package api

import (
	"time"

	"agendei/internal/models"
)

type avatarView struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type userView struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email,omitempty"`
	Provider bool        `json:"provider"`
	Avatar   *avatarView `json:"avatar,omitempty"`
}

type appointmentView struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ProviderID int64      `json:"provider_id"`
	Date       time.Time  `json:"date"`
	Past       bool       `json:"past"`
	Cancelable bool       `json:"cancelable"`
	CanceledAt *time.Time `json:"canceled_at"`
	Provider   *userView  `json:"provider,omitempty"`
	User       *userView  `json:"user,omitempty"`
}

func (s *HTTPServer) avatarURL(path string) string {
	return s.cfg.Server.BaseURL + "/files/" + path
}

func (s *HTTPServer) userToView(user *models.User, includeEmail bool) *userView {
	if user == nil {
		return nil
	}
	v := &userView{
		ID:       user.ID,
		Name:     user.Name,
		Provider: user.Provider,
	}
	if includeEmail {
		v.Email = user.Email
	}
	if user.Avatar != nil {
		v.Avatar = &avatarView{
			ID:   user.Avatar.ID,
			Path: user.Avatar.Path,
			URL:  s.avatarURL(user.Avatar.Path),
		}
	}
	return v
}

func (s *HTTPServer) appointmentToView(a *models.Appointment, now time.Time) *appointmentView {
	return &appointmentView{
		ID:         a.ID,
		UserID:     a.UserID,
		ProviderID: a.ProviderID,
		Date:       a.Date,
		Past:       a.Past(now),
		Cancelable: a.Cancelable(now),
		CanceledAt: a.CanceledAt,
		Provider:   s.userToView(a.Provider, false),
		User:       s.userToView(a.User, false),
	}
}
