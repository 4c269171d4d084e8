package service

import (
	"context"
	"errors"

	"agendei/internal/auth"
	"agendei/internal/database"
	"agendei/internal/domain"
	"agendei/internal/models"

	"github.com/rs/zerolog"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords so the
// login response does not leak which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewUserService(repo domain.Repository, logger *zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

func (s *UserService) Register(ctx context.Context, name, email, password string, provider bool) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     provider,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Bool("provider", provider).Msg("user registered")
	return user, nil
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *UserService) ListProviders(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListProviders(ctx)
}

// AttachAvatar records the uploaded file and links it to the user.
func (s *UserService) AttachAvatar(ctx context.Context, userID int64, file *models.File) error {
	if err := s.repo.CreateFile(ctx, file); err != nil {
		return err
	}
	return s.repo.SetUserAvatar(ctx, userID, file.ID)
}
