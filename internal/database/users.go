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

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, email, password_hash, provider, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Provider,
		now,
		now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.provider,
                     COALESCE(u.avatar_id, 0), u.created_at, u.updated_at,
                     f.name, f.path
              FROM users u
              LEFT JOIN files f ON f.id = u.avatar_id
              WHERE u.id = ?`
	return db.scanUser(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.provider,
                     COALESCE(u.avatar_id, 0), u.created_at, u.updated_at,
                     f.name, f.path
              FROM users u
              LEFT JOIN files f ON f.id = u.avatar_id
              WHERE u.email = ?`
	return db.scanUser(db.QueryRowContext(ctx, query, email))
}

// GetProvider loads the user only when it is flagged as a provider.
func (db *DB) GetProvider(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.provider,
                     COALESCE(u.avatar_id, 0), u.created_at, u.updated_at,
                     f.name, f.path
              FROM users u
              LEFT JOIN files f ON f.id = u.avatar_id
              WHERE u.id = ? AND u.provider = 1`
	return db.scanUser(db.QueryRowContext(ctx, query, id))
}

func (db *DB) ListProviders(ctx context.Context) ([]*models.User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.provider,
                     COALESCE(u.avatar_id, 0), u.created_at, u.updated_at,
                     f.name, f.path
              FROM users u
              LEFT JOIN files f ON f.id = u.avatar_id
              WHERE u.provider = 1
              ORDER BY u.name ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := db.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (db *DB) SetUserAvatar(ctx context.Context, userID, fileID int64) error {
	query := `UPDATE users SET avatar_id = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, fileID, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set user avatar: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var avatarName, avatarPath sql.NullString
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Provider,
		&user.AvatarID, &user.CreatedAt, &user.UpdatedAt,
		&avatarName, &avatarPath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if user.AvatarID != 0 {
		user.Avatar = &models.File{
			ID:   user.AvatarID,
			Name: avatarName.String,
			Path: avatarPath.String,
		}
	}
	return &user, nil
}
