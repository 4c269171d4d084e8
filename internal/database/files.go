package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agendei/internal/models"
)

func (db *DB) CreateFile(ctx context.Context, file *models.File) error {
	query := `INSERT INTO files (name, path, created_at) VALUES (?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query, file.Name, file.Path, now)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	file.ID = id
	file.CreatedAt = now

	return nil
}

func (db *DB) GetFile(ctx context.Context, id int64) (*models.File, error) {
	query := `SELECT id, name, path, created_at FROM files WHERE id = ?`

	var file models.File
	err := db.QueryRowContext(ctx, query, id).Scan(
		&file.ID, &file.Name, &file.Path, &file.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}
