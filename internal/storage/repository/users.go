package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных.
// Username при регистрации пуст и заполняется шагом онбординга.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) error {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, username, password_hash, role, image_id)
			  VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6);`
	if _, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Email, user.Username, user.PasswordHash, user.Role,
		user.ImageID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, COALESCE(username, ''), password_hash, role, image_id, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var imageID sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &imageID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if imageID.Valid {
		u.ImageID = &imageID.String
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по адресу электронной почты.
// Используется при входе в систему.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, COALESCE(username, ''), password_hash, role, image_id, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)

	var imageID sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &imageID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if imageID.Valid {
		u.ImageID = &imageID.String
	}
	return u, nil
}

// SetUsername устанавливает имя пользователя ровно один раз.
//
// Запрос обновляет строку только если username ещё пуст: установленное
// имя никогда не откатывается и не перезаписывается.
func (s *Storage) SetUsername(ctx context.Context, userUID, username string) error {
	const op = "storage.SetUsername"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET username = $1
			  WHERE uid = $2 AND (username IS NULL OR username = '')`
	result, err := s.DB.ExecContext(ctx, query, username, userUID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUsernameAlreadySet)
	}
	return nil
}
