// Package auth реализует регистрацию и вход пользователей.
//
// Регистрация создаёт пользователя без username: имя выбирается позже,
// отдельным шагом онбординга. Вход проверяет пароль и выдаёт JWT сессии.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/password"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/storage/repository"
)

// Типизированные ошибки аутентификации.
var (
	// ErrEmailTaken адрес почты уже зарегистрирован.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCredentials неверная пара email и пароль. Одна ошибка на
	// оба случая: несуществующий адрес неотличим от неверного пароля.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository определяет операции хранилища, нужные аутентификации.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenMaker выдаёт JWT сессии.
type TokenMaker interface {
	GenerateToken(userUID, username, role string) (string, error)
}

// Service реализует регистрацию и вход.
type Service struct {
	users  UserRepository
	tokens TokenMaker
	log    *slog.Logger
}

// New создаёт новый Service.
func New(users UserRepository, tokens TokenMaker, log *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		log:    log,
	}
}

// Register создаёт нового пользователя с ролью user и пустым username.
func (s *Service) Register(ctx context.Context, email, plainPassword string) (*models.User, error) {
	const op = "auth.Register"

	hash, err := password.GetHash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.RegisterUser(ctx, user); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// Login проверяет пароль и возвращает JWT сессии вместе с пользователем.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, plainPassword); err != nil {
		s.log.Warn("password mismatch", slog.String("email", email))
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(user.UID, user.Username, user.Role)
	if err != nil {
		s.log.Error("failed to generate token", sl.Err(err))
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}
