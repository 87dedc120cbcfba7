// Package identity разрешает сессионный токен запроса в пользователя.
//
// Сервис предоставляет три уровня строгости: ResolveSession проверяет
// только валидность сессии, ResolveUser требует существующего
// пользователя, ResolveUserWithRole дополнительно проверяет роль.
// Все операции только читают состояние и возвращают типизированные
// ошибки, никакой ошибочный поток не оформляется паникой.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

// Типизированные ошибки разрешения личности.
var (
	// ErrUnauthenticated нет валидной сессии или пользователь не найден.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden сессия валидна, но роли недостаточно.
	ErrForbidden = errors.New("forbidden")
)

// UserProvider определяет чтение пользователей из хранилища.
type UserProvider interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// TokenParser определяет парсинг сессионного токена.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// Service реализует разрешение сессионного токена в пользователя.
type Service struct {
	tokens TokenParser
	users  UserProvider
	log    *slog.Logger
}

// New создаёт новый Service.
func New(tokens TokenParser, users UserProvider, log *slog.Logger) *Service {
	return &Service{
		tokens: tokens,
		users:  users,
		log:    log,
	}
}

// ResolveSession проверяет, что токен представляет валидную сессию,
// даже если пользователь ещё не завершил онбординг. Используется, чтобы
// решить, показывать ли страницы аутентификации вообще.
func (s *Service) ResolveSession(_ context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "identity.ResolveSession"
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	return claims, nil
}

// ResolveUser разрешает токен в пользователя из хранилища.
//
// Возвращает ErrUnauthenticated как при невалидной сессии, так и при
// отсутствии пользователя: для вызывающего это одно и то же состояние.
func (s *Service) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	const op = "identity.ResolveUser"
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		s.log.Warn("session resolves to missing user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	return user, nil
}

// ResolveUserWithRole разрешает токен в пользователя и требует совпадения роли.
// Валидная сессия с недостаточной ролью — это ErrForbidden, не ErrUnauthenticated.
func (s *Service) ResolveUserWithRole(ctx context.Context, token, role string) (*models.User, error) {
	const op = "identity.ResolveUserWithRole"
	user, err := s.ResolveUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	if user.Role != role {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	return user, nil
}
