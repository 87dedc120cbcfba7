// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей и их подписок. С точки зрения этой подсистемы
// подписки только читаются и обновляются уведомлениями провайдера,
// никогда не удаляются.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Типизированные ошибки хранилища.
var (
	// ErrUserNotFound пользователь с таким идентификатором не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrSubscriptionNotFound у пользователя нет записи подписки.
	// Вызывающий код трактует отсутствие записи как план free.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrUsernameAlreadySet имя пользователя уже установлено и не может быть изменено.
	ErrUsernameAlreadySet = errors.New("username already set")
	// ErrUsernameTaken имя пользователя занято другим пользователем.
	ErrUsernameTaken = errors.New("username taken")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}
