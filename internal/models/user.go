// Package models содержит доменные модели пользователя и подписки,
// используемые в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователя.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
//
// Поле Username остаётся пустым до завершения онбординга и после
// установки никогда не сбрасывается обратно в пустое значение.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (уникальная)
	Username     string     // Имя пользователя, пустое до онбординга
	PasswordHash string     // Хэш пароля пользователя
	Role         string     // Роль пользователя, admin или user
	ImageID      *string    // Идентификатор аватара (опционально)
	CreatedAt    time.Time  // Дата регистрации
}

// HasUsername сообщает, завершил ли пользователь шаг онбординга.
func (u *User) HasUsername() bool {
	return u != nil && u.Username != ""
}

// IsAdmin сообщает, имеет ли пользователь административную роль.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
