package domain

import "time"

// Роли пользователей. Роль admin дополнительно выдаётся сервисной
// учётке оркестратора через короткоживущий токен.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User — учётная запись покупателя или администратора.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
