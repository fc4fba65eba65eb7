package models

import "gorm.io/gorm"

// User roles. The first account created through setup becomes the admin;
// accounts registered afterwards are always funcionario.
const (
	RoleAdmin       = "admin"
	RoleFuncionario = "funcionario"
)

// User represents an application account that can authenticate with the backend.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:funcionario"`
}

// IsAdmin reports whether the account holds the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
