package domain

import (
	"strings"
	"time"
)

// RoleName - название роли
type RoleName string

const (
	RoleUser  RoleName = "USER"
	RoleAdmin RoleName = "ADMIN"
)

type Role struct {
	ID   int64    `db:"id" json:"id"`
	Name RoleName `db:"name" json:"name"`
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RoleID       int64     `db:"role_id" json:"role_id"`
	Role         RoleName  `db:"role" json:"role"`
	Guest        bool      `db:"is_guest" json:"guest"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns "First Last", falling back to the email
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// OAuthIdentity links an external identity provider account to a user
type OAuthIdentity struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Provider  string    `db:"provider" json:"provider"`
	Subject   string    `db:"subject" json:"subject"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
