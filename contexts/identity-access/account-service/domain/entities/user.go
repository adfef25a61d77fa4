package entities

import (
	"time"

	"lyceum/internal/shared/gate"
)

type User struct {
	UserID       string
	Email        string
	Name         string
	Bio          string
	PasswordHash string
	Role         gate.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal is the gate view of the user.
func (u User) Principal() gate.Principal {
	return gate.Principal{ID: u.UserID, Role: u.Role}
}
