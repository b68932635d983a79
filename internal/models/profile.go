package models

import "time"

// Profile roles
const (
	RoleAdmin    = "Admin"
	RoleUser     = "User"
	RoleReadOnly = "Read-Only"
)

const (
	ProfileFieldMaxLen = 50
)

type ActorProfile struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleReadOnly:
		return true
	}
	return false
}
