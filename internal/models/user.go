package models

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User is resolved from the identity provider (Casdoor); it is never
// persisted locally. Only the fields the leaderboard and export need are
// mapped.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        UserRole  `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
