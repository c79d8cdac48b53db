package models

import "time"

// User is purchasing principal
type User struct {
	ID           uint64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}

// TokenPayload is authorization token payload
type TokenPayload struct {
	UserID uint64
}
