package entity

import (
	"time"
)

// User is the aggregate root for the credential domain.
// PasswordHash holds a bcrypt hash and must never leave the service boundary.
// Profile fields are optional; nil means the user never set them.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         *string
	AgeGroup     *string
	Language     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
