package domain

import "time"

// User represents a registered account. ID is the opaque identifier owned
// resources reference.
type User struct {
	ID           string
	Email        string
	UserName     string
	PasswordHash []byte
	LastLoginAt  *time.Time
	Timestamps
}
