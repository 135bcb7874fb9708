package domain

import "time"

// User is an account holder. Identity and credentials live outside the
// ledger core; the core only ever sees user IDs.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
