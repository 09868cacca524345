package models

import "time"

// User is the account that owns meters and transactions. Writes go through
// auth-service; this service only reads users.
type User struct {
	ID          int64     `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	FullName    string    `db:"full_name" json:"full_name"`
	Role        string    `db:"role" json:"role"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
