package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns API keys and a credit balance. One credit
// is reserved per submitted job; the reserve is a single conditional
// decrement so concurrent submissions cannot overspend.
type User struct {
	ID               uuid.UUID `db:"id"                json:"id"`
	Email            string    `db:"email"             json:"email"`
	CreditsRemaining int       `db:"credits_remaining" json:"credits_remaining"`
	CreditsTotal     int       `db:"credits_total"     json:"credits_total"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"        json:"updated_at"`
}
