package models

import "time"

type Profile struct {
	ProfileID string    `json:"profile_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // "staff", "admin", "viewer"
	Plan      string    `json:"plan"` // "free", "premium"
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	PaymentID string    `json:"payment_id"`
	ProfileID string    `json:"profile_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
