package models

import "time"

const (
	EventSignup = "signup"
	EventLogin  = "login"
)

// AuthEvent is one successful signup or login, kept so a user can review
// where their account has been used.
type AuthEvent struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}
