package domain

import "time"

// Identity is the decoded session of the caller.
type Identity struct {
	Email     string
	Name      string
	TokenID   string
	ExpiresAt time.Time
}
