package domain

import "time"

// User is an operator who can be assigned tickets. Identity management is
// owned elsewhere; this service only reads users for assignment checks.
type User struct {
	ID        string
	Name      string
	Email     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
