package domain

import "time"

type User struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string // argon2id encoded, never the raw password
	Role         Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
