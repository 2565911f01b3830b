package domain

import (
	"errors"
	"time"
)

// User is the owner of a ledger. Every account, transaction and stock
// position is scoped to exactly one user.
type User struct {
	ID             string
	Email          string
	Name           string
	HashedPassword string
	Seeded         bool
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Authentication errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user with this email already exists")
	ErrUserInactive  = errors.New("user account is inactive")
)
