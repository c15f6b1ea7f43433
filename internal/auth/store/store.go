// Package store defines the data access interface the auth service depends
// on. Concrete drivers (sqlite for production, memory for tests) implement
// Store; the session service only ever sees these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/paperbark/journal/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, exposing sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Users() Users
	Preferences() Preferences

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed. Registration uses this
	// so a user row never exists without its preferences row.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Users() Users
	Preferences() Preferences
}

type Users interface {
	// GetUserByID returns a user by primary key.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// SetEnabled flips the account switch and bumps updated_at.
	SetEnabled(ctx context.Context, userID string, enabled bool) error

	// UpdateRole changes the account role and bumps updated_at.
	UpdateRole(ctx context.Context, userID string, role domain.Role) error

	// ListUsers returns all users ordered by creation (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Preferences interface {
	// CreateDefaultPreferences inserts the default preferences row for a
	// freshly registered user.
	CreateDefaultPreferences(ctx context.Context, userID string) error

	// GetPreferences returns the preferences for a user.
	GetPreferences(ctx context.Context, userID string) (domain.Preferences, error)

	// UpdateTemperatureUnit changes the display unit and bumps updated_at.
	UpdateTemperatureUnit(ctx context.Context, userID string, unit domain.TemperatureUnit) error
}
