// Package memory is an in-memory store driver. It backs the service and
// handler tests and is handy for demos; production uses the sqlite driver.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paperbark/journal/internal/auth/domain"
	"github.com/paperbark/journal/internal/auth/store"
)

// Store is a thread-safe in-memory implementation of store.Store.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User        // keyed by id
	usernames   map[string]string             // username -> id
	preferences map[string]domain.Preferences // keyed by user id
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		usernames:   make(map[string]string),
		preferences: make(map[string]domain.Preferences),
	}
}

func (s *Store) Users() store.Users             { return &usersRepo{s: s} }
func (s *Store) Preferences() store.Preferences { return &preferencesRepo{s: s} }

func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// WithTx takes a snapshot of all tables and restores it when fn fails, so
// multi-step operations stay atomic the way the sqlite driver's transactions
// are. Fine for tests; contention is a non-issue at that scale.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	users := cloneMap(s.users)
	usernames := cloneMap(s.usernames)
	preferences := cloneMap(s.preferences)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users = users
		s.usernames = usernames
		s.preferences = preferences
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type usersRepo struct {
	s *Store
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usernames[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return r.s.users[id], nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.usernames[u.Username]; taken {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users[u.ID] = u
	r.s.usernames[u.Username] = u.ID
	return nil
}

func (r *usersRepo) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.mutate(userID, func(u *domain.User) {
		u.Enabled = enabled
	})
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	return r.mutate(userID, func(u *domain.User) {
		u.Role = role
	})
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	// Newest first, matching the sqlite driver's ordering.
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return users, nil
}

func (r *usersRepo) mutate(userID string, fn func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

type preferencesRepo struct {
	s *Store
}

func (r *preferencesRepo) CreateDefaultPreferences(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.preferences[userID]; exists {
		return store.ErrAlreadyExists
	}

	now := time.Now().UTC()
	r.s.preferences[userID] = domain.Preferences{
		UserID:          userID,
		TemperatureUnit: domain.UnitCelsius,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return nil
}

func (r *preferencesRepo) GetPreferences(ctx context.Context, userID string) (domain.Preferences, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.preferences[userID]
	if !ok {
		return domain.Preferences{}, store.ErrNotFound
	}
	return p, nil
}

func (r *preferencesRepo) UpdateTemperatureUnit(ctx context.Context, userID string, unit domain.TemperatureUnit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.preferences[userID]
	if !ok {
		return store.ErrNotFound
	}
	p.TemperatureUnit = unit
	p.UpdatedAt = time.Now().UTC()
	r.s.preferences[userID] = p
	return nil
}
