package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paperbark/journal/internal/auth/domain"
	"github.com/paperbark/journal/internal/auth/store"
	"github.com/paperbark/journal/internal/auth/store/drivers/sqlite"
	"github.com/paperbark/journal/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUser(username string) domain.User {
	return domain.User{
		ID:           idx.New().String(),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		Enabled:      true,
	}
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newUser("alice")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	t.Run("lookup by id and username", func(t *testing.T) {
		byID, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Username, byID.Username)
		require.Equal(t, domain.RoleUser, byID.Role)
		require.True(t, byID.Enabled)
		require.False(t, byID.CreatedAt.IsZero())

		byName, err := st.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, byName.ID)
	})

	t.Run("unknown user is ErrNotFound", func(t *testing.T) {
		_, err := st.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username is ErrAlreadyExists", func(t *testing.T) {
		dup := newUser("alice")
		require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("role and enabled updates", func(t *testing.T) {
		require.NoError(t, st.Users().UpdateRole(ctx, u.ID, domain.RoleAdmin))
		require.NoError(t, st.Users().SetEnabled(ctx, u.ID, false))

		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)
		require.False(t, got.Enabled)

		require.ErrorIs(t, st.Users().UpdateRole(ctx, "missing", domain.RoleUser), store.ErrNotFound)
	})

	t.Run("list users", func(t *testing.T) {
		require.NoError(t, st.Users().CreateUser(ctx, newUser("bob")))

		users, err := st.Users().ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
	})
}

func TestPreferencesRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newUser("alice")
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.NoError(t, st.Preferences().CreateDefaultPreferences(ctx, u.ID))

	t.Run("defaults to celsius", func(t *testing.T) {
		p, err := st.Preferences().GetPreferences(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.UnitCelsius, p.TemperatureUnit)
	})

	t.Run("duplicate default insert rejected", func(t *testing.T) {
		err := st.Preferences().CreateDefaultPreferences(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unit update", func(t *testing.T) {
		require.NoError(t, st.Preferences().UpdateTemperatureUnit(ctx, u.ID, domain.UnitFahrenheit))

		p, err := st.Preferences().GetPreferences(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, domain.UnitFahrenheit, p.TemperatureUnit)
	})

	t.Run("missing row is ErrNotFound", func(t *testing.T) {
		_, err := st.Preferences().GetPreferences(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	existing := newUser("alice")
	require.NoError(t, st.Users().CreateUser(ctx, existing))

	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, newUser("bob")); err != nil {
			return err
		}
		// Second leg collides on the username, forcing a rollback.
		return tx.Users().CreateUser(ctx, newUser("alice"))
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = st.Users().GetUserByUsername(ctx, "bob")
	require.ErrorIs(t, err, store.ErrNotFound, "first insert rolled back with the failed second one")
}

func TestWithTxCommit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newUser("alice")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.Preferences().CreateDefaultPreferences(ctx, u.ID)
	})
	require.NoError(t, err)

	_, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	_, err = st.Preferences().GetPreferences(ctx, u.ID)
	require.NoError(t, err)
}
