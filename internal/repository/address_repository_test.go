package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddress(userID uuid.UUID, name string, isDefault bool) *model.Address {
	return &model.Address{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		AddressLine: "12 Market Road",
		City:        "Pune",
		State:       "MH",
		Zip:         "411001",
		Phone:       "9876543210",
		IsDefault:   isDefault,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestAddressRepository_Lifecycle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, pool, "addr@example.com", 0)

	has, err := repo.HasAny(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, has)

	home := newAddress(user.ID, "Home", true)
	work := newAddress(user.ID, "Work", false)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, home))
	require.NoError(t, repo.Create(ctx, tx, work))
	count, err := repo.CountByUser(ctx, tx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, tx.Commit(ctx))

	has, err = repo.HasAny(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, has)

	list, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, home.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)

	t.Run("switch default", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.ClearDefault(ctx, tx, user.ID))
		ok, err := repo.MarkDefault(ctx, tx, user.ID, work.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, tx.Commit(ctx))

		list, err := repo.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, work.ID, list[0].ID)
		assert.False(t, list[1].IsDefault)
	})

	t.Run("cannot touch another user's address", func(t *testing.T) {
		other := seedUser(t, pool, "other@example.com", 0)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		ok, err := repo.MarkDefault(ctx, tx, other.ID, home.ID)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, tx.Rollback(ctx))

		deleted, err := repo.Delete(ctx, other.ID, home.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, user.ID, home.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		list, err := repo.ListByUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestAddressRepository_SingleDefaultEnforced(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, pool, "twodefaults@example.com", 0)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.Create(ctx, tx, newAddress(user.ID, "A", true)))
	err = repo.Create(ctx, tx, newAddress(user.ID, "B", true))

	require.Error(t, err)
	assert.True(t, isPgError(err, pgUniqueViolation))
}

func TestAddressRepository_LockOwner(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAddressRepository(pool, zerolog.Nop())
	ctx := context.Background()
	user := seedUser(t, pool, "locked@example.com", 0)

	t.Run("unknown user", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		found, err := repo.LockOwner(ctx, tx, uuid.New())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("second holder waits for the first", func(t *testing.T) {
		first, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		found, err := repo.LockOwner(ctx, first, user.ID)
		require.NoError(t, err)
		require.True(t, found)

		second, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer second.Rollback(ctx)

		acquired := make(chan error, 1)
		go func() {
			_, err := repo.LockOwner(ctx, second, user.ID)
			acquired <- err
		}()

		select {
		case <-acquired:
			t.Fatal("second transaction took the lock while the first held it")
		case <-time.After(300 * time.Millisecond):
		}

		require.NoError(t, first.Commit(ctx))

		select {
		case err := <-acquired:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("second transaction never took the lock")
		}
	})
}
