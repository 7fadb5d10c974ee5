package repository_test

import (
	"errors"
	"testing"

	"github.com/aaravmahajanofficial/cart-service/internal/models"
	repository "github.com/aaravmahajanofficial/cart-service/internal/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCartRepoTest(t *testing.T) (repository.CartRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		client.Close()
	})

	return repository.NewRedisCartRepo(client), mr
}

func TestRedisCartRepository(t *testing.T) {
	ctx := t.Context()

	t.Run("Create indexes the cart by owner", func(t *testing.T) {
		// Arrange
		repo, mr := setupRedisCartRepoTest(t)

		// Act
		cart, err := repo.Create(ctx, models.OwnerKindRegistered, "user-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "user-1", cart.OwnerID)
		assert.Zero(t, cart.Version)
		assert.True(t, mr.Exists("cart:"+cart.ID))

		indexed, err := mr.Get("cart:owner:registered:user-1")
		require.NoError(t, err)
		assert.Equal(t, cart.ID, indexed)

		found, err := repo.FindByOwnerID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, cart.ID, found.ID)
		assert.NotNil(t, found.Items)
	})

	t.Run("Create twice for the same owner", func(t *testing.T) {
		// Arrange
		repo, mr := setupRedisCartRepoTest(t)
		_, err := repo.Create(ctx, models.OwnerKindGuest, "guest-1")
		require.NoError(t, err)

		// Act
		cart, err := repo.Create(ctx, models.OwnerKindGuest, "guest-1")

		// Assert
		assert.Nil(t, cart)
		assert.ErrorIs(t, err, repository.ErrCartExists)
		assert.Len(t, mr.Keys(), 2, "only the winning cart and its index remain")
	})

	t.Run("Dangling owner index is released", func(t *testing.T) {
		// Arrange
		repo, mr := setupRedisCartRepoTest(t)
		require.NoError(t, mr.Set("cart:owner:registered:alice", "ghost-id"))

		// Act
		found, findErr := repo.FindByOwnerID(ctx, "alice")
		created, createErr := repo.Create(ctx, models.OwnerKindRegistered, "alice")

		// Assert
		assert.Nil(t, found)
		assert.ErrorIs(t, findErr, repository.ErrCartNotFound)
		require.NoError(t, createErr)

		indexed, err := mr.Get("cart:owner:registered:alice")
		require.NoError(t, err)
		assert.Equal(t, created.ID, indexed)

		again, err := repo.FindByOwnerID(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, created.ID, again.ID)
	})

	t.Run("Owner kinds do not collide", func(t *testing.T) {
		// Arrange
		repo, _ := setupRedisCartRepoTest(t)
		guestCart, err := repo.Create(ctx, models.OwnerKindGuest, "same-id")
		require.NoError(t, err)

		// Act
		userCart, err := repo.Create(ctx, models.OwnerKindRegistered, "same-id")

		// Assert
		require.NoError(t, err)
		assert.NotEqual(t, guestCart.ID, userCart.ID)

		_, err = repo.FindByGuestID(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrCartNotFound)
	})

	t.Run("FindByID missing", func(t *testing.T) {
		// Arrange
		repo, _ := setupRedisCartRepoTest(t)

		// Act
		cart, err := repo.FindByID(ctx, "missing")

		// Assert
		assert.Nil(t, cart)
		assert.ErrorIs(t, err, repository.ErrCartNotFound)
	})

	t.Run("Update with current version", func(t *testing.T) {
		// Arrange
		repo, _ := setupRedisCartRepoTest(t)
		cart, err := repo.Create(ctx, models.OwnerKindGuest, "guest-1")
		require.NoError(t, err)

		cart.Items = append(cart.Items, models.CartItem{ProductID: "p1", Quantity: 2, Price: 3.5, Name: "Tea"})

		// Act
		updated, err := repo.Update(ctx, cart)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.Version)
		assert.Equal(t, cart.Items, updated.Items)

		stored, err := repo.FindByID(ctx, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Version)
		assert.Len(t, stored.Items, 1)
		assert.Equal(t, "guest-1", stored.GuestID)
	})

	t.Run("Update with stale version", func(t *testing.T) {
		// Arrange
		repo, _ := setupRedisCartRepoTest(t)
		cart, err := repo.Create(ctx, models.OwnerKindGuest, "guest-1")
		require.NoError(t, err)

		_, err = repo.Update(ctx, cart)
		require.NoError(t, err)

		// Act
		updated, err := repo.Update(ctx, cart)

		// Assert
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, repository.ErrVersionConflict)
	})

	t.Run("Update missing cart", func(t *testing.T) {
		// Arrange
		repo, _ := setupRedisCartRepoTest(t)

		// Act
		updated, err := repo.Update(ctx, &models.Cart{ID: "missing"})

		// Assert
		assert.Nil(t, updated)
		assert.ErrorIs(t, err, repository.ErrCartNotFound)
	})

	t.Run("Delete removes cart and owner index", func(t *testing.T) {
		// Arrange
		repo, mr := setupRedisCartRepoTest(t)
		cart, err := repo.Create(ctx, models.OwnerKindRegistered, "user-1")
		require.NoError(t, err)

		// Act
		err = repo.Delete(ctx, cart.ID)

		// Assert
		require.NoError(t, err)
		assert.False(t, mr.Exists("cart:"+cart.ID))
		assert.False(t, mr.Exists("cart:owner:registered:user-1"))

		_, err = repo.FindByOwnerID(ctx, "user-1")
		assert.ErrorIs(t, err, repository.ErrCartNotFound)

		assert.NoError(t, repo.Delete(ctx, cart.ID), "deleting twice should succeed")
	})

	t.Run("Connection failure", func(t *testing.T) {
		// Arrange
		repo, mr := setupRedisCartRepoTest(t)
		mr.Close()

		// Act
		cart, err := repo.FindByID(ctx, "cart-1")

		// Assert
		require.Error(t, err)
		assert.Nil(t, cart)
		assert.NotErrorIs(t, err, repository.ErrCartNotFound)
	})
}

func TestRedisGuestSessionRepository(t *testing.T) {
	ctx := t.Context()

	t.Run("Touch keeps the first created_at", func(t *testing.T) {
		// Arrange
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		repo := repository.NewRedisGuestSessionRepo(client)

		require.NoError(t, repo.Touch(ctx, "guest-1"))
		created := mr.HGet("guest_session:guest-1", "created_at")
		require.NotEmpty(t, created)

		// Act
		err := repo.Touch(ctx, "guest-1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, created, mr.HGet("guest_session:guest-1", "created_at"))
		assert.NotEmpty(t, mr.HGet("guest_session:guest-1", "updated_at"))
	})

	t.Run("DeleteBySessionID", func(t *testing.T) {
		// Arrange
		client, mock := redismock.NewClientMock()
		repo := repository.NewRedisGuestSessionRepo(client)
		mock.ExpectDel("guest_session:guest-1").SetVal(1)

		// Act
		err := repo.DeleteBySessionID(ctx, "guest-1")

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DeleteBySessionID failure", func(t *testing.T) {
		// Arrange
		client, mock := redismock.NewClientMock()
		repo := repository.NewRedisGuestSessionRepo(client)
		mock.ExpectDel("guest_session:guest-1").SetErr(errors.New("redis unavailable"))

		// Act
		err := repo.DeleteBySessionID(ctx, "guest-1")

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete guest session")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
