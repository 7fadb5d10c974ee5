package repository_test

import (
	"sync"
	"testing"

	"github.com/aaravmahajanofficial/cart-service/internal/models"
	repository "github.com/aaravmahajanofficial/cart-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := t.Context()

	t.Run("Create and find by owner", func(t *testing.T) {
		// Arrange
		repo := repository.NewMemoryStore().Carts()

		// Act
		cart, err := repo.Create(ctx, models.OwnerKindGuest, "guest-1")

		// Assert
		require.NoError(t, err)
		found, err := repo.FindByGuestID(ctx, "guest-1")
		require.NoError(t, err)
		assert.Equal(t, cart.ID, found.ID)

		_, err = repo.FindByOwnerID(ctx, "guest-1")
		assert.ErrorIs(t, err, repository.ErrCartNotFound, "guest carts must not match registered lookups")
	})

	t.Run("Returned carts are copies", func(t *testing.T) {
		// Arrange
		repo := repository.NewMemoryStore().Carts()
		cart, err := repo.Create(ctx, models.OwnerKindRegistered, "user-1")
		require.NoError(t, err)

		// Act
		cart.Items = append(cart.Items, models.CartItem{ProductID: "p1", Quantity: 1})

		// Assert
		stored, err := repo.FindByID(ctx, cart.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Items)
	})

	t.Run("Update enforces the version", func(t *testing.T) {
		// Arrange
		repo := repository.NewMemoryStore().Carts()
		cart, err := repo.Create(ctx, models.OwnerKindRegistered, "user-1")
		require.NoError(t, err)
		cart.Items = []models.CartItem{{ProductID: "p1", Quantity: 1, Price: 2, Name: "Pencil"}}

		// Act
		updated, err := repo.Update(ctx, cart)
		require.NoError(t, err)
		_, staleErr := repo.Update(ctx, cart)

		// Assert
		assert.Equal(t, int64(1), updated.Version)
		assert.ErrorIs(t, staleErr, repository.ErrVersionConflict)
	})

	t.Run("Concurrent updates from the same version", func(t *testing.T) {
		// Arrange
		repo := repository.NewMemoryStore().Carts()
		cart, err := repo.Create(ctx, models.OwnerKindRegistered, "user-1")
		require.NoError(t, err)

		const writers = 10
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)

		// Act
		for range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.Update(ctx, cart.Clone()); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		// Assert
		assert.Equal(t, 1, successes)
	})

	t.Run("Delete frees the owner slot", func(t *testing.T) {
		// Arrange
		repo := repository.NewMemoryStore().Carts()
		cart, err := repo.Create(ctx, models.OwnerKindGuest, "guest-1")
		require.NoError(t, err)

		// Act
		require.NoError(t, repo.Delete(ctx, cart.ID))
		require.NoError(t, repo.Delete(ctx, cart.ID))

		// Assert
		_, err = repo.FindByID(ctx, cart.ID)
		assert.ErrorIs(t, err, repository.ErrCartNotFound)

		_, err = repo.Create(ctx, models.OwnerKindGuest, "guest-1")
		assert.NoError(t, err)
	})

	t.Run("Guest sessions", func(t *testing.T) {
		// Arrange
		store := repository.NewMemoryStore()
		sessions := store.Sessions()

		// Act
		require.NoError(t, sessions.Touch(ctx, "guest-1"))
		require.NoError(t, sessions.Touch(ctx, "guest-1"))

		// Assert
		assert.True(t, store.HasSession("guest-1"))
		require.NoError(t, sessions.DeleteBySessionID(ctx, "guest-1"))
		assert.False(t, store.HasSession("guest-1"))
		assert.NoError(t, sessions.DeleteBySessionID(ctx, "guest-1"))
	})
}
