package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ledgerly/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStoreContract runs the behaviour every backend must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("add then read back", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		sub := models.NewSubscriber("a@b.com", time.Now())

		created, err := store.Add(ctx, sub)
		require.NoError(t, err)
		assert.True(t, created)

		exists, err := store.Exists(ctx, "a@b.com")
		require.NoError(t, err)
		assert.True(t, exists)

		all, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, sub, all[0])
	})

	t.Run("duplicate is not created", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.Add(ctx, models.NewSubscriber("dup@example.com", time.Now()))
		require.NoError(t, err)
		require.True(t, created)

		created, err = store.Add(ctx, models.NewSubscriber("dup@example.com", time.Now().Add(time.Hour)))
		require.NoError(t, err)
		assert.False(t, created)

		all, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("email match is exact", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Add(ctx, models.NewSubscriber("case@example.com", time.Now()))
		require.NoError(t, err)

		exists, err := store.Exists(ctx, "Case@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = store.Exists(ctx, "missing@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)

		all, err := store.All(context.Background())
		require.NoError(t, err)
		assert.Empty(t, all)
		assert.NoError(t, store.Ping(context.Background()))
	})

	t.Run("concurrent signups for one email create one record", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const workers = 16
		var wg sync.WaitGroup
		results := make(chan bool, workers)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := store.Add(ctx, models.NewSubscriber("race@example.com", time.Now()))
				assert.NoError(t, err)
				results <- created
			}()
		}
		wg.Wait()
		close(results)

		createdCount := 0
		for created := range results {
			if created {
				createdCount++
			}
		}
		assert.Equal(t, 1, createdCount)

		all, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("concurrent signups for distinct emails are all kept", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const workers = 12
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := store.Add(ctx, models.NewSubscriber(fmt.Sprintf("user%d@example.com", i), time.Now()))
				assert.NoError(t, err)
				assert.True(t, created)
			}()
		}
		wg.Wait()

		all, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, workers)
	})
}
