package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newClockedStore returns a store whose clock the test moves by hand
func newClockedStore() (*InMemoryIdempotencyStore, *time.Time) {
	now := time.Date(2024, 5, 17, 6, 0, 0, 0, time.UTC)
	store := NewInMemoryIdempotencyStore()
	store.now = func() time.Time { return now }
	return store, &now
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		store, _ := newClockedStore()
		isNew, err := store.MarkProcessed(ctx, "send-due:2024-05-17", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "send-due:2024-05-17", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "a second run on the same day is skipped")
	})

	t.Run("expired keys can be marked again", func(t *testing.T) {
		store, now := newClockedStore()
		_, err := store.MarkProcessed(ctx, "send-due:2024-05-18", time.Minute)
		require.NoError(t, err)
		*now = now.Add(time.Minute)

		isNew, err := store.MarkProcessed(ctx, "send-due:2024-05-18", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("released keys can be marked again", func(t *testing.T) {
		store, _ := newClockedStore()
		_, err := store.MarkProcessed(ctx, "send-due:2024-05-19", time.Hour)
		require.NoError(t, err)
		require.NoError(t, store.Release(ctx, "send-due:2024-05-19"))

		isNew, err := store.MarkProcessed(ctx, "send-due:2024-05-19", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_SweepsExpired(t *testing.T) {
	store, now := newClockedStore()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short-1", time.Second)
	_, _ = store.MarkProcessed(ctx, "short-2", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Len())

	*now = now.Add(time.Minute)
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	const workers = 50
	results := make(chan bool, workers)
	for range workers {
		go func() {
			isNew, err := store.MarkProcessed(context.Background(), "send-due:today", time.Hour)
			results <- err == nil && isNew
		}()
	}

	winners := 0
	for range workers {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one caller marks the key")
}
