package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresProcessedStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := newPostgresProcessedStore(mock, time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	cutoff := now.Add(-time.Hour)

	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs("whatsapp", "wamid.new", now, cutoff).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	ok, err := store.MarkProcessed(ctx, "whatsapp", "wamid.new")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs("whatsapp", "wamid.new", now, cutoff).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	ok, err = store.MarkProcessed(ctx, "whatsapp", "wamid.new")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs("whatsapp", "wamid.err", now, cutoff).
		WillReturnError(errors.New("db down"))
	_, err = store.MarkProcessed(ctx, "whatsapp", "wamid.err")
	require.Error(t, err)
	assert.ErrorContains(t, err, "db down")

	mock.ExpectExec("DELETE FROM processed_events").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	pruned, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProcessedStore_NoTTLKeepsClaims(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := newPostgresProcessedStore(mock, 0)
	store.now = func() time.Time { return now }

	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs("whatsapp", "wamid.1", now, time.Time{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	ok, err := store.MarkProcessed(context.Background(), "whatsapp", "wamid.1")
	require.NoError(t, err)
	assert.False(t, ok)

	pruned, err := store.Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pruned)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProcessedStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisProcessedStore(client, time.Hour)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "whatsapp", "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "whatsapp", "wamid.1")
	require.NoError(t, err)
	assert.False(t, again)

	assert.Equal(t, time.Hour, mr.TTL(processedKeyPrefix+"whatsapp:wamid.1"))

	mr.FastForward(2 * time.Hour)
	expired, err := store.MarkProcessed(ctx, "whatsapp", "wamid.1")
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestRedisProcessedStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, err := NewRedisProcessedStore(client, 0).MarkProcessed(context.Background(), "whatsapp", "wamid.1")
	assert.Error(t, err)
}

func TestMemoryProcessedStore(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := NewMemoryProcessedStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := store.MarkProcessed(ctx, "whatsapp", "a")
	assert.True(t, ok)
	ok, _ = store.MarkProcessed(ctx, "whatsapp", "a")
	assert.False(t, ok)
	ok, _ = store.MarkProcessed(ctx, "other", "a")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.MarkProcessed(ctx, "whatsapp", "a")
	assert.True(t, ok)
}

func TestMemoryProcessedStore_SweepRemovesOnlyExpired(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := NewMemoryProcessedStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "whatsapp", "old")
	now = now.Add(90 * time.Second)
	_, _ = store.MarkProcessed(ctx, "whatsapp", "fresh")

	// Marking does not scan the map; the expired id stays until swept.
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	ok, _ := store.MarkProcessed(ctx, "whatsapp", "fresh")
	assert.False(t, ok)
}

func TestMemoryProcessedStore_RunJanitorStopsOnCancel(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	store := NewMemoryProcessedStore(time.Minute)
	store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	_, _ = store.MarkProcessed(context.Background(), "whatsapp", "a")
	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, 5*time.Millisecond, nil)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
