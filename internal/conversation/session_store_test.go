package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedStore(ttl time.Duration) (*MemorySessionStore, *time.Time) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(ttl)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestMemorySessionStore_PutGetDelete(t *testing.T) {
	store, _ := newClockedStore(time.Minute)

	_, ok := store.Get(user)
	assert.False(t, ok)

	store.Put(user, NewAppointmentSession())
	session, ok := store.Get(user)
	require.True(t, ok)
	assert.Equal(t, KindAppointment, session.Kind)
	assert.False(t, session.UpdatedAt.IsZero())

	store.Delete(user)
	_, ok = store.Get(user)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStore_ExpiresIdleSessions(t *testing.T) {
	store, now := newClockedStore(10 * time.Minute)
	store.Put(user, NewAssistantSession())

	*now = now.Add(9 * time.Minute)
	_, ok := store.Get(user)
	assert.True(t, ok)

	*now = now.Add(2 * time.Minute)
	_, ok = store.Get(user)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemorySessionStore_PutRefreshesTTL(t *testing.T) {
	store, now := newClockedStore(10 * time.Minute)
	store.Put(user, NewAppointmentSession())

	*now = now.Add(8 * time.Minute)
	session, ok := store.Get(user)
	require.True(t, ok)
	session.Step = StepPetName
	store.Put(user, session)

	*now = now.Add(8 * time.Minute)
	session, ok = store.Get(user)
	require.True(t, ok)
	assert.Equal(t, StepPetName, session.Step)
}

func TestMemorySessionStore_Sweep(t *testing.T) {
	store, now := newClockedStore(time.Minute)
	store.Put(user, NewAppointmentSession())
	*now = now.Add(30 * time.Second)
	store.Put(otherUser, NewAssistantSession())

	*now = now.Add(45 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get(otherUser)
	assert.True(t, ok)
}

func TestMemorySessionStore_ZeroTTLNeverExpires(t *testing.T) {
	store, now := newClockedStore(0)
	store.Put(user, NewAppointmentSession())
	*now = now.Add(365 * 24 * time.Hour)

	assert.Equal(t, 0, store.Sweep())
	_, ok := store.Get(user)
	assert.True(t, ok)
}

func TestMemorySessionStore_RunJanitorStopsWithContext(t *testing.T) {
	store := NewMemorySessionStore(time.Millisecond)
	store.Put(user, NewAppointmentSession())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, time.Millisecond, nil)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
