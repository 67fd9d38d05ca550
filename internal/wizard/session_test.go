package wizard

import (
	"testing"
	"time"

	"barberbook/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore(time.Minute, logger.Discard())
	defer store.Stop()

	wiz := New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard())
	session := store.Create(wiz)

	require.NotEmpty(t, session.ID)

	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, wiz, got.Wizard)

	_, ok = store.Get("no-such-session")
	assert.False(t, ok)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(time.Minute, logger.Discard())
	defer store.Stop()

	session := store.Create(New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard()))
	store.Delete(session.ID)

	_, ok := store.Get(session.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	store := NewSessionStore(30*time.Millisecond, logger.Discard())
	defer store.Stop()

	session := store.Create(New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard()))

	time.Sleep(60 * time.Millisecond)

	_, ok := store.Get(session.ID)
	assert.False(t, ok, "expired session must not be returned")
}

func TestSessionStore_GetRefreshesIdleTimer(t *testing.T) {
	store := NewSessionStore(50*time.Millisecond, logger.Discard())
	defer store.Stop()

	session := store.Create(New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard()))

	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		if _, ok := store.Get(session.ID); !ok {
			t.Fatal("active session expired despite being touched")
		}
	}
}
