package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := &Session{ID: "s1", UserID: "u1", Role: "employee", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)

	// modificar la copia no altera lo guardado
	got.Acceptance = &Acceptance{ID: "a1", ProductID: "p1"}
	again, _ := store.Get(ctx, "s1")
	assert.Nil(t, again.Acceptance)

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Expired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &Session{ID: "s1", ExpiresAt: now.Add(-time.Minute)}))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSession_AcceptanceFor(t *testing.T) {
	s := &Session{Acceptance: &Acceptance{ID: "a1", ProductID: "p1"}}
	acc, ok := s.AcceptanceFor("p1")
	assert.True(t, ok)
	assert.Equal(t, "a1", acc.ID)

	_, ok = s.AcceptanceFor("p2")
	assert.False(t, ok)

	var empty *Session
	_, ok = empty.AcceptanceFor("p1")
	assert.False(t, ok)

	// un aceite consumido sigue resolviendo para detectar reenvíos
	assert.False(t, s.Acceptance.Consumed())
	s.Acceptance.OrderID = "o1"
	acc, ok = s.AcceptanceFor("p1")
	assert.True(t, ok)
	assert.True(t, acc.Consumed())
}

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	ok, err := g.Acquire(ctx, "sign:a1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Acquire(ctx, "sign:a1", time.Minute)
	assert.False(t, ok, "segundo envío mientras el primero está en curso")

	require.NoError(t, g.Release(ctx, "sign:a1"))
	ok, _ = g.Acquire(ctx, "sign:a1", time.Minute)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = g.Acquire(ctx, "sign:a1", time.Minute)
	assert.True(t, ok, "la clave expira por ttl")
}
