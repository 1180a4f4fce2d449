// ABOUTME: Tests for the per-id session store
package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *SessionStore {
	return NewSessionStore(func(id string) (*Session, error) {
		return NewSession(newKeywordEmbedder(skyVocab...), &lockedGenerator{},
			WithSessionID(id), WithChunking(20, 0), WithLogger(quietLogger()))
	})
}

func TestSessionStore_GetOrCreate(t *testing.T) {
	store := newTestStore()

	a, err := store.GetOrCreate("alice")
	require.NoError(t, err)
	again, err := store.GetOrCreate("alice")
	require.NoError(t, err)
	assert.Same(t, a, again)

	b, err := store.GetOrCreate("bob")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, []string{"alice", "bob"}, store.IDs())
}

func TestSessionStore_Isolation(t *testing.T) {
	store := newTestStore()
	a, _ := store.GetOrCreate("alice")
	b, _ := store.GetOrCreate("bob")

	_, err := a.Process(context.Background(), skyCorpus())
	require.NoError(t, err)
	_, err = a.Ask(context.Background(), "sky?")
	require.NoError(t, err)

	assert.Equal(t, StateReady, a.State())
	assert.Equal(t, StateUnindexed, b.State())
	assert.Empty(t, b.History())
}

func TestSessionStore_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	store := NewSessionStore(func(string) (*Session, error) { return nil, boom })

	_, err := store.GetOrCreate("x")
	assert.ErrorIs(t, err, boom)
	_, ok := store.Get("x")
	assert.False(t, ok)
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestStore()
	_, err := store.GetOrCreate("alice")
	require.NoError(t, err)

	assert.True(t, store.Delete("alice"))
	assert.False(t, store.Delete("alice"))
	_, ok := store.Get("alice")
	assert.False(t, ok)
	assert.Empty(t, store.IDs())
}

func TestSessionStore_ConcurrentCreate(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	got := make([]*Session, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = store.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
}
