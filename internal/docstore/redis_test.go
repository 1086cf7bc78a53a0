package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Count     int       `json:"count"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
}

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil), mr
}

func TestRedisStore_SetGetDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in := note{ID: "n1", Owner: "ana", Count: 2}
	require.NoError(t, s.Set(ctx, "notes", "n1", in))

	var out note
	require.NoError(t, s.Get(ctx, "notes", "n1", &out))
	assert.Equal(t, in.Owner, out.Owner)
	assert.Equal(t, 2, out.Count)

	require.NoError(t, s.Delete(ctx, "notes", "n1"))
	assert.ErrorIs(t, s.Get(ctx, "notes", "n1", &out), ErrNotFound)

	all, err := s.Find(ctx, "notes", Query{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStore_Update(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	err := s.Update(ctx, "notes", "missing", map[string]any{"count": 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "notes", "n1", note{ID: "n1", Owner: "ana", Count: 1}))
	require.NoError(t, s.Update(ctx, "notes", "n1", map[string]any{"count": 7, "pinned": true}))

	var out note
	require.NoError(t, s.Get(ctx, "notes", "n1", &out))
	assert.Equal(t, "ana", out.Owner)
	assert.Equal(t, 7, out.Count)
	assert.True(t, out.Pinned)
}

func TestRedisStore_FindFiltersOrdersAndLimits(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	docs := []note{
		{ID: "a", Owner: "ana", Count: 3, CreatedAt: base},
		{ID: "b", Owner: "ben", Count: 1, CreatedAt: base.Add(time.Hour)},
		{ID: "c", Owner: "ana", Count: 2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Owner: "ana", Count: 5, CreatedAt: base.Add(90 * time.Minute)},
	}
	for _, d := range docs {
		require.NoError(t, s.Set(ctx, "notes", d.ID, d))
	}

	got, err := FindAs[note](ctx, s, "notes", Query{
		Filters:    []Filter{{Field: "owner", Value: "ana"}},
		OrderBy:    "createdAt",
		Descending: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "d", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})

	got, err = FindAs[note](ctx, s, "notes", Query{OrderBy: "count", Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	got, err = FindAs[note](ctx, s, "notes", Query{Filters: []Filter{{Field: "count", Value: 5}}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d", got[0].ID)
}

func TestRedisStore_RunTransaction(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	incr := func(current json.RawMessage) (any, error) {
		var n note
		if _, err := Decode(current, &n); err != nil {
			return nil, err
		}
		n.ID = "counter"
		n.Count++
		return n, nil
	}

	require.NoError(t, s.RunTransaction(ctx, "notes", "counter", incr))
	require.NoError(t, s.RunTransaction(ctx, "notes", "counter", incr))

	var out note
	require.NoError(t, s.Get(ctx, "notes", "counter", &out))
	assert.Equal(t, 2, out.Count)

	boom := errors.New("boom")
	err := s.RunTransaction(ctx, "notes", "counter", func(json.RawMessage) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	// nil next leaves the document untouched
	require.NoError(t, s.RunTransaction(ctx, "notes", "counter", func(json.RawMessage) (any, error) { return nil, nil }))
	require.NoError(t, s.Get(ctx, "notes", "counter", &out))
	assert.Equal(t, 2, out.Count)
}

func TestRedisStore_RunTransactionConcurrent(t *testing.T) {
	s, _ := newTestStore(t)
	s.WithMaxTxAttempts(100)
	ctx := context.Background()

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunTransaction(ctx, "notes", "counter", func(current json.RawMessage) (any, error) {
				var n note
				if _, err := Decode(current, &n); err != nil {
					return nil, err
				}
				n.Count++
				return n, nil
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	var out note
	require.NoError(t, s.Get(ctx, "notes", "counter", &out))
	assert.Equal(t, succeeded, out.Count, "every committed increment must be visible exactly once")
}

func TestRedisStore_Commit(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, NewBatch()))
	assert.Empty(t, mr.Keys())

	require.NoError(t, s.Set(ctx, "notes", "old", note{ID: "old"}))
	b := NewBatch().
		Set("notes", "x", note{ID: "x", Count: 1}).
		Set("notes", "y", note{ID: "y", Count: 2}).
		Delete("notes", "old")
	assert.Equal(t, 3, b.Len())
	require.NoError(t, s.Commit(ctx, b))

	got, err := FindAs[note](ctx, s, "notes", Query{OrderBy: "count"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "y", got[1].ID)
}

func TestRedisStore_ErrorsWhenServerDown(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	err := s.Set(context.Background(), "notes", "n1", note{ID: "n1"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
