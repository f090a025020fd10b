package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

type params struct {
	Q    string `json:"q"`
	Page int    `json:"page"`
}

func TestKeyIsDeterministic(t *testing.T) {
	a := Key("aliments", params{Q: "riz", Page: 2})
	b := Key("aliments", params{Q: "riz", Page: 2})
	c := Key("aliments", params{Q: "riz", Page: 3})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "aliments|", Key("aliments", nil))
}

func TestFetchMissRunsLoaderAndCaches(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := context.Background()

	var calls int32
	loader := func(context.Context) (page, error) {
		atomic.AddInt32(&calls, 1)
		return page{Items: []string{"riz"}, Total: 1}, nil
	}

	got, err := Fetch(ctx, c, "aliments", params{Q: "riz"}, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)

	// Second read within the freshness window is served from cache.
	got, err = Fetch(ctx, c, "aliments", params{Q: "riz"}, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"riz"}, got.Items)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchLoaderErrorPropagates(t *testing.T) {
	c := New(NewMemoryStore())

	boom := errors.New("backend down")
	_, err := Fetch(context.Background(), c, "aliments", nil, func(context.Context) (page, error) {
		return page{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFetchStaleServesCachedAndRefreshes(t *testing.T) {
	c := New(NewMemoryStore(), WithFreshFor(time.Millisecond))
	ctx := context.Background()

	_, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
		return page{Total: 1}, nil
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	refreshed := make(chan struct{})
	got, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
		defer close(refreshed)
		return page{Total: 2}, nil
	})
	require.NoError(t, err)
	// The stale value is returned immediately.
	assert.Equal(t, 1, got.Total)

	select {
	case <-refreshed:
	case <-time.After(time.Second):
		t.Fatal("background refresh never ran")
	}

	// Eventually the refreshed value lands in the store.
	require.Eventually(t, func() bool {
		got, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
			return page{Total: 99}, nil
		})
		return err == nil && got.Total == 2
	}, time.Second, 5*time.Millisecond)
}

func TestMutateSuccessInvalidatesEntity(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	ctx := context.Background()

	_, err := Fetch(ctx, c, "aliments", params{Page: 1}, func(context.Context) (page, error) {
		return page{Items: []string{"riz"}, Total: 1}, nil
	})
	require.NoError(t, err)

	err = Mutate(ctx, c, "aliments",
		func(p page) page {
			p.Items = append(p.Items, "poulet")
			p.Total++
			return p
		},
		func(context.Context) error { return nil })
	require.NoError(t, err)

	// Settled views are dropped; the next read goes to the loader.
	keys, err := store.Keys(ctx, "aliments|")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMutateFailureRestoresSnapshots(t *testing.T) {
	c := New(NewMemoryStore())
	ctx := context.Background()

	for _, p := range []params{{Page: 1}, {Page: 2}} {
		p := p
		_, err := Fetch(ctx, c, "aliments", p, func(context.Context) (page, error) {
			return page{Items: []string{"riz"}, Total: 2}, nil
		})
		require.NoError(t, err)
	}

	boom := errors.New("rejected")
	err := Mutate(ctx, c, "aliments",
		func(p page) page {
			p.Items = append(p.Items, "poulet")
			p.Total++
			return p
		},
		func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	// Every cached view is back to its pre-mutation state.
	for _, p := range []params{{Page: 1}, {Page: 2}} {
		got, err := Fetch(ctx, c, "aliments", p, func(context.Context) (page, error) {
			t.Fatal("loader must not run, snapshot should be restored")
			return page{}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, page{Items: []string{"riz"}, Total: 2}, got)
	}
}

func TestMutateAppliesPatchBeforeRemoteCall(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	ctx := context.Background()

	_, err := Fetch(ctx, c, "aliments", params{Page: 1}, func(context.Context) (page, error) {
		return page{Total: 1}, nil
	})
	require.NoError(t, err)

	var observed int
	err = Mutate(ctx, c, "aliments",
		func(p page) page {
			p.Total = 5
			return p
		},
		func(rctx context.Context) error {
			// While the remote call runs, readers see the optimistic value.
			got, err := Fetch(rctx, c, "aliments", params{Page: 1}, func(context.Context) (page, error) {
				return page{}, errors.New("no loader")
			})
			require.NoError(t, err)
			observed = got.Total
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 5, observed)
}

func TestInvalidateSpecificParams(t *testing.T) {
	store := NewMemoryStore()
	c := New(store)
	ctx := context.Background()

	for _, p := range []params{{Page: 1}, {Page: 2}} {
		p := p
		_, err := Fetch(ctx, c, "aliments", p, func(context.Context) (page, error) {
			return page{Total: p.Page}, nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, c.Invalidate(ctx, "aliments", params{Page: 1}))

	keys, err := store.Keys(ctx, "aliments|")
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, c.Invalidate(ctx, "aliments"))
	keys, err = store.Keys(ctx, "aliments|")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCancelReadsDiscardsInFlightRefresh(t *testing.T) {
	c := New(NewMemoryStore(), WithFreshFor(time.Millisecond))
	ctx := context.Background()

	_, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
		return page{Total: 1}, nil
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	started := make(chan struct{})
	done := make(chan struct{})
	_, err = Fetch(ctx, c, "aliments", nil, func(rctx context.Context) (page, error) {
		close(started)
		<-rctx.Done()
		close(done)
		return page{Total: 2}, rctx.Err()
	})
	require.NoError(t, err)

	<-started
	c.CancelReads("aliments")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh was not cancelled")
	}

	// The cancelled refresh must not overwrite the cached value.
	got, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
		return page{Total: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Total)
}

func TestMemoryStoreTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompletedRefreshLeavesNoTrackedReads(t *testing.T) {
	c := New(NewMemoryStore(), WithFreshFor(time.Millisecond))
	ctx := context.Background()

	_, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
		return page{Total: 1}, nil
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	for i := 0; i < 10; i++ {
		_, err := Fetch(ctx, c, "aliments", nil, func(context.Context) (page, error) {
			return page{Total: 2}, nil
		})
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	// Finished refreshes unregister themselves instead of piling up until
	// the next mutation.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.inflight["aliments"]) == 0
	}, time.Second, 5*time.Millisecond)
}
