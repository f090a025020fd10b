package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoreau/nutritrack/internal/cache"
	"github.com/jmoreau/nutritrack/internal/listquery"
	"github.com/jmoreau/nutritrack/internal/models"
	"github.com/jmoreau/nutritrack/internal/service"
)

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.AlimentPage{Page: 1, PageSize: 10, PageCount: 1})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok123"))
	_, err := c.ListAliments(context.Background(), listquery.Default())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestClientEncodesListParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(models.AlimentPage{})
	}))
	defer srv.Close()

	params := listquery.Default()
	params.Q = "riz"
	params.SortBy = "kcal"
	params.SortDir = "desc"
	params.Page = 2

	c := New(srv.URL)
	_, err := c.ListAliments(context.Background(), params)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "q=riz")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "sort=kcal%3Adesc")
}

func TestClientMapsErrorStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, service.ErrInvalid},
		{http.StatusForbidden, service.ErrDenied},
		{http.StatusNotFound, service.ErrNotFound},
		{http.StatusConflict, service.ErrConflict},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]string{"error": "nope"})
		}))
		c := New(srv.URL)
		_, err := c.GetAliment(context.Background(), uuid.New())
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		assert.Contains(t, err.Error(), "nope")
		srv.Close()
	}
}

func TestClientLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/login" {
			json.NewEncoder(w).Encode(map[string]string{"token": "fresh"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(map[string]map[string]string{"preferences": {}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Login(context.Background(), "a@example.com", "pw"))

	_, err := c.Preferences(context.Background())
	assert.NoError(t, err)
}

func TestCachedClientListCachesPerParams(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(models.AlimentPage{Total: 1, Page: 1, PageSize: 10, PageCount: 1})
	}))
	defer srv.Close()

	cached := NewCached(New(srv.URL), cache.New(cache.NewMemoryStore()))
	ctx := context.Background()

	_, err := cached.ListAliments(ctx, listquery.Default())
	require.NoError(t, err)
	_, err = cached.ListAliments(ctx, listquery.Default())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A different parameterization is its own cache entry.
	other := listquery.Default()
	other.Page = 2
	_, err = cached.ListAliments(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedClientCreateRollsBackOnRejection(t *testing.T) {
	var listCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "duplicate"})
			return
		}
		atomic.AddInt32(&listCalls, 1)
		json.NewEncoder(w).Encode(models.AlimentPage{
			Items:     []models.Aliment{{ID: uuid.New(), Name: "Riz"}},
			Total:     1,
			Page:      1,
			PageSize:  10,
			PageCount: 1,
		})
	}))
	defer srv.Close()

	cached := NewCached(New(srv.URL), cache.New(cache.NewMemoryStore()))
	ctx := context.Background()

	before, err := cached.ListAliments(ctx, listquery.Default())
	require.NoError(t, err)

	err = cached.CreateAliment(ctx, service.AlimentInput{Name: "Riz"})
	assert.ErrorIs(t, err, service.ErrConflict)

	// The cached page is exactly what it was before the failed mutation,
	// served without another server round trip.
	after, err := cached.ListAliments(ctx, listquery.Default())
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))
}

func TestCachedClientDeleteInvalidatesOnSuccess(t *testing.T) {
	target := uuid.New()
	var listCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		atomic.AddInt32(&listCalls, 1)
		json.NewEncoder(w).Encode(models.AlimentPage{
			Items:     []models.Aliment{{ID: target, Name: "Riz"}},
			Total:     1,
			Page:      1,
			PageSize:  10,
			PageCount: 1,
		})
	}))
	defer srv.Close()

	cached := NewCached(New(srv.URL), cache.New(cache.NewMemoryStore()))
	ctx := context.Background()

	_, err := cached.ListAliments(ctx, listquery.Default())
	require.NoError(t, err)

	require.NoError(t, cached.DeleteAliment(ctx, target))

	// Settlement drops the cached views, so the next read refetches.
	_, err = cached.ListAliments(ctx, listquery.Default())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&listCalls))
}
