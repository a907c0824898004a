package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citiescollective/citycache/internal/cache"
	"github.com/citiescollective/citycache/internal/store"
)

func setupServer(t *testing.T) (*Server, *store.Queries) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx, db))

	c := cache.New(cache.Config{Capacity: 64})
	queries := store.New(db, c)
	return NewServer(queries, Options{Addr: ":0"}), queries
}

func seedCity(t *testing.T, queries *store.Queries) store.CityRow {
	t.Helper()
	ctx := context.Background()
	owner, err := queries.CreateUser(ctx, "mayor", sql.NullString{})
	require.NoError(t, err)
	city, err := queries.CreateCity(ctx, owner.ID, "Testburg", "european", 42000)
	require.NoError(t, err)
	return city
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleStats(t *testing.T) {
	server, queries := setupServer(t)
	city := seedCity(t, queries)

	ctx := context.Background()
	_, err := queries.GetCity(ctx, city.ID) // miss
	require.NoError(t, err)
	_, err = queries.GetCity(ctx, city.ID) // hit
	require.NoError(t, err)

	w := doRequest(t, server, http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var stats statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(2), stats.TotalQueries)
	assert.InDelta(t, 50.0, stats.HitRate, 0.01)
	assert.Greater(t, stats.MemoryKB, 0.0)
	assert.NotEmpty(t, stats.Timestamp)
}

func TestHandleStats_EmptyCache(t *testing.T) {
	server, _ := setupServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalQueries)
	assert.Zero(t, stats.HitRate)
}

func TestHandleClear(t *testing.T) {
	server, queries := setupServer(t)
	city := seedCity(t, queries)

	_, err := queries.GetCity(context.Background(), city.ID)
	require.NoError(t, err)

	w := doRequest(t, server, http.MethodPost, "/api/cache/clear")
	require.Equal(t, http.StatusOK, w.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.Evictions)
	assert.Zero(t, stats.TotalQueries)
	assert.Zero(t, stats.Entries)
}

func TestHandleClear_MethodNotAllowed(t *testing.T) {
	server, _ := setupServer(t)

	w := doRequest(t, server, http.MethodGet, "/api/cache/clear")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleInvalidate(t *testing.T) {
	server, queries := setupServer(t)
	city := seedCity(t, queries)

	_, err := queries.GetCity(context.Background(), city.ID)
	require.NoError(t, err)

	w := doRequest(t, server, http.MethodPost, "/api/cache/invalidate?tag=cities")
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Tag     string `json:"tag"`
		Removed int    `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "cities", result.Tag)
	assert.Equal(t, 1, result.Removed)

	// Invalidating again removes nothing.
	w = doRequest(t, server, http.MethodPost, "/api/cache/invalidate?tag=cities")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Zero(t, result.Removed)
}

func TestHandleInvalidate_MissingTag(t *testing.T) {
	server, _ := setupServer(t)

	w := doRequest(t, server, http.MethodPost, "/api/cache/invalidate")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePopularCities(t *testing.T) {
	server, queries := setupServer(t)
	city := seedCity(t, queries)

	w := doRequest(t, server, http.MethodGet, "/api/cities/popular")
	require.Equal(t, http.StatusOK, w.Code)

	var cities []cityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	require.Len(t, cities, 1)
	assert.Equal(t, city.ID.String(), cities[0].ID)
	assert.Equal(t, "Testburg", cities[0].Name)
	assert.Equal(t, "0", cities[0].Rating)
}

func TestHandlePopularCities_BadLimit(t *testing.T) {
	server, _ := setupServer(t)

	for _, limit := range []string{"zero", "-1", "0"} {
		w := doRequest(t, server, http.MethodGet, "/api/cities/popular?limit="+limit)
		assert.Equalf(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestHandleGetCity(t *testing.T) {
	server, queries := setupServer(t)
	city := seedCity(t, queries)

	w := doRequest(t, server, http.MethodGet, "/api/cities/"+city.ID.String())
	require.Equal(t, http.StatusOK, w.Code)

	var got cityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, city.ID.String(), got.ID)
	assert.Equal(t, city.OwnerID.String(), got.OwnerID)
	assert.Equal(t, int64(42000), got.Population)
}

func TestHandleGetCity_Errors(t *testing.T) {
	server, _ := setupServer(t)

	t.Run("invalid id", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/cities/not-a-uuid")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(t, server, http.MethodGet, "/api/cities/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
