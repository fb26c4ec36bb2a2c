package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVendorRepositoryTest(t *testing.T, handler http.HandlerFunc) VendorRepository {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := dietprefs.NewClient(dietprefs.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewVendorRepository(client)
}

func TestVendorRepository_SearchVendors_BuildsRequest(t *testing.T) {
	var body map[string]interface{}
	repo := setupVendorRepositoryTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"vendors": [], "pagination": {"page": 2, "page_size": 10, "total_results": 0, "total_pages": 0}}`))
	})

	price := 10.0
	resp, err := repo.SearchVendors(context.Background(), SearchCriteria{
		User1Preferences: []string{"vegan"},
		User2MaxPrice:    &price,
		Location:         &model.Location{Latitude: 45.677, Longitude: -111.0429},
		SearchQuery:      "   ",
		SortBy:           "distance",
		SortDirection:    "asc",
		Page:             2,
		PageSize:         10,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Vendors)

	assert.Equal(t, []interface{}{"vegan"}, body["user1_preferences"])
	assert.Equal(t, []interface{}{}, body["user2_preferences"])
	assert.Equal(t, 10.0, body["user2_max_price"])
	assert.NotContains(t, body, "user1_max_price")
	assert.Equal(t, 45.677, body["lat"])
	assert.NotContains(t, body, "search_query", "blank query must be omitted")
	assert.Equal(t, "distance", body["sort_by"])
	assert.Equal(t, float64(2), body["page"])
}

func TestVendorRepository_SearchVendors_NoLocation(t *testing.T) {
	var body map[string]interface{}
	repo := setupVendorRepositoryTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"vendors": [], "pagination": {}}`))
	})

	_, err := repo.SearchVendors(context.Background(), SearchCriteria{SearchQuery: "tacos", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.NotContains(t, body, "lat")
	assert.NotContains(t, body, "lng")
	assert.Equal(t, "tacos", body["search_query"])
}

func TestVendorRepository_VoteOnItem_Failure(t *testing.T) {
	repo := setupVendorRepositoryTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Item with id 5 not found"}`))
	})

	err := repo.VoteOnItem(context.Background(), 5, model.VoteUp)
	assert.ErrorIs(t, err, dietprefs.ErrNotFound)
}

func TestVendorRepository_GetPreferenceMetadata(t *testing.T) {
	repo := setupVendorRepositoryTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/preferences", r.URL.Path)
		w.Write([]byte(`{"preferences": [
			{"api_name": "gmo_free", "display_text": "GMO-free"},
			{"api_name": "vegan", "display_text": ""}
		]}`))
	})

	meta, err := repo.GetPreferenceMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.PreferenceMetadata{"gmo_free": "GMO-free"}, meta)
}

func TestMemoryMetadataCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryMetadataCache()

	_, err := cache.LoadAppConfig(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = cache.LoadPreferenceMetadata(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	cfg := model.DefaultAppConfig()
	cfg.Version = "2.0.0"
	require.NoError(t, cache.SaveAppConfig(ctx, cfg))
	require.NoError(t, cache.SavePreferenceMetadata(ctx, model.PreferenceMetadata{"vegan": "Vegan"}))

	got, err := cache.LoadAppConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", got.Version)

	meta, err := cache.LoadPreferenceMetadata(ctx)
	require.NoError(t, err)
	meta["vegan"] = "changed"

	again, _ := cache.LoadPreferenceMetadata(ctx)
	assert.Equal(t, "Vegan", again["vegan"], "loaded maps must be copies")
}

// Runs only when a redis server is available, e.g. REDIS_TEST_ADDR=localhost:6379.
func TestRedisMetadataCache(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	ctx := context.Background()
	require.NoError(t, client.FlushDB(ctx).Err())

	cache := NewRedisMetadataCache(client, time.Minute)

	_, err := cache.LoadPreferenceMetadata(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SavePreferenceMetadata(ctx, model.PreferenceMetadata{"pork": "bacon/pork/ham"}))
	meta, err := cache.LoadPreferenceMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bacon/pork/ham", meta["pork"])

	require.NoError(t, cache.SaveAppConfig(ctx, model.DefaultAppConfig()))
	cfg, err := cache.LoadAppConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
}
