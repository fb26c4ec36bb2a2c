package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	"github.com/ikkim/dietprefs-client/internal/app/service"
	"github.com/ikkim/dietprefs-client/internal/export"
	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubRepository struct {
	vendors  []model.Vendor
	items    []model.MenuItem
	searches []repository.SearchCriteria
	voteErr  error
}

func (s *stubRepository) SearchVendors(_ context.Context, c repository.SearchCriteria) (*model.VendorSearchResponse, error) {
	s.searches = append(s.searches, c)
	return &model.VendorSearchResponse{
		Vendors: s.vendors,
		Pagination: model.PaginationMeta{
			Page: c.Page, PageSize: c.PageSize, TotalResults: len(s.vendors), TotalPages: 1,
		},
		User1Display: "backend text",
	}, nil
}

func (s *stubRepository) GetVendorItems(context.Context, int, repository.ItemCriteria) ([]model.MenuItem, error) {
	return s.items, nil
}

func (s *stubRepository) VoteOnItem(context.Context, int, model.VoteType) error {
	return s.voteErr
}

func (s *stubRepository) GetConfig(context.Context) (*model.AppConfig, error) {
	cfg := model.DefaultAppConfig()
	return &cfg, nil
}

func (s *stubRepository) GetPreferenceMetadata(context.Context) (model.PreferenceMetadata, error) {
	return model.PreferenceMetadata{"gmo_free": "GMO-free"}, nil
}

func setupSessionControllerTest(t *testing.T) (*gin.Engine, *stubRepository) {
	repo := &stubRepository{
		vendors: []model.Vendor{
			{ID: 1, Name: "Green Bowl", Rating: model.VendorRating{Upvotes: 9, TotalVotes: 10, Percentage: 0.9}},
			{ID: 2, Name: "Taco Cart", Rating: model.VendorRating{Upvotes: 1, TotalVotes: 2, Percentage: 0.5}},
		},
		items: []model.MenuItem{
			{ID: 10, VendorID: 1, Name: "Bowl"},
		},
	}

	configService := service.NewConfigService(repo, nil)
	require.NoError(t, configService.Refresh(context.Background()))
	display := service.NewDisplayService(configService)
	coordinator := service.NewSearchCoordinator(repo, display, service.CoordinatorConfig{PageSize: 10, Debounce: 10 * time.Millisecond})
	t.Cleanup(coordinator.Close)
	detail := service.NewVendorDetailSession(repo)

	ctrl := NewSessionController(coordinator, detail, display,
		service.NewStaticLocationProvider(&model.Location{Latitude: 45.677, Longitude: -111.0429}),
		export.NewXLSXExporter())
	cfgCtrl := NewConfigController(configService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/config", cfgCtrl.GetConfig)
	router.GET("/api/v1/preferences", ctrl.ListPreferences)
	s := router.Group("/api/v1/session")
	s.GET("", ctrl.GetSnapshot)
	s.POST("/preferences/toggle", ctrl.TogglePreference)
	s.PUT("/price", ctrl.SetMaxPrice)
	s.PUT("/sort", ctrl.SetSort)
	s.PUT("/query", ctrl.SetQuery)
	s.POST("/search", ctrl.Search)
	s.POST("/next-page", ctrl.NextPage)
	s.PUT("/location", ctrl.SetLocation)
	s.POST("/location/refresh", ctrl.RefreshLocation)
	s.POST("/vendors/:id/open", ctrl.OpenVendor)
	s.GET("/detail", ctrl.GetDetail)
	s.POST("/items/:id/vote", ctrl.Vote)
	s.GET("/export.xlsx", ctrl.Export)

	return router, repo
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSessionController_TogglePreference(t *testing.T) {
	router, _ := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodPost, "/api/v1/session/preferences/toggle", gin.H{"user": 1, "preference": "gmo_free"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["selected"])
	session := resp["session"].(map[string]interface{})
	assert.Equal(t, "GMO-free", session["user1"].(map[string]interface{})["display_text"])

	w = doJSON(router, http.MethodPost, "/api/v1/session/preferences/toggle", gin.H{"user": 1, "preference": "gluten-free"})
	assert.Equal(t, http.StatusOK, w.Code, "display names are accepted too")
}

func TestSessionController_TogglePreference_Invalid(t *testing.T) {
	router, _ := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodPost, "/api/v1/session/preferences/toggle", gin.H{"user": 3, "preference": "vegan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/session/preferences/toggle", gin.H{"user": 1, "preference": "paleo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_UNKNOWN_PREFERENCE")

	w = doJSON(router, http.MethodPost, "/api/v1/session/preferences/toggle", gin.H{"user": 1, "preference": "low_price"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_SetMaxPrice(t *testing.T) {
	router, _ := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodPut, "/api/v1/session/price", gin.H{"user": 2, "max_price": 15})
	require.Equal(t, http.StatusOK, w.Code)
	user2 := decode(t, w)["user2"].(map[string]interface{})
	assert.Equal(t, []interface{}{"low_price"}, user2["preferences"])
	assert.Equal(t, "under $15", user2["display_text"])

	w = doJSON(router, http.MethodPut, "/api/v1/session/price", gin.H{"user": 2, "max_price": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_INVALID_PRICE")
}

func TestSessionController_SearchSortAndPage(t *testing.T) {
	router, repo := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodPost, "/api/v1/session/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Len(t, resp["vendors"], 2)
	assert.Equal(t, "backend text", resp["user1"].(map[string]interface{})["backend_display"])
	require.Len(t, repo.searches, 1)
	assert.Equal(t, "item_count", repo.searches[0].SortBy)

	w = doJSON(router, http.MethodPut, "/api/v1/session/sort", gin.H{"column": "rating"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, true, resp["applied"])
	vendors := resp["session"].(map[string]interface{})["vendors"].([]interface{})
	assert.Equal(t, "Green Bowl", vendors[0].(map[string]interface{})["vendor_name"])
	assert.Len(t, repo.searches, 1, "sorting must not search")

	w = doJSON(router, http.MethodPut, "/api/v1/session/sort", gin.H{"column": "price"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/session/next-page", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SEARCH_NO_MORE_PAGES")
}

func TestSessionController_SetQuery_Debounces(t *testing.T) {
	router, repo := setupSessionControllerTest(t)

	for _, text := range []string{"t", "ta", "taco"} {
		w := doJSON(router, http.MethodPut, "/api/v1/session/query", gin.H{"text": text})
		require.Equal(t, http.StatusAccepted, w.Code)
	}

	require.Eventually(t, func() bool {
		w := doJSON(router, http.MethodGet, "/api/v1/session", nil)
		return decode(t, w)["total_results"] == 2.0
	}, time.Second, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	w := doJSON(router, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, "taco", decode(t, w)["search_query"])
	assert.Len(t, repo.searches, 1)
}

func TestSessionController_Location(t *testing.T) {
	router, repo := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodPut, "/api/v1/session/location", gin.H{"lat": 45.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/session/location/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 45.677, decode(t, w)["location"].(map[string]interface{})["lat"])

	doJSON(router, http.MethodPost, "/api/v1/session/search", nil)
	require.NotNil(t, repo.searches[0].Location)

	w = doJSON(router, http.MethodPut, "/api/v1/session/location", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode(t, w), "location")
}

func TestSessionController_OpenVendorAndVote(t *testing.T) {
	router, repo := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodGet, "/api/v1/session/detail", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/session/vendors/1/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "vendor must be in the results first")

	doJSON(router, http.MethodPost, "/api/v1/session/search", nil)
	w = doJSON(router, http.MethodPost, "/api/v1/session/vendors/1/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = doJSON(router, http.MethodPost, "/api/v1/session/items/10/vote", gin.H{"vote": "up"})
	require.Equal(t, http.StatusOK, w.Code)
	item := decode(t, w)["items"].([]interface{})[0].(map[string]interface{})
	rating := item["rating"].(map[string]interface{})
	assert.Equal(t, 1.0, rating["upvotes"])
	assert.Equal(t, 1.0, rating["percentage"])

	w = doJSON(router, http.MethodPost, "/api/v1/session/items/10/vote", gin.H{"vote": "sideways"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.voteErr = &dietprefs.APIError{StatusCode: http.StatusInternalServerError}
	w = doJSON(router, http.MethodPost, "/api/v1/session/items/10/vote", gin.H{"vote": "down"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/session/detail", nil)
	require.Equal(t, http.StatusOK, w.Code)
	item = decode(t, w)["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, 1.0, item["rating"].(map[string]interface{})["total_votes"], "failed vote changes nothing")
}

func TestSessionController_Export(t *testing.T) {
	router, _ := setupSessionControllerTest(t)
	doJSON(router, http.MethodPost, "/api/v1/session/search", nil)

	w := doJSON(router, http.MethodGet, "/api/v1/session/export.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "results.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.ResultsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestConfigController_GetConfig(t *testing.T) {
	router, _ := setupSessionControllerTest(t)

	w := doJSON(router, http.MethodGet, "/api/v1/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "remote", resp["source"])
	assert.Len(t, resp["price_options"], 26)

	w = doJSON(router, http.MethodGet, "/api/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 32.0, decode(t, w)["count"])
}
