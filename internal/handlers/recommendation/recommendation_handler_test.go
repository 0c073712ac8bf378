package recommendation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"planwise-service/internal/domain/dataset"
	domain "planwise-service/internal/domain/recommendation"
	service "planwise-service/internal/service/recommendation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRepo struct {
	ds dataset.Dataset
}

func (r *stubRepo) LoadDataset(ctx context.Context) (dataset.Dataset, error) {
	return r.ds, nil
}

func testRouter(t *testing.T, built bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{ds: dataset.Dataset{
		Users: []dataset.User{{ID: 1, Name: "Alice"}},
		Plans: []dataset.Plan{
			{ID: 1, Name: "Basic", Price: 9.99, AutoRenewalAllowed: "Yes"},
			{ID: 2, Name: "Lite", Price: 5.00, AutoRenewalAllowed: "No"},
			{ID: 3, Name: "Premium", Price: 14.99, AutoRenewalAllowed: "Yes"},
		},
		Subscriptions: []dataset.Subscription{{ID: 10, UserID: 1, PlanID: 1}},
	}}

	svc := service.NewRecommendationService(repo, nil, zap.NewNop(), false)
	if built {
		_, err := svc.Rebuild(context.Background())
		require.NoError(t, err)
	}

	h := NewRecommendationHandler(svc, 3)
	r := gin.New()
	r.GET("/api/v1/users/:id/recommendations", h.GetRecommendations)
	r.GET("/api/v1/users", h.ListUsers)
	r.GET("/api/v1/plans", h.ListPlans)
	r.GET("/api/v1/model", h.GetModelInfo)
	r.POST("/api/v1/admin/rebuild", h.Rebuild)
	return r
}

func doRequest(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func TestGetRecommendationsSimilarUsers(t *testing.T) {
	r := testRouter(t, true)

	w := doRequest(r, http.MethodGet, "/api/v1/users/1/recommendations?k=2")
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp domain.RecommendResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, int64(1), resp.Recommendations[0].PlanID)
	for _, rec := range resp.Recommendations {
		assert.Equal(t, domain.ReasonSimilarUsers, rec.Reason)
	}
}

func TestGetRecommendationsUnknownUserFallsBack(t *testing.T) {
	r := testRouter(t, true)

	// Unknown users are routed to the cheapest-plans fallback, not a 404.
	w := doRequest(r, http.MethodGet, "/api/v1/users/999/recommendations?k=2")
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var resp domain.RecommendResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, int64(2), resp.Recommendations[0].PlanID)
	assert.Equal(t, int64(1), resp.Recommendations[1].PlanID)
	for _, rec := range resp.Recommendations {
		assert.Equal(t, domain.ReasonNoHistoryFallback, rec.Reason)
	}
}

func TestGetRecommendationsBadInput(t *testing.T) {
	r := testRouter(t, true)

	tests := []struct {
		name string
		path string
	}{
		{name: "non-numeric user id", path: "/api/v1/users/abc/recommendations"},
		{name: "non-numeric k", path: "/api/v1/users/1/recommendations?k=lots"},
		{name: "zero k", path: "/api/v1/users/1/recommendations?k=0"},
		{name: "negative k", path: "/api/v1/users/1/recommendations?k=-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEndpointsBeforeFirstBuild(t *testing.T) {
	r := testRouter(t, false)

	for _, path := range []string{
		"/api/v1/users/1/recommendations",
		"/api/v1/users",
		"/api/v1/plans",
		"/api/v1/model",
	} {
		w := doRequest(r, http.MethodGet, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestRebuildEndpoint(t *testing.T) {
	r := testRouter(t, false)

	w := doRequest(r, http.MethodPost, "/api/v1/admin/rebuild")
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var info domain.ModelInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, 3, info.PlanCount)
	assert.Equal(t, 1, info.UserCount)
	assert.NotEmpty(t, info.BuildID)

	// The model is now served.
	w = doRequest(r, http.MethodGet, "/api/v1/model")
	assert.Equal(t, http.StatusOK, w.Code)
}
