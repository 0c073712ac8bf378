// internal/handlers/recommendation/recommendation_handler.go
package recommendation

import (
	"net/http"
	"strconv"

	domain "planwise-service/internal/domain/recommendation"
	xerrors "planwise-service/internal/pkg/errors"
	"planwise-service/internal/pkg/response"
	service "planwise-service/internal/service/recommendation"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recoService *service.RecommendationService
	defaultK    int
}

func NewRecommendationHandler(recoService *service.RecommendationService, defaultK int) *RecommendationHandler {
	if defaultK <= 0 {
		defaultK = service.DefaultK
	}
	return &RecommendationHandler{recoService: recoService, defaultK: defaultK}
}

// GetRecommendations returns up to k ranked plans for a user. Unknown
// users get the cheapest-plans fallback, which is a 200, not a 404.
func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid user ID", err)
		return
	}

	k := h.defaultK
	if raw := c.Query("k"); raw != "" {
		k, err = strconv.Atoi(raw)
		if err != nil {
			response.ValidationError(c, "invalid k", err)
			return
		}
	}

	recs, buildID, err := h.recoService.Recommend(c.Request.Context(), userID, k)
	switch {
	case err == nil:
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		response.ValidationError(c, "invalid recommendation query", err)
		return
	case xerrors.Is(err, xerrors.ErrNotReady):
		response.ServiceUnavailable(c, "recommendation model not built yet", err)
		return
	default:
		response.Error(c, http.StatusInternalServerError, "failed to compute recommendations", err)
		return
	}

	response.Success(c, http.StatusOK, "recommendations computed", domain.RecommendResponse{
		UserID:          userID,
		BuildID:         buildID,
		Recommendations: recs,
	})
}

// ListUsers returns the users available for recommendation selection.
func (h *RecommendationHandler) ListUsers(c *gin.Context) {
	users, err := h.recoService.ListUsers()
	if err != nil {
		response.ServiceUnavailable(c, "recommendation model not built yet", err)
		return
	}
	response.Success(c, http.StatusOK, "users retrieved", users)
}

// ListPlans returns all plans with their encoded feature vectors.
func (h *RecommendationHandler) ListPlans(c *gin.Context) {
	plans, err := h.recoService.ListPlans()
	if err != nil {
		response.ServiceUnavailable(c, "recommendation model not built yet", err)
		return
	}
	response.Success(c, http.StatusOK, "plans retrieved", plans)
}

// GetModelInfo describes the currently served model snapshot.
func (h *RecommendationHandler) GetModelInfo(c *gin.Context) {
	model := h.recoService.Model()
	if model == nil {
		response.ServiceUnavailable(c, "recommendation model not built yet", xerrors.ErrNotReady)
		return
	}
	response.Success(c, http.StatusOK, "model info retrieved", model.Info())
}

// Rebuild reloads the dataset and swaps in a freshly built model. Input
// problems in the dataset surface here as a 422 naming the offending
// column and row.
func (h *RecommendationHandler) Rebuild(c *gin.Context) {
	model, err := h.recoService.Rebuild(c.Request.Context())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrMalformedInput) {
			response.Error(c, http.StatusUnprocessableEntity, "dataset validation failed", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "model rebuild failed", err)
		return
	}
	response.Success(c, http.StatusOK, "model rebuilt", model.Info())
}
