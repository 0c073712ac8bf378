// internal/domain/recommendation/dto.go
package recommendation

import "time"

// RecommendResponse is the payload returned by the recommendations endpoint.
type RecommendResponse struct {
	UserID          int64            `json:"user_id"`
	BuildID         string           `json:"build_id"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ModelInfo describes the currently served model snapshot.
type ModelInfo struct {
	BuildID    string    `json:"build_id"`
	BuiltAt    time.Time `json:"built_at"`
	UserCount  int       `json:"user_count"`
	PlanCount  int       `json:"plan_count"`
	Normalized bool      `json:"normalized"`
}
