// internal/domain/recommendation/entity.go
package recommendation

// Reason explains which branch produced a recommendation.
type Reason string

const (
	// ReasonSimilarUsers marks results from the nearest-neighbor branch.
	ReasonSimilarUsers Reason = "SIMILAR_USERS"
	// ReasonNoHistoryFallback marks the cheapest-plans fallback for users
	// without a usable feature vector.
	ReasonNoHistoryFallback Reason = "NO_HISTORY_FALLBACK"
)

// UserFeatureVector is the per-user aggregate built from the user's
// subscription history. Only MeanPrice and MeanAutoRenewal feed the
// similarity query; the billing aggregates are carried for inspection.
// MeanAutoRenewal is a mean of 0/1 encodings and stays within [0,1].
type UserFeatureVector struct {
	UserID                int64   `json:"user_id"`
	MeanPrice             float64 `json:"mean_price"`
	MeanAutoRenewal       float64 `json:"mean_auto_renewal"`
	MeanTotalBilled       float64 `json:"mean_total_billed"`
	MeanAvgBilled         float64 `json:"mean_avg_billed"`
	MeanFailedPaymentRate float64 `json:"mean_failed_payment_rate"`
}

// PlanFeatureVector is the numeric profile of one plan. AutoRenewal is the
// encoded flag, 1 for "Yes" and 0 for "No". There is one vector per plan
// row, in the plan table's original order.
type PlanFeatureVector struct {
	PlanID      int64   `json:"plan_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	AutoRenewal float64 `json:"auto_renewal"`
}

// Recommendation is a single ranked result. Distance is the Euclidean
// distance to the user's query vector and is zero on the fallback branch.
type Recommendation struct {
	PlanID      int64   `json:"plan_id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	AutoRenewal float64 `json:"auto_renewal"`
	Reason      Reason  `json:"reason"`
	Distance    float64 `json:"distance"`
}
