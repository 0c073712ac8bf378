// internal/domain/dataset/entity.go
package dataset

import "database/sql"

// User is a row of the User_Data relation.
type User struct {
	ID    int64          `json:"id" db:"id"`
	Name  string         `json:"name" db:"name"`
	Email sql.NullString `json:"email,omitempty" db:"email"`
	Age   sql.NullInt32  `json:"age,omitempty" db:"age"`
}

// Plan is a row of the Subscription_Plans relation. AutoRenewalAllowed is
// kept in its raw categorical form ("Yes"/"No") until the feature builder
// encodes it; validation of the value happens there, not at load time.
type Plan struct {
	ID                 int64   `json:"id" db:"id"`
	Name               string  `json:"name" db:"name"`
	Price              float64 `json:"price" db:"price"`
	AutoRenewalAllowed string  `json:"auto_renewal_allowed" db:"auto_renewal_allowed"`
}

// Subscription links a user to a plan. A user may hold many subscriptions
// over time, current and historical.
type Subscription struct {
	ID     int64          `json:"id" db:"id"`
	UserID int64          `json:"user_id" db:"user_id"`
	PlanID int64          `json:"plan_id" db:"plan_id"`
	Status sql.NullString `json:"status,omitempty" db:"status"`
}

// SubscriptionLog is a row of the Subscription_Logs relation. It is loaded
// with the rest of the dataset but feeds no feature today.
type SubscriptionLog struct {
	ID             int64          `json:"id" db:"id"`
	SubscriptionID int64          `json:"subscription_id" db:"subscription_id"`
	Action         sql.NullString `json:"action,omitempty" db:"action"`
}

// PaymentStatus values for billing records. Anything other than "paid"
// counts as a failed payment in the feature aggregates.
const PaymentStatusPaid = "paid"

// BillingRecord is a row of the Billing_Information relation.
type BillingRecord struct {
	SubscriptionID int64   `json:"subscription_id" db:"subscription_id"`
	Amount         float64 `json:"amount" db:"amount"`
	PaymentStatus  string  `json:"payment_status" db:"payment_status"`
}

// Dataset bundles the five relations the recommendation core consumes.
// It is delivered whole and treated as immutable for a build cycle.
type Dataset struct {
	Users         []User
	Plans         []Plan
	Subscriptions []Subscription
	Logs          []SubscriptionLog
	Billing       []BillingRecord
}
