// internal/features/builder.go
package features

import (
	"sort"

	"planwise-service/internal/domain/dataset"
	"planwise-service/internal/domain/recommendation"
)

// billingAggregate is the per-subscription rollup of billing records.
type billingAggregate struct {
	totalBilled    float64
	avgBilled      float64
	failedPayments float64
}

// joinedRow is one subscription row after the left joins, before the
// null-drop. Nullable columns carry an ok flag instead of a pointer.
type joinedRow struct {
	userID      int64
	price       float64
	autoRenewal float64
	planOK      bool
	billing     billingAggregate
}

// Build turns the raw relations into the two feature tables.
//
// Subscriptions are left-joined to plans and users, billing records are
// aggregated per subscription and left-joined with zero-fill, the
// auto-renewal flag is encoded to 0/1, rows with unresolved joins are
// dropped, and the survivors are averaged per user. Plan vectors come
// straight from the plan relation with the same encoding and no filtering.
//
// Build is a pure transform: it never mutates its inputs and an empty
// relation yields an empty table, not an error. The only failure mode is a
// malformed categorical value, surfaced as a *xerrors.FieldError.
func Build(ds dataset.Dataset) ([]recommendation.UserFeatureVector, []recommendation.PlanFeatureVector, error) {
	planVectors, err := buildPlanVectors(ds.Plans)
	if err != nil {
		return nil, nil, err
	}

	userVectors, err := buildUserVectors(ds, planVectors)
	if err != nil {
		return nil, nil, err
	}

	return userVectors, planVectors, nil
}

func buildPlanVectors(plans []dataset.Plan) ([]recommendation.PlanFeatureVector, error) {
	vectors := make([]recommendation.PlanFeatureVector, 0, len(plans))
	for _, p := range plans {
		flag, err := EncodeAutoRenewal(p.AutoRenewalAllowed, p.ID)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, recommendation.PlanFeatureVector{
			PlanID:      p.ID,
			Name:        p.Name,
			Price:       p.Price,
			AutoRenewal: flag,
		})
	}
	return vectors, nil
}

func buildUserVectors(ds dataset.Dataset, planVectors []recommendation.PlanFeatureVector) ([]recommendation.UserFeatureVector, error) {
	planByID := make(map[int64]recommendation.PlanFeatureVector, len(planVectors))
	for _, pv := range planVectors {
		planByID[pv.PlanID] = pv
	}
	billingBySub := aggregateBilling(ds.Billing)

	// Left joins: every subscription row survives to here, with unresolved
	// plan columns marked instead of silently filled. The join to the user
	// relation adds no feature column (the user id already lives on the
	// subscription row), so it needs no materialization here.
	rows := make([]joinedRow, 0, len(ds.Subscriptions))
	for _, sub := range ds.Subscriptions {
		row := joinedRow{userID: sub.UserID}
		if pv, ok := planByID[sub.PlanID]; ok {
			row.planOK = true
			row.price = pv.Price
			row.autoRenewal = pv.AutoRenewal
		}
		if agg, ok := billingBySub[sub.ID]; ok {
			row.billing = agg
		}
		rows = append(rows, row)
	}

	// Drop rows whose numeric feature columns are still null. A
	// subscription pointing at a missing plan contributes nothing to its
	// user's aggregate.
	type accumulator struct {
		count          float64
		price          float64
		autoRenewal    float64
		totalBilled    float64
		avgBilled      float64
		failedPayments float64
	}
	acc := make(map[int64]*accumulator)
	order := make([]int64, 0)
	for _, row := range rows {
		if !row.planOK {
			continue
		}
		a, ok := acc[row.userID]
		if !ok {
			a = &accumulator{}
			acc[row.userID] = a
			order = append(order, row.userID)
		}
		a.count++
		a.price += row.price
		a.autoRenewal += row.autoRenewal
		a.totalBilled += row.billing.totalBilled
		a.avgBilled += row.billing.avgBilled
		a.failedPayments += row.billing.failedPayments
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	vectors := make([]recommendation.UserFeatureVector, 0, len(order))
	for _, uid := range order {
		a := acc[uid]
		vectors = append(vectors, recommendation.UserFeatureVector{
			UserID:                uid,
			MeanPrice:             a.price / a.count,
			MeanAutoRenewal:       a.autoRenewal / a.count,
			MeanTotalBilled:       a.totalBilled / a.count,
			MeanAvgBilled:         a.avgBilled / a.count,
			MeanFailedPaymentRate: a.failedPayments / a.count,
		})
	}
	return vectors, nil
}

// aggregateBilling rolls billing records up per subscription:
// sum(amount), mean(amount) and a count of non-paid records. Subscriptions
// absent from the result get the zero aggregate, never null.
func aggregateBilling(records []dataset.BillingRecord) map[int64]billingAggregate {
	type sums struct {
		total  float64
		count  float64
		failed float64
	}
	bySub := make(map[int64]*sums)
	for _, rec := range records {
		s, ok := bySub[rec.SubscriptionID]
		if !ok {
			s = &sums{}
			bySub[rec.SubscriptionID] = s
		}
		s.total += rec.Amount
		s.count++
		if rec.PaymentStatus != dataset.PaymentStatusPaid {
			s.failed++
		}
	}

	out := make(map[int64]billingAggregate, len(bySub))
	for id, s := range bySub {
		out[id] = billingAggregate{
			totalBilled:    s.total,
			avgBilled:      s.total / s.count,
			failedPayments: s.failed,
		}
	}
	return out
}
