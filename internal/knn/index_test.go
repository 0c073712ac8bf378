package knn

import (
	"testing"

	"planwise-service/internal/domain/recommendation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlans() []recommendation.PlanFeatureVector {
	return []recommendation.PlanFeatureVector{
		{PlanID: 1, Name: "Basic", Price: 9.99, AutoRenewal: 1},
		{PlanID: 2, Name: "Lite", Price: 5.00, AutoRenewal: 0},
		{PlanID: 3, Name: "Premium", Price: 14.99, AutoRenewal: 1},
	}
}

func TestQueryNearest(t *testing.T) {
	idx := Build(testPlans())

	// A user averaging (10.0, 1.0) sits 0.01 from Basic and 5.0 from
	// Premium in raw units.
	got := idx.Query([2]float64{10.0, 1.0}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].PlanID)
	assert.InDelta(t, 0.01, got[0].Distance, 1e-9)
}

func TestQueryOrdering(t *testing.T) {
	idx := Build(testPlans())

	got := idx.Query([2]float64{10.0, 1.0}, 3)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
	assert.Equal(t, int64(1), got[0].PlanID)
	assert.Equal(t, int64(3), got[1].PlanID)
	assert.Equal(t, int64(2), got[2].PlanID)
}

func TestQueryTieBreakByTableIndex(t *testing.T) {
	plans := []recommendation.PlanFeatureVector{
		{PlanID: 7, Price: 10, AutoRenewal: 1},
		{PlanID: 3, Price: 10, AutoRenewal: 1},
		{PlanID: 5, Price: 10, AutoRenewal: 1},
	}
	idx := Build(plans)

	got := idx.Query([2]float64{10, 1}, 3)
	require.Len(t, got, 3)
	// Equidistant plans come back in first-seen table order, not id order.
	assert.Equal(t, []int64{7, 3, 5}, []int64{got[0].PlanID, got[1].PlanID, got[2].PlanID})
}

func TestQueryClampsK(t *testing.T) {
	idx := Build(testPlans())

	got := idx.Query([2]float64{0, 0}, 10)
	assert.Len(t, got, 3)

	assert.Nil(t, idx.Query([2]float64{0, 0}, 0))
	assert.Nil(t, idx.Query([2]float64{0, 0}, -1))
}

func TestQueryEmptyIndex(t *testing.T) {
	idx := Build(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Query([2]float64{1, 1}, 3))
}

func TestQueryNormalized(t *testing.T) {
	// In raw units the price dimension dwarfs the flag; plan 2 (price 95,
	// no renewal) is nearer to (90, 1) than plan 1 (price 80, renewal).
	plans := []recommendation.PlanFeatureVector{
		{PlanID: 1, Price: 80, AutoRenewal: 1},
		{PlanID: 2, Price: 95, AutoRenewal: 0},
	}

	raw := Build(plans)
	got := raw.Query([2]float64{90, 1}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].PlanID)
	assert.False(t, raw.Normalized())

	// Min-max scaling puts both dimensions on [0,1]; the matching renewal
	// flag now outweighs the price gap.
	norm := Build(plans, WithNormalization())
	got = norm.Query([2]float64{90, 1}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].PlanID)
	assert.True(t, norm.Normalized())
}

func TestQueryDeterministic(t *testing.T) {
	idx := Build(testPlans())

	first := idx.Query([2]float64{7.5, 0.5}, 3)
	second := idx.Query([2]float64{7.5, 0.5}, 3)
	assert.Equal(t, first, second)
}
