// internal/knn/index.go
package knn

import (
	"math"
	"sort"

	"planwise-service/internal/domain/recommendation"
)

// Neighbor is one query result: a plan and its Euclidean distance to the
// query vector, in the index's raw or normalized feature space.
type Neighbor struct {
	PlanID   int64
	Index    int
	Distance float64
}

// Index is an immutable nearest-neighbor structure over plan vectors in
// the 2-d (price, autoRenewal) feature space. Build once, query from any
// number of goroutines; a data refresh means building a fresh Index.
type Index struct {
	planIDs    []int64
	points     [][2]float64
	normalized bool
	mins       [2]float64
	ranges     [2]float64
}

// Option configures index construction.
type Option func(*Index)

// WithNormalization enables opt-in min-max scaling of both dimensions
// before distance computation. The default keeps raw units: price and the
// 0/1 flag are deliberately left unscaled for output compatibility with
// the historical behavior.
func WithNormalization() Option {
	return func(idx *Index) { idx.normalized = true }
}

// Build constructs an index over the given plan vectors. Plan order is
// preserved: it is the tie-break order for equidistant neighbors.
func Build(plans []recommendation.PlanFeatureVector, opts ...Option) *Index {
	idx := &Index{
		planIDs: make([]int64, len(plans)),
		points:  make([][2]float64, len(plans)),
	}
	for _, opt := range opts {
		opt(idx)
	}

	for i, p := range plans {
		idx.planIDs[i] = p.PlanID
		idx.points[i] = [2]float64{p.Price, p.AutoRenewal}
	}

	if idx.normalized && len(plans) > 0 {
		idx.fitScaler()
		for i := range idx.points {
			idx.points[i] = idx.scale(idx.points[i])
		}
	}
	return idx
}

// Len reports how many plan vectors are indexed.
func (idx *Index) Len() int {
	return len(idx.planIDs)
}

// Normalized reports whether min-max scaling is active.
func (idx *Index) Normalized() bool {
	return idx.normalized
}

// Query returns the k nearest plans to the query vector, ascending by
// Euclidean distance, ties broken by plan table index so results are
// deterministic. k larger than the number of indexed plans is clamped
// rather than rejected.
func (idx *Index) Query(vec [2]float64, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	if k > len(idx.planIDs) {
		k = len(idx.planIDs)
	}

	if idx.normalized {
		vec = idx.scale(vec)
	}

	neighbors := make([]Neighbor, len(idx.planIDs))
	for i, pt := range idx.points {
		dx := pt[0] - vec[0]
		dy := pt[1] - vec[1]
		neighbors[i] = Neighbor{
			PlanID:   idx.planIDs[i],
			Index:    i,
			Distance: math.Sqrt(dx*dx + dy*dy),
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Index < neighbors[j].Index
	})

	return neighbors[:k]
}

func (idx *Index) fitScaler() {
	for d := 0; d < 2; d++ {
		minV, maxV := idx.points[0][d], idx.points[0][d]
		for _, pt := range idx.points {
			if pt[d] < minV {
				minV = pt[d]
			}
			if pt[d] > maxV {
				maxV = pt[d]
			}
		}
		idx.mins[d] = minV
		idx.ranges[d] = maxV - minV
	}
}

func (idx *Index) scale(vec [2]float64) [2]float64 {
	for d := 0; d < 2; d++ {
		if idx.ranges[d] > 0 {
			vec[d] = (vec[d] - idx.mins[d]) / idx.ranges[d]
		} else {
			vec[d] = 0
		}
	}
	return vec
}
