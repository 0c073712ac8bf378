// internal/service/recommendation/recommendation_service.go
package recommendation

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"planwise-service/internal/domain/dataset"
	domain "planwise-service/internal/domain/recommendation"
	"planwise-service/internal/features"
	"planwise-service/internal/knn"
	xerrors "planwise-service/internal/pkg/errors"
	"planwise-service/internal/pkg/metrics"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultK is the recommendation count used when the caller does not ask
// for a specific one, matching the historical default of three.
const DefaultK = 3

// DatasetRepository supplies the five relations as whole in-memory tables.
type DatasetRepository interface {
	LoadDataset(ctx context.Context) (dataset.Dataset, error)
}

// ResultCache caches ranked results per (build, user, k). A nil cache is
// valid and disables caching. Implementations return a nil slice on miss.
type ResultCache interface {
	Get(ctx context.Context, buildID string, userID int64, k int) ([]domain.Recommendation, error)
	Set(ctx context.Context, buildID string, userID int64, k int, recs []domain.Recommendation) error
}

// Model is one immutable build of the recommendation state: both feature
// tables, the similarity index, and the fallback plan ordering. It is
// swapped in whole on refresh so in-flight queries keep a consistent
// snapshot; nothing in it is ever mutated after BuildModel returns.
type Model struct {
	BuildID      string
	BuiltAt      time.Time
	Users        []dataset.User
	Plans        []dataset.Plan
	UserFeatures map[int64]domain.UserFeatureVector
	PlanVectors  []domain.PlanFeatureVector
	Index        *knn.Index
	cheapest     []domain.PlanFeatureVector
}

// BuildModel runs the feature builder and constructs the similarity index
// over the resulting plan vectors. It returns a self-contained value; the
// caller decides where (and whether) to install it.
func BuildModel(ds dataset.Dataset, normalize bool) (*Model, error) {
	userVectors, planVectors, err := features.Build(ds)
	if err != nil {
		return nil, fmt.Errorf("feature build failed: %w", err)
	}

	byUser := make(map[int64]domain.UserFeatureVector, len(userVectors))
	for _, v := range userVectors {
		byUser[v.UserID] = v
	}

	var opts []knn.Option
	if normalize {
		opts = append(opts, knn.WithNormalization())
	}

	// Fallback ordering: cheapest first, plan id as the deterministic
	// tie-break.
	cheapest := make([]domain.PlanFeatureVector, len(planVectors))
	copy(cheapest, planVectors)
	sort.SliceStable(cheapest, func(i, j int) bool {
		if cheapest[i].Price != cheapest[j].Price {
			return cheapest[i].Price < cheapest[j].Price
		}
		return cheapest[i].PlanID < cheapest[j].PlanID
	})

	return &Model{
		BuildID:      ulid.Make().String(),
		BuiltAt:      time.Now().UTC(),
		Users:        ds.Users,
		Plans:        ds.Plans,
		UserFeatures: byUser,
		PlanVectors:  planVectors,
		Index:        knn.Build(planVectors, opts...),
		cheapest:     cheapest,
	}, nil
}

// Info summarizes the model for the status endpoint.
func (m *Model) Info() domain.ModelInfo {
	return domain.ModelInfo{
		BuildID:    m.BuildID,
		BuiltAt:    m.BuiltAt,
		UserCount:  len(m.UserFeatures),
		PlanCount:  len(m.PlanVectors),
		Normalized: m.Index.Normalized(),
	}
}

type RecommendationService struct {
	repo      DatasetRepository
	cache     ResultCache
	logger    *zap.Logger
	normalize bool
	model     atomic.Pointer[Model]
}

func NewRecommendationService(repo DatasetRepository, cache ResultCache, logger *zap.Logger, normalize bool) *RecommendationService {
	return &RecommendationService{
		repo:      repo,
		cache:     cache,
		logger:    logger,
		normalize: normalize,
	}
}

// Rebuild loads a fresh dataset, builds a new model and swaps it in
// atomically. A failed build leaves the currently served model untouched.
func (s *RecommendationService) Rebuild(ctx context.Context) (*Model, error) {
	start := time.Now()

	ds, err := s.repo.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	model, err := BuildModel(ds, s.normalize)
	if err != nil {
		s.logger.Error("model build failed", zap.Error(err))
		return nil, err
	}

	s.model.Store(model)
	metrics.ObserveModelBuild(time.Since(start))

	s.logger.Info("recommendation model rebuilt",
		zap.String("build_id", model.BuildID),
		zap.Int("users_with_history", len(model.UserFeatures)),
		zap.Int("plans", len(model.PlanVectors)),
		zap.Duration("took", time.Since(start)),
	)
	return model, nil
}

// Model returns the currently served snapshot, or nil before the first
// successful build.
func (s *RecommendationService) Model() *Model {
	return s.model.Load()
}

// Recommend returns up to k ranked plans for the user. Users without a
// feature vector get the cheapest plans tagged NO_HISTORY_FALLBACK; an
// unknown user id is a routine input, not an error. k must be positive.
func (s *RecommendationService) Recommend(ctx context.Context, userID int64, k int) ([]domain.Recommendation, string, error) {
	if k <= 0 {
		return nil, "", fmt.Errorf("%w: k must be positive, got %d", xerrors.ErrInvalidInput, k)
	}
	model := s.model.Load()
	if model == nil {
		return nil, "", xerrors.ErrNotReady
	}

	if cached := s.cacheGet(ctx, model.BuildID, userID, k); cached != nil {
		metrics.CountCacheHit()
		return cached, model.BuildID, nil
	}

	recs := recommendFromModel(model, userID, k)
	s.cacheSet(ctx, model.BuildID, userID, k, recs)

	if len(recs) > 0 {
		metrics.CountRecommendation(string(recs[0].Reason))
	}
	return recs, model.BuildID, nil
}

func recommendFromModel(model *Model, userID int64, k int) []domain.Recommendation {
	userVec, ok := model.UserFeatures[userID]
	if !ok {
		if k > len(model.cheapest) {
			k = len(model.cheapest)
		}
		recs := make([]domain.Recommendation, 0, k)
		for _, pv := range model.cheapest[:k] {
			recs = append(recs, domain.Recommendation{
				PlanID:      pv.PlanID,
				Name:        pv.Name,
				Price:       pv.Price,
				AutoRenewal: pv.AutoRenewal,
				Reason:      domain.ReasonNoHistoryFallback,
			})
		}
		return recs
	}

	neighbors := model.Index.Query([2]float64{userVec.MeanPrice, userVec.MeanAutoRenewal}, k)
	recs := make([]domain.Recommendation, 0, len(neighbors))
	for _, n := range neighbors {
		pv := model.PlanVectors[n.Index]
		recs = append(recs, domain.Recommendation{
			PlanID:      pv.PlanID,
			Name:        pv.Name,
			Price:       pv.Price,
			AutoRenewal: pv.AutoRenewal,
			Reason:      domain.ReasonSimilarUsers,
			Distance:    n.Distance,
		})
	}
	return recs
}

// ListUsers returns the user relation from the current snapshot, for the
// selection UI.
func (s *RecommendationService) ListUsers() ([]dataset.User, error) {
	model := s.model.Load()
	if model == nil {
		return nil, xerrors.ErrNotReady
	}
	return model.Users, nil
}

// ListPlans returns the encoded plan vectors from the current snapshot,
// for the all-plans preview.
func (s *RecommendationService) ListPlans() ([]domain.PlanFeatureVector, error) {
	model := s.model.Load()
	if model == nil {
		return nil, xerrors.ErrNotReady
	}
	return model.PlanVectors, nil
}

// Cache failures only cost us a recomputation, so they are logged at
// warn and otherwise ignored.
func (s *RecommendationService) cacheGet(ctx context.Context, buildID string, userID int64, k int) []domain.Recommendation {
	if s.cache == nil {
		return nil
	}
	recs, err := s.cache.Get(ctx, buildID, userID, k)
	if err != nil {
		s.logger.Warn("recommendation cache get failed", zap.Error(err))
		return nil
	}
	return recs
}

func (s *RecommendationService) cacheSet(ctx context.Context, buildID string, userID int64, k int, recs []domain.Recommendation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, buildID, userID, k, recs); err != nil {
		s.logger.Warn("recommendation cache set failed", zap.Error(err))
	}
}
