package services

import (
	"context"
	"sort"
	"time"

	"github.com/ekaya-inc/supplier-performance/pkg/events"
	"github.com/ekaya-inc/supplier-performance/pkg/models"
	"github.com/ekaya-inc/supplier-performance/pkg/repositories"
)

// snapshotter is implemented by mocks that take part in fakeTx rollbacks.
type snapshotter interface {
	snapshot() (restore func())
}

// fakeTx runs fn directly and restores its participants when fn fails.
type fakeTx struct {
	participants []snapshotter
	calls        int
}

func (t *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	restores := make([]func(), 0, len(t.participants))
	for _, p := range t.participants {
		restores = append(restores, p.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type mockEvaluationRepository struct {
	evals  map[int64]*models.Evaluation
	nextID int64

	createErr   error
	getErr      error
	finalizeErr error
	summary     *models.EvaluationAverages
	listLimit   int
}

var _ repositories.EvaluationRepository = (*mockEvaluationRepository)(nil)

func newMockEvaluationRepository() *mockEvaluationRepository {
	return &mockEvaluationRepository{evals: make(map[int64]*models.Evaluation)}
}

func (m *mockEvaluationRepository) snapshot() func() {
	saved := make(map[int64]models.Evaluation, len(m.evals))
	for id, e := range m.evals {
		saved[id] = *e
	}
	nextID := m.nextID
	return func() {
		m.evals = make(map[int64]*models.Evaluation, len(saved))
		for id, e := range saved {
			e := e
			m.evals[id] = &e
		}
		m.nextID = nextID
	}
}

func (m *mockEvaluationRepository) Create(_ context.Context, eval *models.Evaluation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	eval.ID = m.nextID
	stored := *eval
	m.evals[eval.ID] = &stored
	return nil
}

func (m *mockEvaluationRepository) GetByID(_ context.Context, id int64) (*models.Evaluation, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.evals[id]
	if !ok {
		return nil, nil
	}
	out := *e
	return &out, nil
}

func (m *mockEvaluationRepository) Finalize(_ context.Context, id int64, finalizedAt time.Time) (bool, error) {
	if m.finalizeErr != nil {
		return false, m.finalizeErr
	}
	e, ok := m.evals[id]
	if !ok || e.Status != models.EvaluationStatusDraft {
		return false, nil
	}
	e.Status = models.EvaluationStatusFinalized
	e.FinalizedAt = &finalizedAt
	e.UpdatedAt = finalizedAt
	return true, nil
}

func (m *mockEvaluationRepository) ListBySupplier(_ context.Context, supplierID int64, limit int) ([]*models.Evaluation, error) {
	m.listLimit = limit
	var out []*models.Evaluation
	for _, e := range m.evals {
		if e.SupplierID == supplierID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EvaluationDate.After(out[j].EvaluationDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockEvaluationRepository) SummarizeFinalized(context.Context, int64, time.Time, time.Time) (*models.EvaluationAverages, error) {
	if m.summary != nil {
		return m.summary, nil
	}
	return &models.EvaluationAverages{}, nil
}

type mockMetricRepository struct {
	metrics   []*models.Metric
	createErr error
	averages  []models.MetricAverage
	listLimit int
}

var _ repositories.MetricRepository = (*mockMetricRepository)(nil)

func (m *mockMetricRepository) Create(_ context.Context, metric *models.Metric) error {
	if m.createErr != nil {
		return m.createErr
	}
	metric.ID = int64(len(m.metrics) + 1)
	m.metrics = append(m.metrics, metric)
	return nil
}

func (m *mockMetricRepository) ListBySupplier(_ context.Context, _ int64, limit int) ([]*models.Metric, error) {
	m.listLimit = limit
	return m.metrics, nil
}

func (m *mockMetricRepository) AverageByType(context.Context, int64, time.Time, time.Time) ([]models.MetricAverage, error) {
	return m.averages, nil
}

type mockRatingRepository struct {
	ratings   map[int64]*models.Rating
	nextID    int64
	upsertErr error
	listLimit int
}

var _ repositories.RatingRepository = (*mockRatingRepository)(nil)

func newMockRatingRepository() *mockRatingRepository {
	return &mockRatingRepository{ratings: make(map[int64]*models.Rating)}
}

func (m *mockRatingRepository) snapshot() func() {
	saved := make(map[int64]models.Rating, len(m.ratings))
	for id, r := range m.ratings {
		saved[id] = *r
	}
	nextID := m.nextID
	return func() {
		m.ratings = make(map[int64]*models.Rating, len(saved))
		for id, r := range saved {
			r := r
			m.ratings[id] = &r
		}
		m.nextID = nextID
	}
}

func (m *mockRatingRepository) GetBySupplier(_ context.Context, supplierID int64) (*models.Rating, error) {
	r, ok := m.ratings[supplierID]
	if !ok {
		return nil, nil
	}
	out := *r
	return &out, nil
}

func (m *mockRatingRepository) Upsert(_ context.Context, rating *models.Rating) (*models.Rating, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	existing, ok := m.ratings[rating.SupplierID]
	if ok {
		existing.CurrentScore = rating.CurrentScore
		existing.Rating = rating.Rating
		existing.RatingDate = rating.RatingDate
		existing.UpdatedAt = rating.UpdatedAt
	} else {
		m.nextID++
		stored := *rating
		stored.ID = m.nextID
		m.ratings[rating.SupplierID] = &stored
		existing = &stored
	}
	out := *existing
	return &out, nil
}

func (m *mockRatingRepository) ListTop(_ context.Context, limit int) ([]*models.Rating, error) {
	m.listLimit = limit
	var out []*models.Rating
	for _, r := range m.ratings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrentScore > out[j].CurrentScore })
	return out, nil
}

// mockAllocator counts per day and gives values back on rollback.
type mockAllocator struct {
	counters map[string]int64
	err      error
	calls    int
}

func newMockAllocator() *mockAllocator {
	return &mockAllocator{counters: make(map[string]int64)}
}

func (a *mockAllocator) snapshot() func() {
	saved := make(map[string]int64, len(a.counters))
	for k, v := range a.counters {
		saved[k] = v
	}
	return func() { a.counters = saved }
}

func (a *mockAllocator) Next(_ context.Context, day time.Time) (int64, error) {
	a.calls++
	if a.err != nil {
		return 0, a.err
	}
	key := day.Format(DateLayout)
	a.counters[key]++
	return a.counters[key], nil
}

// failingPublisher rejects every event.
type failingPublisher struct {
	err error
}

func (p failingPublisher) Publish(context.Context, events.Event) error {
	return p.err
}
