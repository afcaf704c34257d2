package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/supplier-performance/pkg/apperrors"
	"github.com/ekaya-inc/supplier-performance/pkg/config"
	"github.com/ekaya-inc/supplier-performance/pkg/events"
	"github.com/ekaya-inc/supplier-performance/pkg/models"
	"github.com/ekaya-inc/supplier-performance/pkg/references"
	"github.com/ekaya-inc/supplier-performance/pkg/repositories"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

const (
	entityEvaluation = "evaluation"
	actionFinalize   = "finalize"
)

// Transactor runs fn in one database transaction carried by ctx.
// *database.DB implements it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PerformanceService records supplier evaluations and metrics and maintains each supplier's rating.
type PerformanceService interface {
	// CreateEvaluation validates req, allocates a reference and stores a draft evaluation.
	CreateEvaluation(ctx context.Context, req *CreateEvaluationRequest) (*models.Evaluation, error)

	// FinalizeEvaluation moves a draft evaluation to finalized and refreshes the supplier's rating
	// from its overall score in the same transaction.
	FinalizeEvaluation(ctx context.Context, id int64) (*models.Evaluation, error)

	// TrackMetric validates and stores one metric observation.
	TrackMetric(ctx context.Context, req *TrackMetricRequest) (*models.Metric, error)

	// UpdateSupplierRating sets the supplier's current score and band.
	UpdateSupplierRating(ctx context.Context, supplierID int64, score float64) (*models.Rating, error)

	// GetEvaluation returns an evaluation or a not-found error.
	GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error)

	// GetSupplierRating returns the supplier's rating, or nil if it has none yet.
	GetSupplierRating(ctx context.Context, supplierID int64) (*models.Rating, error)

	GetSupplierEvaluations(ctx context.Context, supplierID int64, limit int) ([]*models.Evaluation, error)
	GetSupplierMetrics(ctx context.Context, supplierID int64, limit int) ([]*models.Metric, error)
	GetTopSuppliers(ctx context.Context, limit int) ([]*models.Rating, error)

	// GetPerformanceSummary aggregates finalized evaluations and metrics dated within [start, end].
	GetPerformanceSummary(ctx context.Context, supplierID int64, start, end time.Time) (*models.PerformanceSummary, error)
}

type performanceService struct {
	evaluations repositories.EvaluationRepository
	metrics     repositories.MetricRepository
	ratings     repositories.RatingRepository
	tx          Transactor
	allocator   references.Allocator
	publisher   events.Publisher
	cfg         config.PerformanceConfig
	now         func() time.Time
	logger      *zap.Logger
}

// NewPerformanceService creates a new performance service.
func NewPerformanceService(
	evaluations repositories.EvaluationRepository,
	metrics repositories.MetricRepository,
	ratings repositories.RatingRepository,
	tx Transactor,
	allocator references.Allocator,
	publisher events.Publisher,
	cfg config.PerformanceConfig,
	logger *zap.Logger,
) PerformanceService {
	return &performanceService{
		evaluations: evaluations,
		metrics:     metrics,
		ratings:     ratings,
		tx:          tx,
		allocator:   allocator,
		publisher:   publisher,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.Named("performance-service"),
	}
}

var _ PerformanceService = (*performanceService)(nil)

func (s *performanceService) CreateEvaluation(ctx context.Context, req *CreateEvaluationRequest) (*models.Evaluation, error) {
	now := s.now()
	today := references.Day(now)

	evalDate, start, end, err := req.parse(today)
	if err != nil {
		return nil, err
	}

	eval := &models.Evaluation{
		ReferenceDate:   today,
		SupplierID:      req.SupplierID,
		EvaluatorID:     req.EvaluatorID,
		EvaluationDate:  evalDate,
		PeriodStart:     start,
		PeriodEnd:       end,
		QualityScore:    scoreOrZero(req.QualityScore),
		DeliveryScore:   scoreOrZero(req.DeliveryScore),
		PriceScore:      scoreOrZero(req.PriceScore),
		ServiceScore:    scoreOrZero(req.ServiceScore),
		ComplianceScore: scoreOrZero(req.ComplianceScore),
		Status:          models.EvaluationStatusDraft,
		Comments:        req.Comments,
		Recommendations: req.Recommendations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	eval.OverallScore = scoring.CalculateOverallScore(eval.Scores())

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		seq, err := s.allocator.Next(ctx, today)
		if err != nil {
			return err
		}
		eval.EvaluationNumber = references.Format(s.cfg.ReferencePrefix, today.Year(), seq)
		return s.evaluations.Create(ctx, eval)
	})
	if err != nil {
		s.logger.Error("Failed to create evaluation",
			zap.Int64("supplier_id", req.SupplierID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Evaluation created",
		zap.Int64("evaluation_id", eval.ID),
		zap.String("evaluation_number", eval.EvaluationNumber),
		zap.Int64("supplier_id", eval.SupplierID),
		zap.Float64("overall_score", eval.OverallScore))

	if err := s.publish(ctx, events.NewEvaluationCreated(s.now(), eval.ID, eval.EvaluationNumber,
		eval.SupplierID, eval.EvaluatorID, eval.OverallScore)); err != nil {
		return nil, err
	}
	return eval, nil
}

func (s *performanceService) FinalizeEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	eval, err := s.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !eval.IsDraft() {
		return nil, apperrors.InvalidTransition(entityEvaluation, id, eval.Status, actionFinalize)
	}

	finalizedAt := s.now()
	var rating, previous *models.Rating

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.evaluations.Finalize(ctx, id, finalizedAt)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race with another finalize between the read and the update.
			return apperrors.InvalidTransition(entityEvaluation, id, models.EvaluationStatusFinalized, actionFinalize)
		}
		rating, previous, err = s.writeRating(ctx, eval.SupplierID, eval.OverallScore, finalizedAt)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to finalize evaluation",
			zap.Int64("evaluation_id", id),
			zap.Int64("supplier_id", eval.SupplierID),
			zap.Error(err))
		return nil, err
	}

	finalized, err := s.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Evaluation finalized",
		zap.Int64("evaluation_id", id),
		zap.Int64("supplier_id", finalized.SupplierID),
		zap.String("rating", rating.Rating))

	stamp := finalizedAt
	if finalized.FinalizedAt != nil {
		stamp = *finalized.FinalizedAt
	}
	err = s.publish(ctx, events.NewEvaluationFinalized(s.now(), finalized.ID, finalized.EvaluationNumber,
		finalized.SupplierID, finalized.OverallScore, string(finalized.Band()), stamp))
	if err != nil {
		return nil, err
	}
	if err := s.publishRatingChange(ctx, rating, previous); err != nil {
		return nil, err
	}
	return finalized, nil
}

func (s *performanceService) UpdateSupplierRating(ctx context.Context, supplierID int64, score float64) (*models.Rating, error) {
	if supplierID <= 0 {
		return nil, apperrors.Validation(map[string]string{"supplier_id": "must be a positive integer"})
	}
	if !finite(score) {
		return nil, apperrors.Validation(map[string]string{"score": "must be a finite number"})
	}

	var rating, previous *models.Rating
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		rating, previous, err = s.writeRating(ctx, supplierID, score, s.now())
		return err
	})
	if err != nil {
		s.logger.Error("Failed to update supplier rating",
			zap.Int64("supplier_id", supplierID),
			zap.Error(err))
		return nil, err
	}

	if err := s.publishRatingChange(ctx, rating, previous); err != nil {
		return nil, err
	}
	return rating, nil
}

// writeRating upserts the supplier's rating and returns it with the row it replaced, if any.
func (s *performanceService) writeRating(ctx context.Context, supplierID int64, score float64, now time.Time) (*models.Rating, *models.Rating, error) {
	previous, err := s.ratings.GetBySupplier(ctx, supplierID)
	if err != nil {
		return nil, nil, err
	}

	// The band is taken from the stored 2-decimal score so the two always agree.
	rounded := scoring.Round2(score)
	rating, err := s.ratings.Upsert(ctx, &models.Rating{
		SupplierID:   supplierID,
		CurrentScore: rounded,
		Rating:       string(scoring.DetermineRating(rounded)),
		RatingDate:   references.Day(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, nil, err
	}
	return rating, previous, nil
}

func (s *performanceService) publishRatingChange(ctx context.Context, rating, previous *models.Rating) error {
	var prevScore *float64
	var prevRating string
	if previous != nil {
		score := previous.CurrentScore
		prevScore, prevRating = &score, previous.Rating
	}

	if err := s.publish(ctx, events.NewRatingUpdated(s.now(), rating.SupplierID, rating.CurrentScore,
		rating.Rating, prevScore, prevRating)); err != nil {
		return err
	}
	return s.publishAll(ctx, s.ratingAlerts(rating, previous))
}

func (s *performanceService) TrackMetric(ctx context.Context, req *TrackMetricRequest) (*models.Metric, error) {
	now := s.now()

	metricDate, err := req.parse(references.Day(now))
	if err != nil {
		return nil, err
	}

	period := req.Period
	if period == "" {
		period = models.MetricPeriodMonthly
	}

	metric := &models.Metric{
		SupplierID:  req.SupplierID,
		MetricType:  req.MetricType,
		MetricDate:  metricDate,
		Value:       *req.Value,
		TargetValue: req.TargetValue,
		Unit:        req.Unit,
		Period:      period,
		Notes:       req.Notes,
		RecordedBy:  req.RecordedBy,
		CreatedAt:   now,
	}

	if err := s.metrics.Create(ctx, metric); err != nil {
		s.logger.Error("Failed to track metric",
			zap.Int64("supplier_id", req.SupplierID),
			zap.String("metric_type", req.MetricType),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("Metric tracked",
		zap.Int64("metric_id", metric.ID),
		zap.Int64("supplier_id", metric.SupplierID),
		zap.String("metric_type", metric.MetricType))

	if err := s.publish(ctx, events.NewMetricTracked(s.now(), metric.ID, metric.SupplierID, metric.MetricType,
		metric.Value, metric.TargetValue, metric.MeetsTarget())); err != nil {
		return nil, err
	}
	if err := s.publishAll(ctx, s.metricAlerts(metric)); err != nil {
		return nil, err
	}
	return metric, nil
}

func (s *performanceService) GetEvaluation(ctx context.Context, id int64) (*models.Evaluation, error) {
	eval, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, apperrors.NotFound(entityEvaluation, id)
	}
	return eval, nil
}

func (s *performanceService) GetSupplierRating(ctx context.Context, supplierID int64) (*models.Rating, error) {
	return s.ratings.GetBySupplier(ctx, supplierID)
}

func (s *performanceService) GetSupplierEvaluations(ctx context.Context, supplierID int64, limit int) ([]*models.Evaluation, error) {
	return s.evaluations.ListBySupplier(ctx, supplierID, s.listLimit(limit))
}

func (s *performanceService) GetSupplierMetrics(ctx context.Context, supplierID int64, limit int) ([]*models.Metric, error) {
	return s.metrics.ListBySupplier(ctx, supplierID, s.listLimit(limit))
}

func (s *performanceService) GetTopSuppliers(ctx context.Context, limit int) ([]*models.Rating, error) {
	return s.ratings.ListTop(ctx, s.listLimit(limit))
}

func (s *performanceService) GetPerformanceSummary(ctx context.Context, supplierID int64, start, end time.Time) (*models.PerformanceSummary, error) {
	start, end = references.Day(start), references.Day(end)
	if end.Before(start) {
		return nil, apperrors.Validation(map[string]string{"period_end": "must not be before period_start"})
	}

	evals, err := s.evaluations.SummarizeFinalized(ctx, supplierID, start, end)
	if err != nil {
		return nil, fmt.Errorf("evaluation averages: %w", err)
	}
	metrics, err := s.metrics.AverageByType(ctx, supplierID, start, end)
	if err != nil {
		return nil, fmt.Errorf("metric averages: %w", err)
	}
	rating, err := s.ratings.GetBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("current rating: %w", err)
	}

	return &models.PerformanceSummary{
		SupplierID:  supplierID,
		PeriodStart: start,
		PeriodEnd:   end,
		Evaluations: *evals,
		Metrics:     metrics,
		Rating:      rating,
	}, nil
}

// listLimit maps a non-positive limit to the default and caps the rest at the maximum.
func (s *performanceService) listLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if s.cfg.MaxListLimit > 0 && limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}
	return limit
}

func (s *performanceService) publish(ctx context.Context, event events.Event) error {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event", event.EventName()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
		return fmt.Errorf("publish %s: %w", event.EventName(), err)
	}
	return nil
}

func (s *performanceService) publishAll(ctx context.Context, evts []events.Event) error {
	var errs []error
	for _, e := range evts {
		if err := s.publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
