package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
	"github.com/ekaya-inc/supplier-performance/pkg/models"
	"github.com/ekaya-inc/supplier-performance/pkg/rowutil"
)

const evaluationsTable = "supplier_evaluations"

// EvaluationRepository defines the interface for supplier evaluation data access.
type EvaluationRepository interface {
	// Create inserts a new evaluation and sets its ID.
	Create(ctx context.Context, eval *models.Evaluation) error

	// GetByID returns an evaluation (nil if not found).
	GetByID(ctx context.Context, id int64) (*models.Evaluation, error)

	// Finalize moves a draft evaluation to finalized.
	// Returns false when the evaluation is missing or no longer a draft.
	Finalize(ctx context.Context, id int64, finalizedAt time.Time) (bool, error)

	// ListBySupplier returns up to limit evaluations, newest evaluation date first.
	ListBySupplier(ctx context.Context, supplierID int64, limit int) ([]*models.Evaluation, error)

	// SummarizeFinalized averages the finalized evaluations dated within [start, end].
	SummarizeFinalized(ctx context.Context, supplierID int64, start, end time.Time) (*models.EvaluationAverages, error)
}

type evaluationRepository struct {
	store database.Store
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(store database.Store) EvaluationRepository {
	return &evaluationRepository{store: store}
}

var _ EvaluationRepository = (*evaluationRepository)(nil)

func (r *evaluationRepository) Create(ctx context.Context, eval *models.Evaluation) error {
	fields := eval.ToMap()
	delete(fields, "id")

	id, err := r.store.Insert(ctx, evaluationsTable, fields)
	if err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	eval.ID = id
	return nil
}

func (r *evaluationRepository) GetByID(ctx context.Context, id int64) (*models.Evaluation, error) {
	row, err := r.store.FetchOne(ctx, `
		SELECT * FROM supplier_evaluations
		WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return models.EvaluationFromRow(row), nil
}

func (r *evaluationRepository) Finalize(ctx context.Context, id int64, finalizedAt time.Time) (bool, error) {
	n, err := r.store.Update(ctx, evaluationsTable,
		map[string]any{
			"status":       models.EvaluationStatusFinalized,
			"finalized_at": finalizedAt,
			"updated_at":   finalizedAt,
		},
		map[string]any{
			"id":     id,
			"status": models.EvaluationStatusDraft,
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to finalize evaluation: %w", err)
	}
	return n == 1, nil
}

func (r *evaluationRepository) ListBySupplier(ctx context.Context, supplierID int64, limit int) ([]*models.Evaluation, error) {
	rows, err := r.store.FetchAll(ctx, `
		SELECT * FROM supplier_evaluations
		WHERE supplier_id = $1
		ORDER BY evaluation_date DESC, id DESC
		LIMIT $2`, supplierID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}

	evals := make([]*models.Evaluation, 0, len(rows))
	for _, row := range rows {
		evals = append(evals, models.EvaluationFromRow(row))
	}
	return evals, nil
}

func (r *evaluationRepository) SummarizeFinalized(ctx context.Context, supplierID int64, start, end time.Time) (*models.EvaluationAverages, error) {
	row, err := r.store.FetchOne(ctx, `
		SELECT
			COUNT(*)              AS evaluation_count,
			AVG(quality_score)    AS avg_quality,
			AVG(delivery_score)   AS avg_delivery,
			AVG(price_score)      AS avg_price,
			AVG(service_score)    AS avg_service,
			AVG(compliance_score) AS avg_compliance,
			AVG(overall_score)    AS avg_overall_score
		FROM supplier_evaluations
		WHERE supplier_id = $1
		  AND status = $2
		  AND evaluation_date BETWEEN $3 AND $4`,
		supplierID, models.EvaluationStatusFinalized, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize evaluations: %w", err)
	}

	avgs := &models.EvaluationAverages{}
	if row == nil {
		return avgs, nil
	}
	avgs.Count = rowutil.Int64(row["evaluation_count"])
	avgs.AvgQuality = rounded(row["avg_quality"])
	avgs.AvgDelivery = rounded(row["avg_delivery"])
	avgs.AvgPrice = rounded(row["avg_price"])
	avgs.AvgService = rounded(row["avg_service"])
	avgs.AvgCompliance = rounded(row["avg_compliance"])
	avgs.AvgOverallScore = rounded(row["avg_overall_score"])
	return avgs, nil
}
