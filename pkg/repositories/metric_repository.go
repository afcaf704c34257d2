package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
	"github.com/ekaya-inc/supplier-performance/pkg/models"
	"github.com/ekaya-inc/supplier-performance/pkg/rowutil"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

const metricsTable = "supplier_metrics"

// MetricRepository defines the interface for supplier metric data access.
type MetricRepository interface {
	// Create inserts a new metric and sets its ID.
	Create(ctx context.Context, metric *models.Metric) error

	// ListBySupplier returns up to limit metrics, newest metric date first.
	ListBySupplier(ctx context.Context, supplierID int64, limit int) ([]*models.Metric, error)

	// AverageByType returns the mean value per metric type for metrics dated within [start, end].
	AverageByType(ctx context.Context, supplierID int64, start, end time.Time) ([]models.MetricAverage, error)
}

type metricRepository struct {
	store database.Store
}

// NewMetricRepository creates a new metric repository.
func NewMetricRepository(store database.Store) MetricRepository {
	return &metricRepository{store: store}
}

var _ MetricRepository = (*metricRepository)(nil)

func (r *metricRepository) Create(ctx context.Context, metric *models.Metric) error {
	fields := metric.ToMap()
	delete(fields, "id")

	id, err := r.store.Insert(ctx, metricsTable, fields)
	if err != nil {
		return fmt.Errorf("failed to create metric: %w", err)
	}
	metric.ID = id
	return nil
}

func (r *metricRepository) ListBySupplier(ctx context.Context, supplierID int64, limit int) ([]*models.Metric, error) {
	rows, err := r.store.FetchAll(ctx, `
		SELECT * FROM supplier_metrics
		WHERE supplier_id = $1
		ORDER BY metric_date DESC, id DESC
		LIMIT $2`, supplierID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	metrics := make([]*models.Metric, 0, len(rows))
	for _, row := range rows {
		metrics = append(metrics, models.MetricFromRow(row))
	}
	return metrics, nil
}

func (r *metricRepository) AverageByType(ctx context.Context, supplierID int64, start, end time.Time) ([]models.MetricAverage, error) {
	rows, err := r.store.FetchAll(ctx, `
		SELECT metric_type, AVG(metric_value) AS average_value, COUNT(*) AS metric_count
		FROM supplier_metrics
		WHERE supplier_id = $1
		  AND metric_date BETWEEN $2 AND $3
		GROUP BY metric_type
		ORDER BY metric_type`, supplierID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to average metrics: %w", err)
	}

	avgs := make([]models.MetricAverage, 0, len(rows))
	for _, row := range rows {
		avgs = append(avgs, models.MetricAverage{
			MetricType:   rowutil.String(row["metric_type"]),
			AverageValue: scoring.Round2(rowutil.Float(row["average_value"])),
			Count:        rowutil.Int64(row["metric_count"]),
		})
	}
	return avgs, nil
}

// rounded converts an aggregate to a 2-dp float, keeping NULL as nil.
func rounded(v any) *float64 {
	f := rowutil.OptionalFloat(v)
	if f == nil {
		return nil
	}
	r := scoring.Round2(*f)
	return &r
}
