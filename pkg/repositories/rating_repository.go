package repositories

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/supplier-performance/pkg/database"
	"github.com/ekaya-inc/supplier-performance/pkg/models"
)

const ratingsTable = "supplier_ratings"

// RatingRepository defines the interface for supplier rating data access.
// A supplier has at most one rating row.
type RatingRepository interface {
	// GetBySupplier returns the supplier's rating (nil if not rated yet).
	GetBySupplier(ctx context.Context, supplierID int64) (*models.Rating, error)

	// Upsert writes the supplier's rating. An existing row keeps its id and created_at.
	Upsert(ctx context.Context, rating *models.Rating) (*models.Rating, error)

	// ListTop returns up to limit ratings, highest score first.
	ListTop(ctx context.Context, limit int) ([]*models.Rating, error)
}

type ratingRepository struct {
	store database.Store
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(store database.Store) RatingRepository {
	return &ratingRepository{store: store}
}

var _ RatingRepository = (*ratingRepository)(nil)

func (r *ratingRepository) GetBySupplier(ctx context.Context, supplierID int64) (*models.Rating, error) {
	row, err := r.store.FetchOne(ctx, `
		SELECT * FROM supplier_ratings
		WHERE supplier_id = $1`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return models.RatingFromRow(row), nil
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	fields := rating.ToMap()
	delete(fields, "id")

	row, err := r.store.Upsert(ctx, ratingsTable, fields,
		[]string{"supplier_id"},
		[]string{"current_score", "rating", "rating_date", "updated_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("failed to upsert rating: no row returned")
	}
	return models.RatingFromRow(row), nil
}

func (r *ratingRepository) ListTop(ctx context.Context, limit int) ([]*models.Rating, error) {
	rows, err := r.store.FetchAll(ctx, `
		SELECT * FROM supplier_ratings
		ORDER BY current_score DESC, supplier_id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top ratings: %w", err)
	}

	ratings := make([]*models.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, models.RatingFromRow(row))
	}
	return ratings, nil
}
