package models

import (
	"time"

	"github.com/ekaya-inc/supplier-performance/pkg/rowutil"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

const (
	unknownBandLabel = "Not Rated"
	unknownBandColor = "gray"
)

var bandLabels = map[scoring.Band]string{
	scoring.BandExcellent:        "Excellent",
	scoring.BandGood:             "Good",
	scoring.BandSatisfactory:     "Satisfactory",
	scoring.BandNeedsImprovement: "Needs Improvement",
	scoring.BandPoor:             "Poor",
}

var bandColors = map[scoring.Band]string{
	scoring.BandExcellent:        "green",
	scoring.BandGood:             "blue",
	scoring.BandSatisfactory:     "yellow",
	scoring.BandNeedsImprovement: "orange",
	scoring.BandPoor:             "red",
}

// BandLabel returns the display label for b, or "Not Rated" for an unknown band.
func BandLabel(b scoring.Band) string {
	if label, ok := bandLabels[b]; ok {
		return label
	}
	return unknownBandLabel
}

// BandColor returns the display color for b, or "gray" for an unknown band.
func BandColor(b scoring.Band) string {
	if color, ok := bandColors[b]; ok {
		return color
	}
	return unknownBandColor
}

// Rating is the single current derived rating of a supplier, stored in supplier_ratings.
type Rating struct {
	ID           int64     `json:"id"`
	SupplierID   int64     `json:"supplier_id"`
	CurrentScore float64   `json:"current_score"`
	Rating       string    `json:"rating"`
	RatingDate   time.Time `json:"rating_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RatingFromRow builds a Rating from a storage row.
func RatingFromRow(row map[string]any) *Rating {
	return &Rating{
		ID:           rowutil.Int64(row["id"]),
		SupplierID:   rowutil.Int64(row["supplier_id"]),
		CurrentScore: rowutil.Float(row["current_score"]),
		Rating:       rowutil.String(row["rating"]),
		RatingDate:   rowutil.Time(row["rating_date"]),
		CreatedAt:    rowutil.Time(row["created_at"]),
		UpdatedAt:    rowutil.Time(row["updated_at"]),
	}
}

// ToMap returns every stored field keyed by column name.
func (r *Rating) ToMap() map[string]any {
	return map[string]any{
		"id":            r.ID,
		"supplier_id":   r.SupplierID,
		"current_score": r.CurrentScore,
		"rating":        r.Rating,
		"rating_date":   r.RatingDate,
		"created_at":    r.CreatedAt,
		"updated_at":    r.UpdatedAt,
	}
}

// Band returns the stored rating as a scoring band.
func (r *Rating) Band() scoring.Band {
	return scoring.Band(r.Rating)
}

// Label returns the display label of the band.
func (r *Rating) Label() string {
	return BandLabel(r.Band())
}

// Color returns the display color of the band.
func (r *Rating) Color() string {
	return BandColor(r.Band())
}

// IsExcellent reports whether the supplier is in the excellent band.
func (r *Rating) IsExcellent() bool {
	return r.Band() == scoring.BandExcellent
}

// NeedsImprovement is true for the needs_improvement and poor bands.
func (r *Rating) NeedsImprovement() bool {
	return scoring.IsLow(r.Band())
}
