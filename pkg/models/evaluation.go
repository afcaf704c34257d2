package models

import (
	"time"

	"github.com/ekaya-inc/supplier-performance/pkg/rowutil"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

// Evaluation statuses. The only transition is draft -> finalized.
const (
	EvaluationStatusDraft     = "draft"
	EvaluationStatusFinalized = "finalized"
)

// Performance area labels, in tie-break order.
const (
	AreaQuality    = "Quality"
	AreaDelivery   = "Delivery"
	AreaPrice      = "Price"
	AreaService    = "Service"
	AreaCompliance = "Compliance"
)

// Evaluation is one supplier's assessment for a period, stored in supplier_evaluations.
// ReferenceDate is the day whose sequence produced EvaluationNumber.
type Evaluation struct {
	ID               int64      `json:"id"`
	EvaluationNumber string     `json:"evaluation_number"`
	ReferenceDate    time.Time  `json:"reference_date"`
	SupplierID       int64      `json:"supplier_id"`
	EvaluatorID      int64      `json:"evaluator_id"`
	EvaluationDate   time.Time  `json:"evaluation_date"`
	PeriodStart      time.Time  `json:"period_start"`
	PeriodEnd        time.Time  `json:"period_end"`
	QualityScore     float64    `json:"quality_score"`
	DeliveryScore    float64    `json:"delivery_score"`
	PriceScore       float64    `json:"price_score"`
	ServiceScore     float64    `json:"service_score"`
	ComplianceScore  float64    `json:"compliance_score"`
	OverallScore     float64    `json:"overall_score"`
	Status           string     `json:"status"`
	Comments         string     `json:"comments"`
	Recommendations  string     `json:"recommendations"`
	FinalizedAt      *time.Time `json:"finalized_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EvaluationFromRow builds an Evaluation from a storage row.
// Missing or malformed fields take their zero value; status defaults to draft.
func EvaluationFromRow(row map[string]any) *Evaluation {
	return &Evaluation{
		ID:               rowutil.Int64(row["id"]),
		EvaluationNumber: rowutil.String(row["evaluation_number"]),
		ReferenceDate:    rowutil.Time(row["reference_date"]),
		SupplierID:       rowutil.Int64(row["supplier_id"]),
		EvaluatorID:      rowutil.Int64(row["evaluator_id"]),
		EvaluationDate:   rowutil.Time(row["evaluation_date"]),
		PeriodStart:      rowutil.Time(row["period_start"]),
		PeriodEnd:        rowutil.Time(row["period_end"]),
		QualityScore:     rowutil.Float(row["quality_score"]),
		DeliveryScore:    rowutil.Float(row["delivery_score"]),
		PriceScore:       rowutil.Float(row["price_score"]),
		ServiceScore:     rowutil.Float(row["service_score"]),
		ComplianceScore:  rowutil.Float(row["compliance_score"]),
		OverallScore:     rowutil.Float(row["overall_score"]),
		Status:           rowutil.StringOr(row["status"], EvaluationStatusDraft),
		Comments:         rowutil.String(row["comments"]),
		Recommendations:  rowutil.String(row["recommendations"]),
		FinalizedAt:      rowutil.OptionalTime(row["finalized_at"]),
		CreatedAt:        rowutil.Time(row["created_at"]),
		UpdatedAt:        rowutil.Time(row["updated_at"]),
	}
}

// ToMap returns every stored field keyed by column name.
func (e *Evaluation) ToMap() map[string]any {
	var finalizedAt any
	if e.FinalizedAt != nil {
		finalizedAt = *e.FinalizedAt
	}
	return map[string]any{
		"id":                e.ID,
		"evaluation_number": e.EvaluationNumber,
		"reference_date":    e.ReferenceDate,
		"supplier_id":       e.SupplierID,
		"evaluator_id":      e.EvaluatorID,
		"evaluation_date":   e.EvaluationDate,
		"period_start":      e.PeriodStart,
		"period_end":        e.PeriodEnd,
		"quality_score":     e.QualityScore,
		"delivery_score":    e.DeliveryScore,
		"price_score":       e.PriceScore,
		"service_score":     e.ServiceScore,
		"compliance_score":  e.ComplianceScore,
		"overall_score":     e.OverallScore,
		"status":            e.Status,
		"comments":          e.Comments,
		"recommendations":   e.Recommendations,
		"finalized_at":      finalizedAt,
		"created_at":        e.CreatedAt,
		"updated_at":        e.UpdatedAt,
	}
}

// IsDraft reports whether the evaluation can still be finalized.
func (e *Evaluation) IsDraft() bool {
	return e.Status == EvaluationStatusDraft
}

// IsFinalized reports whether the evaluation has been finalized.
func (e *Evaluation) IsFinalized() bool {
	return e.Status == EvaluationStatusFinalized
}

// Scores returns the five category scores.
func (e *Evaluation) Scores() scoring.Scores {
	return scoring.Scores{
		Quality:    e.QualityScore,
		Delivery:   e.DeliveryScore,
		Price:      e.PriceScore,
		Service:    e.ServiceScore,
		Compliance: e.ComplianceScore,
	}
}

// Band classifies the overall score.
func (e *Evaluation) Band() scoring.Band {
	return scoring.DetermineRating(e.OverallScore)
}

// RatingLabel returns the display label for the overall score, e.g. "Needs Improvement".
func (e *Evaluation) RatingLabel() string {
	return BandLabel(e.Band())
}

// WeakestArea returns the label of the lowest category score.
// Ties go to the earliest area in Quality, Delivery, Price, Service, Compliance order.
func (e *Evaluation) WeakestArea() string {
	areas := e.areas()
	weakest := areas[0]
	for _, a := range areas[1:] {
		if a.score < weakest.score {
			weakest = a
		}
	}
	return weakest.label
}

// StrongestArea returns the label of the highest category score, with the same tie-break as WeakestArea.
func (e *Evaluation) StrongestArea() string {
	areas := e.areas()
	strongest := areas[0]
	for _, a := range areas[1:] {
		if a.score > strongest.score {
			strongest = a
		}
	}
	return strongest.label
}

type areaScore struct {
	label string
	score float64
}

func (e *Evaluation) areas() []areaScore {
	return []areaScore{
		{AreaQuality, e.QualityScore},
		{AreaDelivery, e.DeliveryScore},
		{AreaPrice, e.PriceScore},
		{AreaService, e.ServiceScore},
		{AreaCompliance, e.ComplianceScore},
	}
}
