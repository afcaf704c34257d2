// Package events defines the notifications emitted by the performance service
// and the dispatchers that deliver them.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names.
const (
	NameEvaluationCreated   = "supplier_evaluation.created"
	NameEvaluationFinalized = "supplier_evaluation.finalized"
	NameMetricTracked       = "supplier_metric.tracked"
	NameRatingUpdated       = "supplier_rating.updated"
	NamePerformanceAlert    = "supplier_performance.alert"
)

// Alert types carried by PerformanceAlert.
const (
	AlertTypeLowRating         = "low_rating"
	AlertTypeRatingDowngrade   = "rating_downgrade"
	AlertTypeMetricBelowTarget = "metric_below_target"
)

// Event is a timestamped notification.
type Event interface {
	EventName() string
	EventID() uuid.UUID
	OccurredAt() time.Time
}

// Publisher hands events to whatever delivers them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Meta is embedded in every event and is stamped at construction.
type Meta struct {
	ID        uuid.UUID `json:"event_id"`
	Name      string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

func newMeta(name string, now time.Time) Meta {
	return Meta{ID: uuid.New(), Name: name, Timestamp: now}
}

func (m Meta) EventName() string     { return m.Name }
func (m Meta) EventID() uuid.UUID    { return m.ID }
func (m Meta) OccurredAt() time.Time { return m.Timestamp }

// EvaluationCreated is emitted after a draft evaluation is stored.
type EvaluationCreated struct {
	Meta
	EvaluationID     int64   `json:"evaluation_id"`
	EvaluationNumber string  `json:"evaluation_number"`
	SupplierID       int64   `json:"supplier_id"`
	EvaluatorID      int64   `json:"evaluator_id"`
	OverallScore     float64 `json:"overall_score"`
}

// NewEvaluationCreated stamps an EvaluationCreated at now.
func NewEvaluationCreated(now time.Time, evaluationID int64, number string, supplierID, evaluatorID int64, overall float64) *EvaluationCreated {
	return &EvaluationCreated{
		Meta:             newMeta(NameEvaluationCreated, now),
		EvaluationID:     evaluationID,
		EvaluationNumber: number,
		SupplierID:       supplierID,
		EvaluatorID:      evaluatorID,
		OverallScore:     overall,
	}
}

// EvaluationFinalized is emitted after an evaluation is finalized and the supplier's rating written.
type EvaluationFinalized struct {
	Meta
	EvaluationID     int64     `json:"evaluation_id"`
	EvaluationNumber string    `json:"evaluation_number"`
	SupplierID       int64     `json:"supplier_id"`
	OverallScore     float64   `json:"overall_score"`
	Rating           string    `json:"rating"`
	FinalizedAt      time.Time `json:"finalized_at"`
}

// NewEvaluationFinalized stamps an EvaluationFinalized at now.
func NewEvaluationFinalized(now time.Time, evaluationID int64, number string, supplierID int64, overall float64, rating string, finalizedAt time.Time) *EvaluationFinalized {
	return &EvaluationFinalized{
		Meta:             newMeta(NameEvaluationFinalized, now),
		EvaluationID:     evaluationID,
		EvaluationNumber: number,
		SupplierID:       supplierID,
		OverallScore:     overall,
		Rating:           rating,
		FinalizedAt:      finalizedAt,
	}
}

// MetricTracked is emitted for every recorded metric. MeetsTarget is nil without a target.
type MetricTracked struct {
	Meta
	MetricID    int64    `json:"metric_id"`
	SupplierID  int64    `json:"supplier_id"`
	MetricType  string   `json:"metric_type"`
	Value       float64  `json:"metric_value"`
	TargetValue *float64 `json:"target_value,omitempty"`
	MeetsTarget *bool    `json:"meets_target,omitempty"`
}

// NewMetricTracked stamps a MetricTracked at now.
func NewMetricTracked(now time.Time, metricID, supplierID int64, metricType string, value float64, target *float64, meets *bool) *MetricTracked {
	return &MetricTracked{
		Meta:        newMeta(NameMetricTracked, now),
		MetricID:    metricID,
		SupplierID:  supplierID,
		MetricType:  metricType,
		Value:       value,
		TargetValue: target,
		MeetsTarget: meets,
	}
}

// RatingUpdated is emitted on every rating write. PreviousRating is empty for a supplier's first rating.
type RatingUpdated struct {
	Meta
	SupplierID     int64    `json:"supplier_id"`
	Score          float64  `json:"score"`
	Rating         string   `json:"rating"`
	PreviousScore  *float64 `json:"previous_score,omitempty"`
	PreviousRating string   `json:"previous_rating,omitempty"`
}

// NewRatingUpdated stamps a RatingUpdated at now.
func NewRatingUpdated(now time.Time, supplierID int64, score float64, rating string, previousScore *float64, previousRating string) *RatingUpdated {
	return &RatingUpdated{
		Meta:           newMeta(NameRatingUpdated, now),
		SupplierID:     supplierID,
		Score:          score,
		Rating:         rating,
		PreviousScore:  previousScore,
		PreviousRating: previousRating,
	}
}

// PerformanceAlert flags a low rating, a downgrade or a metric below its target.
type PerformanceAlert struct {
	Meta
	SupplierID int64          `json:"supplier_id"`
	AlertType  string         `json:"alert_type"`
	Message    string         `json:"message"`
	Context    map[string]any `json:"context,omitempty"`
}

// NewPerformanceAlert stamps a PerformanceAlert at now. ctx carries the alert's details.
func NewPerformanceAlert(now time.Time, supplierID int64, alertType, message string, ctx map[string]any) *PerformanceAlert {
	return &PerformanceAlert{
		Meta:       newMeta(NamePerformanceAlert, now),
		SupplierID: supplierID,
		AlertType:  alertType,
		Message:    message,
		Context:    ctx,
	}
}
