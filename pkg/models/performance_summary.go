package models

import "time"

// EvaluationAverages aggregates finalized evaluations in a window.
// Averages are nil when Count is zero.
type EvaluationAverages struct {
	Count           int64    `json:"count"`
	AvgQuality      *float64 `json:"avg_quality,omitempty"`
	AvgDelivery     *float64 `json:"avg_delivery,omitempty"`
	AvgPrice        *float64 `json:"avg_price,omitempty"`
	AvgService      *float64 `json:"avg_service,omitempty"`
	AvgCompliance   *float64 `json:"avg_compliance,omitempty"`
	AvgOverallScore *float64 `json:"avg_overall_score,omitempty"`
}

// MetricAverage is the mean value of one metric type in a window.
type MetricAverage struct {
	MetricType   string  `json:"metric_type"`
	AverageValue float64 `json:"average_value"`
	Count        int64   `json:"count"`
}

// PerformanceSummary is the read-only report returned for a supplier and date window.
type PerformanceSummary struct {
	SupplierID  int64              `json:"supplier_id"`
	PeriodStart time.Time          `json:"period_start"`
	PeriodEnd   time.Time          `json:"period_end"`
	Evaluations EvaluationAverages `json:"evaluations"`
	Metrics     []MetricAverage    `json:"metrics"`
	Rating      *Rating            `json:"current_rating,omitempty"`
}
