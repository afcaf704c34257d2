package models

import (
	"math"
	"time"

	"github.com/ekaya-inc/supplier-performance/pkg/rowutil"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

// Metric period granularities.
const (
	MetricPeriodDaily     = "daily"
	MetricPeriodWeekly    = "weekly"
	MetricPeriodMonthly   = "monthly"
	MetricPeriodQuarterly = "quarterly"
	MetricPeriodYearly    = "yearly"
)

// ValidMetricPeriod reports whether p is a known period granularity.
func ValidMetricPeriod(p string) bool {
	switch p {
	case MetricPeriodDaily, MetricPeriodWeekly, MetricPeriodMonthly, MetricPeriodQuarterly, MetricPeriodYearly:
		return true
	}
	return false
}

// Metric is one dated observation of a supplier along one axis, stored in supplier_metrics.
// MetricType is a free-form key such as "on_time_delivery_rate".
type Metric struct {
	ID          int64     `json:"id"`
	SupplierID  int64     `json:"supplier_id"`
	MetricType  string    `json:"metric_type"`
	MetricDate  time.Time `json:"metric_date"`
	Value       float64   `json:"metric_value"`
	TargetValue *float64  `json:"target_value,omitempty"`
	Unit        string    `json:"unit"`
	Period      string    `json:"period"`
	Notes       string    `json:"notes"`
	RecordedBy  *int64    `json:"recorded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MetricFromRow builds a Metric from a storage row. Period defaults to monthly.
func MetricFromRow(row map[string]any) *Metric {
	return &Metric{
		ID:          rowutil.Int64(row["id"]),
		SupplierID:  rowutil.Int64(row["supplier_id"]),
		MetricType:  rowutil.String(row["metric_type"]),
		MetricDate:  rowutil.Time(row["metric_date"]),
		Value:       rowutil.Float(row["metric_value"]),
		TargetValue: rowutil.OptionalFloat(row["target_value"]),
		Unit:        rowutil.String(row["unit"]),
		Period:      rowutil.StringOr(row["period"], MetricPeriodMonthly),
		Notes:       rowutil.String(row["notes"]),
		RecordedBy:  rowutil.OptionalInt64(row["recorded_by"]),
		CreatedAt:   rowutil.Time(row["created_at"]),
	}
}

// ToMap returns every stored field keyed by column name.
func (m *Metric) ToMap() map[string]any {
	var target, recordedBy any
	if m.TargetValue != nil {
		target = *m.TargetValue
	}
	if m.RecordedBy != nil {
		recordedBy = *m.RecordedBy
	}
	return map[string]any{
		"id":           m.ID,
		"supplier_id":  m.SupplierID,
		"metric_type":  m.MetricType,
		"metric_date":  m.MetricDate,
		"metric_value": m.Value,
		"target_value": target,
		"unit":         m.Unit,
		"period":       m.Period,
		"notes":        m.Notes,
		"recorded_by":  recordedBy,
		"created_at":   m.CreatedAt,
	}
}

// MeetsTarget returns nil when no target is set, otherwise whether Value >= TargetValue.
// Higher is always better; lower-is-better metric types are not distinguished.
func (m *Metric) MeetsTarget() *bool {
	if m.TargetValue == nil {
		return nil
	}
	ok := m.Value >= *m.TargetValue
	return &ok
}

// PerformancePercentage returns Value/TargetValue*100 rounded to 2 decimals,
// or nil when the target is absent or zero or the ratio is not finite.
func (m *Metric) PerformancePercentage() *float64 {
	if m.TargetValue == nil || *m.TargetValue == 0 {
		return nil
	}
	ratio := m.Value / *m.TargetValue * 100
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil
	}
	pct := scoring.Round2(ratio)
	return &pct
}
