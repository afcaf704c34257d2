package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

func sampleEvaluation() *Evaluation {
	return &Evaluation{
		ID:              7,
		SupplierID:      12,
		QualityScore:    95,
		DeliveryScore:   90,
		PriceScore:      85,
		ServiceScore:    92,
		ComplianceScore: 88,
		OverallScore:    90.5,
		Status:          EvaluationStatusDraft,
	}
}

func TestEvaluation_RatingAndAreas(t *testing.T) {
	e := sampleEvaluation()

	assert.Equal(t, scoring.BandExcellent, e.Band())
	assert.Equal(t, "Excellent", e.RatingLabel())
	assert.Equal(t, AreaPrice, e.WeakestArea())
	assert.Equal(t, AreaQuality, e.StrongestArea())
}

func TestEvaluation_RatingLabels(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{90, "Excellent"},
		{85, "Good"},
		{70, "Satisfactory"},
		{65.5, "Needs Improvement"},
		{12, "Poor"},
	}
	for _, tt := range tests {
		e := &Evaluation{OverallScore: tt.score}
		assert.Equal(t, tt.want, e.RatingLabel(), "score %.2f", tt.score)
	}
}

func TestEvaluation_AreasAllEqual_FirstWins(t *testing.T) {
	e := &Evaluation{QualityScore: 80, DeliveryScore: 80, PriceScore: 80, ServiceScore: 80, ComplianceScore: 80}

	assert.Equal(t, AreaQuality, e.WeakestArea())
	assert.Equal(t, AreaQuality, e.StrongestArea())
}

func TestEvaluation_AreasTieBreakFollowsOrder(t *testing.T) {
	e := &Evaluation{QualityScore: 90, DeliveryScore: 60, PriceScore: 90, ServiceScore: 60, ComplianceScore: 75}

	assert.Equal(t, AreaDelivery, e.WeakestArea())
	assert.Equal(t, AreaQuality, e.StrongestArea())
}

func TestEvaluation_StatusPredicates(t *testing.T) {
	e := sampleEvaluation()
	assert.True(t, e.IsDraft())
	assert.False(t, e.IsFinalized())

	e.Status = EvaluationStatusFinalized
	assert.False(t, e.IsDraft())
	assert.True(t, e.IsFinalized())
}

func TestEvaluationFromRow_Defaults(t *testing.T) {
	e := EvaluationFromRow(map[string]any{
		"id":          int64(3),
		"supplier_id": int32(12),
	})

	assert.Equal(t, int64(3), e.ID)
	assert.Equal(t, int64(12), e.SupplierID)
	assert.Equal(t, EvaluationStatusDraft, e.Status)
	assert.Equal(t, 0.0, e.OverallScore)
	assert.Nil(t, e.FinalizedAt)
	assert.True(t, e.CreatedAt.IsZero())
}

func TestEvaluation_ToMapRoundTripsThroughFromRow(t *testing.T) {
	finalized := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	e := sampleEvaluation()
	e.EvaluationNumber = "SPE-2026-0001"
	e.ReferenceDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	e.EvaluatorID = 5
	e.EvaluationDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	e.PeriodStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e.PeriodEnd = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	e.Status = EvaluationStatusFinalized
	e.FinalizedAt = &finalized
	e.Comments = "solid quarter"

	got := EvaluationFromRow(e.ToMap())

	require.NotNil(t, got.FinalizedAt)
	assert.Equal(t, e, got)
}

func TestEvaluation_ToMapNullFinalizedAt(t *testing.T) {
	m := sampleEvaluation().ToMap()

	v, ok := m["finalized_at"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Len(t, m, 20)
}
