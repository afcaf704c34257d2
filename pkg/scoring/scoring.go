// Package scoring turns per-category evaluation scores into an overall score
// and maps a numeric score to a rating band.
package scoring

import (
	"github.com/shopspring/decimal"
)

// Band is a qualitative rating tier.
type Band string

const (
	BandExcellent        Band = "excellent"
	BandGood             Band = "good"
	BandSatisfactory     Band = "satisfactory"
	BandNeedsImprovement Band = "needs_improvement"
	BandPoor             Band = "poor"
)

// Category weights. They sum to 1.00.
const (
	WeightQuality    = 0.30
	WeightDelivery   = 0.25
	WeightPrice      = 0.20
	WeightService    = 0.15
	WeightCompliance = 0.10
)

// Band thresholds, evaluated high to low.
const (
	ThresholdExcellent    = 90.0
	ThresholdGood         = 80.0
	ThresholdSatisfactory = 70.0
	ThresholdNeedsWork    = 60.0
)

// Scores holds the five category scores of an evaluation.
// Values are expected in 0-100 but are not clamped.
type Scores struct {
	Quality    float64
	Delivery   float64
	Price      float64
	Service    float64
	Compliance float64
}

// CalculateOverallScore returns the weighted sum of the category scores rounded to 2 decimals.
func CalculateOverallScore(s Scores) float64 {
	total := decimal.NewFromFloat(s.Quality).Mul(decimal.NewFromFloat(WeightQuality)).
		Add(decimal.NewFromFloat(s.Delivery).Mul(decimal.NewFromFloat(WeightDelivery))).
		Add(decimal.NewFromFloat(s.Price).Mul(decimal.NewFromFloat(WeightPrice))).
		Add(decimal.NewFromFloat(s.Service).Mul(decimal.NewFromFloat(WeightService))).
		Add(decimal.NewFromFloat(s.Compliance).Mul(decimal.NewFromFloat(WeightCompliance)))
	return total.Round(2).InexactFloat64()
}

// DetermineRating maps a score to its band. The first threshold the score reaches wins.
func DetermineRating(score float64) Band {
	switch {
	case score >= ThresholdExcellent:
		return BandExcellent
	case score >= ThresholdGood:
		return BandGood
	case score >= ThresholdSatisfactory:
		return BandSatisfactory
	case score >= ThresholdNeedsWork:
		return BandNeedsImprovement
	default:
		return BandPoor
	}
}

// Round2 rounds v half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Rank orders bands from worst (0) to best (4). Unknown bands rank -1.
func Rank(b Band) int {
	switch b {
	case BandPoor:
		return 0
	case BandNeedsImprovement:
		return 1
	case BandSatisfactory:
		return 2
	case BandGood:
		return 3
	case BandExcellent:
		return 4
	default:
		return -1
	}
}

// IsLow reports whether b is a band that warrants attention.
func IsLow(b Band) bool {
	return b == BandNeedsImprovement || b == BandPoor
}
