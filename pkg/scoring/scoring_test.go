package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeights_SumToOne(t *testing.T) {
	sum := Round2(WeightQuality + WeightDelivery + WeightPrice + WeightService + WeightCompliance)
	assert.Equal(t, 1.0, sum)
}

func TestCalculateOverallScore(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   float64
	}{
		{
			name:   "mixed scores",
			scores: Scores{Quality: 95, Delivery: 90, Price: 85, Service: 92, Compliance: 88},
			// 28.5 + 22.5 + 17 + 13.8 + 8.8
			want: 90.6,
		},
		{
			name:   "all zero",
			scores: Scores{},
			want:   0,
		},
		{
			name:   "all hundred",
			scores: Scores{Quality: 100, Delivery: 100, Price: 100, Service: 100, Compliance: 100},
			want:   100,
		},
		{
			name:   "rounds to two decimals",
			scores: Scores{Quality: 77.77, Delivery: 66.66, Price: 55.55, Service: 44.44, Compliance: 33.33},
			// 23.331 + 16.665 + 11.11 + 6.666 + 3.333 = 61.105
			want: 61.11,
		},
		{
			name:   "out of range passes through",
			scores: Scores{Quality: 150, Delivery: -20, Price: 100, Service: 100, Compliance: 100},
			// 45 - 5 + 20 + 15 + 10
			want: 85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateOverallScore(tt.scores))
		})
	}
}

func TestDetermineRating_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{100, BandExcellent},
		{90, BandExcellent},
		{89.99, BandGood},
		{80, BandGood},
		{79.99, BandSatisfactory},
		{70, BandSatisfactory},
		{69.99, BandNeedsImprovement},
		{60, BandNeedsImprovement},
		{59.99, BandPoor},
		{0, BandPoor},
		{-5, BandPoor},
		{120, BandExcellent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetermineRating(tt.score), "score %.2f", tt.score)
	}
}

func TestDetermineRating_Monotonic(t *testing.T) {
	prev := Rank(DetermineRating(-10))
	for s := -10.0; s <= 110; s += 0.25 {
		rank := Rank(DetermineRating(s))
		assert.GreaterOrEqual(t, rank, prev, "rank dropped at %.2f", s)
		prev = rank
	}
}

func TestIsLow(t *testing.T) {
	assert.True(t, IsLow(BandPoor))
	assert.True(t, IsLow(BandNeedsImprovement))
	assert.False(t, IsLow(BandSatisfactory))
	assert.False(t, IsLow(Band("unknown")))
}
