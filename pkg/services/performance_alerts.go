package services

import (
	"fmt"

	"github.com/ekaya-inc/supplier-performance/pkg/events"
	"github.com/ekaya-inc/supplier-performance/pkg/models"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

// ratingAlerts returns the alerts raised by a rating write.
func (s *performanceService) ratingAlerts(rating, previous *models.Rating) []events.Event {
	if !s.cfg.AlertsEnabled {
		return nil
	}

	var alerts []events.Event
	if rating.NeedsImprovement() {
		alerts = append(alerts, events.NewPerformanceAlert(s.now(), rating.SupplierID, events.AlertTypeLowRating,
			fmt.Sprintf("Supplier %d is rated %s with a score of %.2f", rating.SupplierID, rating.Label(), rating.CurrentScore),
			map[string]any{
				"rating": rating.Rating,
				"score":  rating.CurrentScore,
			}))
	}

	if previous != nil && scoring.Rank(rating.Band()) < scoring.Rank(previous.Band()) {
		alerts = append(alerts, events.NewPerformanceAlert(s.now(), rating.SupplierID, events.AlertTypeRatingDowngrade,
			fmt.Sprintf("Supplier %d dropped from %s to %s", rating.SupplierID, previous.Label(), rating.Label()),
			map[string]any{
				"previous_rating": previous.Rating,
				"previous_score":  previous.CurrentScore,
				"rating":          rating.Rating,
				"score":           rating.CurrentScore,
			}))
	}
	return alerts
}

// metricAlerts returns the alerts raised by a tracked metric.
func (s *performanceService) metricAlerts(metric *models.Metric) []events.Event {
	if !s.cfg.AlertsEnabled {
		return nil
	}
	meets := metric.MeetsTarget()
	if meets == nil || *meets {
		return nil
	}

	alertCtx := map[string]any{
		"metric_id":    metric.ID,
		"metric_type":  metric.MetricType,
		"metric_value": metric.Value,
		"target_value": *metric.TargetValue,
	}
	if pct := metric.PerformancePercentage(); pct != nil {
		alertCtx["performance_percentage"] = *pct
	}

	return []events.Event{
		events.NewPerformanceAlert(s.now(), metric.SupplierID, events.AlertTypeMetricBelowTarget,
			fmt.Sprintf("Supplier %d %s of %g is below target %g", metric.SupplierID, metric.MetricType, metric.Value, *metric.TargetValue),
			alertCtx),
	}
}
