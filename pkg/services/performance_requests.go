package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ekaya-inc/supplier-performance/pkg/apperrors"
	"github.com/ekaya-inc/supplier-performance/pkg/scoring"
)

// DateLayout is the wire format of every date accepted by the performance service.
const DateLayout = "2006-01-02"

// CreateEvaluationRequest is the input to CreateEvaluation.
// Missing category scores count as zero.
type CreateEvaluationRequest struct {
	SupplierID      int64    `json:"supplier_id" validate:"gt=0"`
	EvaluatorID     int64    `json:"evaluator_id" validate:"gt=0"`
	EvaluationDate  string   `json:"evaluation_date" validate:"omitempty,datetime=2006-01-02"`
	PeriodStart     string   `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd       string   `json:"period_end" validate:"required,datetime=2006-01-02"`
	QualityScore    *float64 `json:"quality_score"`
	DeliveryScore   *float64 `json:"delivery_score"`
	PriceScore      *float64 `json:"price_score"`
	ServiceScore    *float64 `json:"service_score"`
	ComplianceScore *float64 `json:"compliance_score"`
	Comments        string   `json:"comments"`
	Recommendations string   `json:"recommendations"`
}

// TrackMetricRequest is the input to TrackMetric.
type TrackMetricRequest struct {
	SupplierID  int64    `json:"supplier_id" validate:"gt=0"`
	MetricType  string   `json:"metric_type" validate:"required,max=100"`
	MetricDate  string   `json:"metric_date" validate:"omitempty,datetime=2006-01-02"`
	Value       *float64 `json:"metric_value" validate:"required"`
	TargetValue *float64 `json:"target_value"`
	Unit        string   `json:"unit" validate:"max=32"`
	Period      string   `json:"period" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	Notes       string   `json:"notes"`
	RecordedBy  *int64   `json:"recorded_by" validate:"omitempty,gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so callers can map errors back to inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of req and returns the failures keyed by field.
func validateStruct(req any) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return map[string]string{}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be a positive integer"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// parse checks req and returns its parsed dates. today fills a missing evaluation date.
func (req *CreateEvaluationRequest) parse(today time.Time) (evalDate, start, end time.Time, err error) {
	fields := validateStruct(req)
	for name, score := range req.scores() {
		if score != nil && !finite(*score) {
			fields[name] = "must be a finite number"
		}
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, time.Time{}, apperrors.Validation(fields)
	}

	// Layouts were checked by the datetime tag.
	start, _ = time.Parse(DateLayout, req.PeriodStart)
	end, _ = time.Parse(DateLayout, req.PeriodEnd)
	if end.Before(start) {
		return time.Time{}, time.Time{}, time.Time{}, apperrors.Validation(map[string]string{
			"period_end": "must not be before period_start",
		})
	}

	evalDate = today
	if req.EvaluationDate != "" {
		evalDate, _ = time.Parse(DateLayout, req.EvaluationDate)
	}
	return evalDate, start, end, nil
}

func (req *CreateEvaluationRequest) scores() map[string]*float64 {
	return map[string]*float64{
		"quality_score":    req.QualityScore,
		"delivery_score":   req.DeliveryScore,
		"price_score":      req.PriceScore,
		"service_score":    req.ServiceScore,
		"compliance_score": req.ComplianceScore,
	}
}

// parse trims and checks req and returns its parsed metric date. today fills a missing date.
func (req *TrackMetricRequest) parse(today time.Time) (time.Time, error) {
	req.MetricType = strings.TrimSpace(req.MetricType)

	fields := validateStruct(req)
	if req.Value != nil && !finite(*req.Value) {
		fields["metric_value"] = "must be a finite number"
	}
	if req.TargetValue != nil && !finite(*req.TargetValue) {
		fields["target_value"] = "must be a finite number"
	}
	if len(fields) > 0 {
		return time.Time{}, apperrors.Validation(fields)
	}

	if req.MetricDate == "" {
		return today, nil
	}
	metricDate, _ := time.Parse(DateLayout, req.MetricDate)
	return metricDate, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// scoreOrZero returns v rounded to the 2 decimals scores are stored with, or 0 when v is absent.
func scoreOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return scoring.Round2(*v)
}
