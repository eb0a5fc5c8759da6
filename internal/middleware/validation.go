package middleware

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bioinsights/internal/dataprocessing"
	apierrors "bioinsights/internal/errors"
	"bioinsights/pkg/contracts/domain"
)

// QueryValidator validates decoded query parameter structs. Field names in
// errors come from the `query` struct tag.
type QueryValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewQueryValidator creates a validator with the dashboard's custom tags:
// isodate, dimensions and metric.
func NewQueryValidator(logger *slog.Logger) *QueryValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	v.RegisterValidation("isodate", isISODate)
	v.RegisterValidation("dimensions", isDimensionList)
	v.RegisterValidation("metric", isMetric)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "query_validator")),
	}
}

// Struct validates v and returns an *apierrors.APIError listing every failed
// field.
func (q *QueryValidator) Struct(v interface{}) error {
	err := q.validator.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}

	q.logger.Debug("query validation failed", slog.Int("fields", len(out)))
	return apierrors.NewValidationErrors(out)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, strings.ToLower(param))
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", field)
	case "dimensions":
		return fmt.Sprintf("%s must list dimensions from: state, district, date, month", field)
	case "metric":
		return fmt.Sprintf("%s must be one of: %s, %s, %s", field,
			dataprocessing.MetricAge5To17, dataprocessing.MetricAge17Plus, dataprocessing.MetricTotal)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

func isDimensionList(fl validator.FieldLevel) bool {
	_, err := dataprocessing.ParseDimensions(fl.Field().String())
	return err == nil
}

func isMetric(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := dataprocessing.ParseMetric(s)
	return err == nil
}
