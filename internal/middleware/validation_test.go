package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bioinsights/internal/errors"
)

type aggregateQuery struct {
	Dimensions string `query:"dimensions" validate:"dimensions"`
	Metric     string `query:"metric" validate:"metric"`
	From       string `query:"from" validate:"isodate"`
	Top        int    `query:"top" validate:"min=0,max=100"`
	Format     string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

func TestQueryValidator_Struct(t *testing.T) {
	tests := []struct {
		name       string
		query      aggregateQuery
		wantFields []string
	}{
		{
			name:  "valid",
			query: aggregateQuery{Dimensions: "state,month", Metric: "total", From: "2023-01-05", Top: 3, Format: "xlsx"},
		},
		{
			name:  "empty optional values",
			query: aggregateQuery{},
		},
		{
			name:       "unknown dimension",
			query:      aggregateQuery{Dimensions: "state,country"},
			wantFields: []string{"dimensions"},
		},
		{
			name:       "bad date and metric",
			query:      aggregateQuery{Metric: "age", From: "05-01-2023"},
			wantFields: []string{"metric", "from"},
		},
		{
			name:       "top out of range and unknown format",
			query:      aggregateQuery{Top: 101, Format: "pdf"},
			wantFields: []string{"top", "format"},
		},
	}

	v := NewQueryValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.query)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)

			var fields []string
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}
