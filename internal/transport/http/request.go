package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"bioinsights/internal/dataprocessing"
	apierrors "bioinsights/internal/errors"
	"bioinsights/internal/exporter"
	"bioinsights/internal/services"
	"bioinsights/pkg/contracts/domain"
)

// selectionQuery holds the state and date filters shared by every
// filtered endpoint.
type selectionQuery struct {
	States string `query:"states"`
	From   string `query:"from" validate:"isodate,required_with=To"`
	To     string `query:"to" validate:"isodate,required_with=From"`
}

type dashboardQuery struct {
	States string `query:"states" validate:"required"`
	From   string `query:"from" validate:"isodate,required_with=To"`
	To     string `query:"to" validate:"isodate,required_with=From"`
}

type aggregateQuery struct {
	selectionQuery
	Dimensions string `query:"dimensions" validate:"dimensions"`
	Metric     string `query:"metric" validate:"metric"`
	Top        int    `query:"top" validate:"min=0,max=100"`
}

type exportQuery struct {
	aggregateQuery
	Format string `query:"format" validate:"omitempty,oneof=csv xlsx"`
}

func readSelection(r *http.Request) selectionQuery {
	q := r.URL.Query()
	return selectionQuery{
		States: strings.TrimSpace(q.Get("states")),
		From:   strings.TrimSpace(q.Get("from")),
		To:     strings.TrimSpace(q.Get("to")),
	}
}

func readAggregate(r *http.Request) (aggregateQuery, error) {
	q := r.URL.Query()
	aq := aggregateQuery{
		selectionQuery: readSelection(r),
		Dimensions:     strings.TrimSpace(q.Get("dimensions")),
		Metric:         strings.TrimSpace(q.Get("metric")),
	}
	if raw := strings.TrimSpace(q.Get("top")); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil {
			return aq, apierrors.ErrValidation("top", "top must be an integer")
		}
		aq.Top = top
	}
	return aq, nil
}

// selection converts validated filters. Dates were checked by the isodate
// tag so parse errors cannot occur here.
func (sq selectionQuery) selection() dataprocessing.Selection {
	sel := dataprocessing.Selection{States: splitList(sq.States)}
	if sq.From != "" && sq.To != "" {
		from, _ := time.Parse(domain.DateLayout, sq.From)
		to, _ := time.Parse(domain.DateLayout, sq.To)
		rng := dataprocessing.NewDateRange(from, to)
		sel.Range = &rng
	}
	return sel
}

func (aq aggregateQuery) toService() services.AggregateQuery {
	dims, _ := dataprocessing.ParseDimensions(aq.Dimensions)
	metric, _ := dataprocessing.ParseMetric(aq.Metric)
	return services.AggregateQuery{
		Selection:  aq.selection(),
		Dimensions: dims,
		Metric:     metric,
		Top:        aq.Top,
	}
}

func (eq exportQuery) format() exporter.Format {
	if eq.Format == "" {
		return exporter.FormatCSV
	}
	f, _ := exporter.ParseFormat(eq.Format)
	return f
}

// splitList splits a comma-separated parameter, dropping blanks and
// duplicates while keeping order.
func splitList(raw string) []string {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
