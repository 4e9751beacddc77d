// Package query parses the query string filters used by the API.
package query

import (
	"time"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/internal/model"
	"github.com/dense-analysis/fxwave/pkg/lax"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime reads a timestamp in RFC 3339 or YYYY-MM-DD form.
//
// Values without a zone are taken as UTC. An empty value gives the zero time.
func ParseTime(path, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, apperr.Invalid(path, "must be an RFC 3339 timestamp or a YYYY-MM-DD date")
}

// TimeRange reads the "from" and "to" parameters.
func TimeRange(request *lax.Request) (model.TimeRange, error) {
	var issues apperr.Issues
	var timeRange model.TimeRange
	var err error

	timeRange.From, err = ParseTime("from", request.Query("from"))
	issues.Merge(err)
	timeRange.To, err = ParseTime("to", request.Query("to"))
	issues.Merge(err)

	if len(issues) == 0 {
		issues.Merge(timeRange.Validate())
	}

	return timeRange, issues.Err()
}

// Pair reads and normalizes a required "pair" parameter.
func Pair(request *lax.Request) (string, error) {
	return model.NormalizePair(request.Query("pair"))
}

// AlertFilter reads the optional "pair" and "since" parameters.
func AlertFilter(request *lax.Request) (model.AlertFilter, error) {
	var issues apperr.Issues
	var filter model.AlertFilter
	var err error

	if value := request.Query("pair"); value != "" {
		filter.Pair, err = model.NormalizePair(value)
		issues.Merge(err)
	}

	filter.Since, err = ParseTime("since", request.Query("since"))
	issues.Merge(err)

	return filter, issues.Err()
}
