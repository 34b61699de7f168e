package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/analysis"
)

const (
	chartMonthly    = "monthly"
	chartTimeSeries = "timeseries"
	chartAnnual     = "annual"
)

// parseYears reads the year selection from repeated or comma-separated
// "year" parameters. Without any year and without selection=1 the default
// selection is returned; selection=1 alone means an explicit empty selection.
func parseYears(r *http.Request) ([]int, error) {
	q := r.URL.Query()
	var years []int
	for _, v := range q["year"] {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid 'year' %q (expected integer)", part)
			}
			years = append(years, y)
		}
	}
	if len(years) == 0 && q.Get("selection") != "1" {
		return append([]int(nil), analysis.DefaultSelectedYears...), nil
	}
	if years == nil {
		years = []int{}
	}
	return years, nil
}
