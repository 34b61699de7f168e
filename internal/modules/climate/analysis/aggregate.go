// Package analysis derives decade and annual aggregates, the year partition
// used by the monthly overlay chart, and the annual trend fit.
package analysis

import (
	"slices"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

// DefaultSelectedYears is the selection shown before the user picks any years.
var DefaultSelectedYears = []int{2020, 2021, 2022, 2023, 2024}

// DecadeOf returns the first year of the decade containing year (floor division).
func DecadeOf(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

type meanAcc struct {
	sum float64
	n   int
}

// DecadeAverages groups the table by decade and averages every monthly value
// in the group. Output is ordered by decade ascending.
func DecadeAverages(table types.MonthlyTable) []types.DecadeAverage {
	acc := make(map[int]*meanAcc)
	for _, r := range table {
		d := DecadeOf(r.Year)
		a, ok := acc[d]
		if !ok {
			a = &meanAcc{}
			acc[d] = a
		}
		a.sum += r.TemperatureC
		a.n++
	}

	out := make([]types.DecadeAverage, 0, len(acc))
	for d, a := range acc {
		out = append(out, types.DecadeAverage{
			Decade:          d,
			AvgTemperatureC: a.sum / float64(a.n),
			Months:          a.n,
		})
	}
	slices.SortFunc(out, func(a, b types.DecadeAverage) int { return a.Decade - b.Decade })
	return out
}

// AnnualAverages averages each year over the months present for it. Incomplete
// years are not weighted or backfilled.
func AnnualAverages(table types.MonthlyTable) []types.AnnualAverage {
	acc := make(map[int]*meanAcc)
	for _, r := range table {
		a, ok := acc[r.Year]
		if !ok {
			a = &meanAcc{}
			acc[r.Year] = a
		}
		a.sum += r.TemperatureC
		a.n++
	}

	out := make([]types.AnnualAverage, 0, len(acc))
	for y, a := range acc {
		out = append(out, types.AnnualAverage{
			Year:         y,
			TemperatureC: a.sum / float64(a.n),
			Months:       a.n,
		})
	}
	slices.SortFunc(out, func(a, b types.AnnualAverage) int { return a.Year - b.Year })
	return out
}

// SelectYears keeps the requested years that exist in available, ascending and
// without duplicates.
func SelectYears(available, requested []int) []int {
	have := make(map[int]bool, len(available))
	for _, y := range available {
		have[y] = true
	}
	var out []int
	for _, y := range requested {
		if have[y] && !slices.Contains(out, y) {
			out = append(out, y)
		}
	}
	slices.Sort(out)
	return out
}

// YearGroups describes how selected years are split for the overlay chart.
type YearGroups struct {
	HistoricalFrom int
	HistoricalTo   int
	Highlighted    []int
	Latest         int
}

// Partition is the result of PartitionYears. Every slice is ascending.
type Partition struct {
	Historical  []int
	Highlighted []int
	Latest      int
	HasLatest   bool
}

// Empty reports whether no selected year falls into any group.
func (p Partition) Empty() bool {
	return len(p.Historical) == 0 && len(p.Highlighted) == 0 && !p.HasLatest
}

// PartitionYears splits the selection into historical, highlighted and latest
// years. Years belonging to no group are dropped.
func PartitionYears(selected []int, groups YearGroups) Partition {
	var p Partition
	sorted := slices.Clone(selected)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, y := range sorted {
		switch {
		case y == groups.Latest:
			p.Latest = y
			p.HasLatest = true
		case slices.Contains(groups.Highlighted, y):
			p.Highlighted = append(p.Highlighted, y)
		case y >= groups.HistoricalFrom && y <= groups.HistoricalTo:
			p.Historical = append(p.Historical, y)
		}
	}
	return p
}
