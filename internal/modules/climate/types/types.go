package types

import "slices"

// MonthlyRecord is one observed month. Records are never mutated after loading.
type MonthlyRecord struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	TemperatureC float64 `json:"monthly_temperature_C"`
}

// MonthlyTable keeps records in source order.
type MonthlyTable []MonthlyRecord

// Years returns the distinct years of the table in ascending order.
func (t MonthlyTable) Years() []int {
	seen := make(map[int]bool, len(t)/12+1)
	var out []int
	for _, r := range t {
		if seen[r.Year] {
			continue
		}
		seen[r.Year] = true
		out = append(out, r.Year)
	}
	slices.Sort(out)
	return out
}

// ForYear returns the records of one year, in source order.
func (t MonthlyTable) ForYear(year int) []MonthlyRecord {
	var out []MonthlyRecord
	for _, r := range t {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

type DecadeAverage struct {
	Decade          int     `json:"decade"`
	AvgTemperatureC float64 `json:"avg_decade_temp_C"`
	Months          int     `json:"months"`
}

type AnnualAverage struct {
	Year         int     `json:"year"`
	TemperatureC float64 `json:"annual_temperature_C"`
	Months       int     `json:"months"`
}

// TrendFit is the ordinary least-squares fit of annual mean temperature on year.
type TrendFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RValue    float64 `json:"r_value"`
	PValue    float64 `json:"p_value"`
	StdErr    float64 `json:"std_err"`
	N         int     `json:"n"`
}

func (f TrendFit) RSquared() float64 {
	return f.RValue * f.RValue
}

// At evaluates the fitted line at year.
func (f TrendFit) At(year float64) float64 {
	return f.Slope*year + f.Intercept
}

// MonthlyObservation is one month published on the ingest topic.
type MonthlyObservation struct {
	Year         int      `json:"year" validate:"gt=0"`
	Month        int      `json:"month" validate:"min=1,max=12"`
	TemperatureC *float64 `json:"temperature_c" validate:"required"`
}

// Record converts a validated observation. TemperatureC must be non-nil.
func (o MonthlyObservation) Record() MonthlyRecord {
	return MonthlyRecord{Year: o.Year, Month: o.Month, TemperatureC: *o.TemperatureC}
}
