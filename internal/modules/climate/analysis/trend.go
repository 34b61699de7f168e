package analysis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

// ErrDegenerateFit is returned when fewer than two points are given or all
// years are identical.
var ErrDegenerateFit = errors.New("trend fit needs at least two distinct years")

// tiny keeps the t statistic finite when |r| == 1.
const tiny = 1.0e-20

// FitTrend regresses annual mean temperature on year by ordinary least squares.
// The p-value is two-sided for the null hypothesis slope == 0.
func FitTrend(annual []types.AnnualAverage) (types.TrendFit, error) {
	n := len(annual)
	if n < 2 {
		return types.TrendFit{}, ErrDegenerateFit
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, a := range annual {
		xs[i] = float64(a.Year)
		ys[i] = a.TemperatureC
	}

	varX := stat.Variance(xs, nil)
	if varX == 0 {
		return types.TrendFit{}, ErrDegenerateFit
	}
	varY := stat.Variance(ys, nil)

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	r := 0.0
	if varY != 0 {
		r = stat.Correlation(xs, ys, nil)
		r = math.Max(-1, math.Min(1, r))
	}

	fit := types.TrendFit{
		Slope:     slope,
		Intercept: intercept,
		RValue:    r,
		N:         n,
	}

	if n == 2 {
		if ys[0] == ys[1] {
			fit.PValue = 1
		} else {
			fit.PValue = 0
		}
		fit.StdErr = 0
		return fit, nil
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/((1.0-r+tiny)*(1.0+r+tiny)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	fit.PValue = 2 * dist.Survival(math.Abs(t))
	fit.StdErr = math.Sqrt((1 - r*r) * varY / varX / df)
	return fit, nil
}

// TrendLine evaluates fit at every year of annual.
func TrendLine(fit types.TrendFit, annual []types.AnnualAverage) []float64 {
	out := make([]float64, len(annual))
	for i, a := range annual {
		out[i] = fit.At(float64(a.Year))
	}
	return out
}
