package risk

import "math"

// ExpectedLoss is PD x LGD x exposure over the single period.
func ExpectedLoss(pd, lgd, exposure float64) float64 {
	return pd * lgd * exposure
}

// corporateCorrelation interpolates between 12% and 24% asset correlation,
// falling as PD rises.
func corporateCorrelation(pd float64) float64 {
	w := (1 - math.Exp(-50*pd)) / (1 - math.Exp(-50))
	return 0.12*w + 0.24*(1-w)
}

// maturityAdjustment scales one-year capital to effective maturity m,
// clamped to [1, 5] years.
func maturityAdjustment(pd, m float64) float64 {
	m = math.Min(math.Max(m, 1), 5)
	b := math.Pow(0.11852-0.05478*math.Log(pd), 2)
	return (1 + (m-2.5)*b) / (1 - 1.5*b)
}
