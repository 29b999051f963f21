package risk

import (
	"math"
	"sort"

	"github.com/rustyeddy/pricer/errs"
)

// RatingTable maps a rating code to cumulative PDs keyed by term in whole
// years.
type RatingTable map[string]map[int]float64

// PD looks up the PD for rating at the shortest tabulated term covering
// maturity, or the longest term when maturity is beyond the table.
func (t RatingTable) PD(rating string, maturity float64) (float64, error) {
	terms, ok := t[rating]
	if !ok || len(terms) == 0 {
		return 0, errs.Invalid("rating", math.NaN(), "unknown rating %q", rating)
	}
	if !(maturity > 0) {
		return 0, errs.Invalid("maturity", maturity, "must be positive")
	}

	years := make([]int, 0, len(terms))
	for y := range terms {
		years = append(years, y)
	}
	sort.Ints(years)

	want := int(math.Ceil(maturity))
	i := sort.SearchInts(years, want)
	if i == len(years) {
		i = len(years) - 1
	}
	return terms[years[i]], nil
}

// Ratings returns the known codes in sorted order.
func (t RatingTable) Ratings() []string {
	out := make([]string, 0, len(t))
	for r := range t {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
