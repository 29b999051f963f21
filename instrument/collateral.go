package instrument

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rustyeddy/pricer/errs"
)

type CollateralKind string

const (
	RealEstate CollateralKind = "real-estate"
	Securities CollateralKind = "securities"
	Vehicle    CollateralKind = "vehicle"
	Other      CollateralKind = "other"
)

// Haircuts is the share of collateral value not recognized against exposure.
var Haircuts = map[CollateralKind]float64{
	RealEstate: 0.20,
	Securities: 0.30,
	Vehicle:    0.40,
	Other:      0.50,
}

type Collateral struct {
	Kind   CollateralKind `json:"kind" yaml:"kind"`
	Amount float64        `json:"amount" yaml:"amount"`
}

func ParseCollateralKind(s string) (CollateralKind, error) {
	k := CollateralKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Haircuts[k]; !ok {
		return "", fmt.Errorf("unknown collateral kind %q (supported: %s)", s, strings.Join(collateralKinds(), ", "))
	}
	return k, nil
}

func (c Collateral) Validate() error {
	if _, ok := Haircuts[c.Kind]; !ok {
		return errs.Invalid("collateral.kind", math.NaN(), "unknown collateral kind %q", c.Kind)
	}
	if !(c.Amount >= 0) || math.IsInf(c.Amount, 0) {
		return errs.Invalid("collateral.amount", c.Amount, "must be non-negative and finite")
	}
	return nil
}

// Value is the amount after haircut.
func (c Collateral) Value() float64 {
	return c.Amount * (1 - Haircuts[c.Kind])
}

func collateralKinds() []string {
	out := make([]string, 0, len(Haircuts))
	for k := range Haircuts {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
