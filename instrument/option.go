// Package instrument describes the contracts the engine values: vanilla
// options and term loans.
package instrument

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/pricer/errs"
)

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

type ExerciseStyle string

const (
	European ExerciseStyle = "european"
	American ExerciseStyle = "american"
)

// ParseType accepts "call"/"c" and "put"/"p" in any case.
func ParseType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return "", fmt.Errorf("unknown option type %q (supported: call, put)", s)
	}
}

// ParseStyle accepts "european"/"eu" and "american"/"am" in any case.
func ParseStyle(s string) (ExerciseStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "european", "eu", "e":
		return European, nil
	case "american", "am", "a":
		return American, nil
	default:
		return "", fmt.Errorf("unknown exercise style %q (supported: european, american)", s)
	}
}

type Option struct {
	Strike   float64       `json:"strike" yaml:"strike"`
	Maturity float64       `json:"maturity" yaml:"maturity"` // years
	Type     OptionType    `json:"type" yaml:"type"`
	Style    ExerciseStyle `json:"style" yaml:"style"`
}

func (o Option) Validate() error {
	if !(o.Strike > 0) || math.IsInf(o.Strike, 0) {
		return errs.Invalid("strike", o.Strike, "must be positive and finite")
	}
	if !(o.Maturity > 0) || math.IsInf(o.Maturity, 0) {
		return errs.Invalid("maturity", o.Maturity, "must be positive and finite")
	}
	if o.Type != Call && o.Type != Put {
		return errs.Invalid("type", math.NaN(), "unknown option type %q", o.Type)
	}
	if o.Style != European && o.Style != American {
		return errs.Invalid("style", math.NaN(), "unknown exercise style %q", o.Style)
	}
	return nil
}

// Payoff is the exercise value at underlying price s.
func (o Option) Payoff(s float64) float64 {
	if o.Type == Call {
		return math.Max(s-o.Strike, 0)
	}
	return math.Max(o.Strike-s, 0)
}

// Sign is +1 for calls and -1 for puts.
func (o Option) Sign() float64 {
	if o.Type == Call {
		return 1
	}
	return -1
}

func (o Option) WithMaturity(t float64) Option {
	o.Maturity = t
	return o
}

func (o Option) String() string {
	return fmt.Sprintf("%s %s K=%g T=%g", o.Style, o.Type, o.Strike, o.Maturity)
}
