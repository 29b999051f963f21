// Package numeric holds the small root finders used by the pricing code.
package numeric

import (
	"math"

	"github.com/rustyeddy/pricer/errs"
)

// Func is a scalar function whose root is sought.
type Func func(x float64) float64

// Root is the outcome of a solve.
type Root struct {
	X          float64
	F          float64 // residual at X
	Iterations int
}

const minSlope = 1e-14

// Bisect finds x in [lo, hi] with |f(x)| < tol. f(lo) and f(hi) must have
// opposite signs.
func Bisect(f Func, lo, hi, tol float64, maxIter int) (Root, error) {
	if err := checkBracket(lo, hi, tol, maxIter); err != nil {
		return Root{}, err
	}

	flo, fhi := f(lo), f(hi)
	if r, ok := atEndpoint(lo, flo, hi, fhi, tol); ok {
		return r, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return Root{}, errs.NotConverged("x", math.NaN(), "root not bracketed in [%g, %g]", lo, hi)
	}

	for iter := 1; iter <= maxIter; iter++ {
		mid := 0.5 * (lo + hi)
		fm := f(mid)
		if math.Abs(fm) < tol || 0.5*(hi-lo) < tol*1e-3 {
			return Root{X: mid, F: fm, Iterations: iter}, nil
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return Root{}, errs.NotConverged("x", 0.5*(lo+hi), "bisection did not converge after %d iterations", maxIter)
}

// SafeNewton runs Newton-Raphson from x0 but keeps the iterate inside the
// bracket [lo, hi], falling back to a bisection step whenever the Newton
// step leaves the bracket or the slope vanishes.
func SafeNewton(f, df Func, lo, hi, x0, tol float64, maxIter int) (Root, error) {
	if err := checkBracket(lo, hi, tol, maxIter); err != nil {
		return Root{}, err
	}

	flo, fhi := f(lo), f(hi)
	if r, ok := atEndpoint(lo, flo, hi, fhi, tol); ok {
		return r, nil
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		return Root{}, errs.NotConverged("x", math.NaN(), "root not bracketed in [%g, %g]", lo, hi)
	}

	x := x0
	if x <= lo || x >= hi {
		x = 0.5 * (lo + hi)
	}

	for iter := 1; iter <= maxIter; iter++ {
		fx := f(x)
		if math.Abs(fx) < tol {
			return Root{X: x, F: fx, Iterations: iter}, nil
		}

		// shrink the bracket around the sign change
		if math.Signbit(fx) == math.Signbit(flo) {
			lo, flo = x, fx
		} else {
			hi = x
		}
		if hi-lo < tol*1e-3 {
			return Root{X: x, F: fx, Iterations: iter}, nil
		}

		next := 0.5 * (lo + hi)
		if d := df(x); math.Abs(d) > minSlope {
			if n := x - fx/d; n > lo && n < hi {
				next = n
			}
		}
		x = next
	}
	return Root{}, errs.NotConverged("x", x, "newton did not converge after %d iterations", maxIter)
}

func checkBracket(lo, hi, tol float64, maxIter int) error {
	if !(lo < hi) {
		return errs.Invalid("interval", lo, "lower bound must be below upper bound %g", hi)
	}
	if tol <= 0 {
		return errs.Invalid("tolerance", tol, "must be positive")
	}
	if maxIter <= 0 {
		return errs.Invalid("max_iter", float64(maxIter), "must be positive")
	}
	return nil
}

func atEndpoint(lo, flo, hi, fhi, tol float64) (Root, bool) {
	switch {
	case math.Abs(flo) < tol:
		return Root{X: lo, F: flo}, true
	case math.Abs(fhi) < tol:
		return Root{X: hi, F: fhi}, true
	}
	return Root{}, false
}
