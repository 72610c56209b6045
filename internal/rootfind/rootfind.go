/*
Copyright © 2024 the pairdisk authors.
This file is part of pairdisk.

pairdisk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

pairdisk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with pairdisk.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package rootfind provides the one-dimensional root finders used by the
// spectral and pair-balance solvers. The finders never terminate the
// process; they report how they ended in a Result and leave the
// decision of whether that is fatal to the caller.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

// Status describes how a root finder ended.
type Status int

const (
	// Converged means the tolerance was met.
	Converged Status = iota
	// NotBracketed means f did not change sign over the interval.
	NotBracketed
	// ExceededIterations means the iteration limit was reached first.
	ExceededIterations
	// NonFinite means f or an iterate became NaN or infinite.
	NonFinite
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case NotBracketed:
		return "not bracketed"
	case ExceededIterations:
		return "exceeded iterations"
	case NonFinite:
		return "non-finite value"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Errors returned by Result.Err.
var (
	ErrNotBracketed       = errors.New("rootfind: root is not bracketed")
	ErrExceededIterations = errors.New("rootfind: exceeded maximum iterations")
	ErrNonFinite          = errors.New("rootfind: encountered non-finite value")
)

// Result is the outcome of a root search.
type Result struct {
	X          float64 // last estimate of the root
	Iterations int
	Status     Status
}

// Err returns nil if the search converged and the matching sentinel
// error, annotated with the iteration count and last estimate, otherwise.
func (r Result) Err() error {
	var err error
	switch r.Status {
	case Converged:
		return nil
	case NotBracketed:
		err = ErrNotBracketed
	case ExceededIterations:
		err = ErrExceededIterations
	default:
		err = ErrNonFinite
	}
	return fmt.Errorf("%w (iterations=%d, x=%g)", err, r.Iterations, r.X)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// relChange returns |1 − a/b|.
func relChange(a, b float64) float64 {
	return math.Abs(1 - a/b)
}

// Newton finds a root of f by Newton–Raphson iteration starting at x0.
// Iteration stops when the relative step |1 − x_new/x_old| falls below
// tol. If positive is true the iterate is kept on the positive axis by
// halving the previous estimate whenever a step would leave it.
func Newton(f, df func(x float64) float64, x0, tol float64, maxIter int, positive bool) Result {
	x := x0
	for n := 0; n < maxIter; n++ {
		xNew := x - f(x)/df(x)
		if !finite(xNew) {
			return Result{X: xNew, Iterations: n + 1, Status: NonFinite}
		}
		if positive && xNew <= 0 {
			xNew = x / 2
		}
		if relChange(xNew, x) < tol {
			return Result{X: xNew, Iterations: n + 1, Status: Converged}
		}
		x = xNew
	}
	return Result{X: x, Iterations: maxIter, Status: ExceededIterations}
}

// Bisect finds a root of f in [a, b], which must bracket a sign change.
// Iteration stops when the relative change of the midpoint between
// successive iterations falls below tol, when the midpoint stops
// moving, or when f is exactly zero at the midpoint.
func Bisect(f func(x float64) float64, a, b, tol float64, maxIter int) Result {
	fa, fb := f(a), f(b)
	if !finite(fa) || !finite(fb) {
		return Result{X: 0.5 * (a + b), Status: NonFinite}
	}
	if fa*fb > 0 {
		return Result{X: 0.5 * (a + b), Status: NotBracketed}
	}
	return bisect(f, a, b, fa, tol, maxIter)
}

func bisect(f func(float64) float64, a, b, fa, tol float64, maxIter int) Result {
	var c, cOld float64
	for n := 0; n < maxIter; n++ {
		cOld = c
		c = 0.5 * (a + b)
		fc := f(c)
		if !finite(fc) {
			return Result{X: c, Iterations: n + 1, Status: NonFinite}
		}
		if fc == 0 {
			return Result{X: c, Iterations: n + 1, Status: Converged}
		}
		if fa*fc > 0 {
			a, fa = c, fc
		} else {
			b = c
		}
		if n > 0 && (c == cOld || relChange(cOld, c) < tol) {
			return Result{X: c, Iterations: n + 1, Status: Converged}
		}
	}
	return Result{X: c, Iterations: maxIter, Status: ExceededIterations}
}

// Expand searches for the second end of a bracket whose first end x0 has
// value f0 = f(x0). Starting from start, the trial point is multiplied
// by factor until f changes sign relative to f0. At most maxTries
// evaluations are made.
func Expand(f func(x float64) float64, f0, start, factor float64, maxTries int) Result {
	x := start
	for n := 0; n < maxTries; n++ {
		fx := f(x)
		if !finite(fx) {
			return Result{X: x, Iterations: n + 1, Status: NonFinite}
		}
		if fx*f0 < 0 {
			return Result{X: x, Iterations: n + 1, Status: Converged}
		}
		x *= factor
	}
	return Result{X: x, Iterations: maxTries, Status: NotBracketed}
}
