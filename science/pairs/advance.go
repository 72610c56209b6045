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

package pairs

import (
	"fmt"
	"math"

	"github.com/spatialmodel/pairdisk/internal/rootfind"
)

// State is a step of the pair balance update of one cell.
//
//	Idle → RatesComputed → ExplicitApplied
//	                     → ImplicitBracketing → ImplicitBisecting → Converged | Failed
//
// RatesComputed is final when the net rate is zero.
type State int

// Update states.
const (
	Idle State = iota
	RatesComputed
	ExplicitApplied
	ImplicitBracketing
	ImplicitBisecting
	Converged
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RatesComputed:
		return "rates computed"
	case ExplicitApplied:
		return "explicit"
	case ImplicitBracketing:
		return "implicit bracketing"
	case ImplicitBisecting:
		return "implicit bisecting"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Iteration limits of the implicit solve.
var (
	MaxBracketAttempts     = 1000
	MaxBisectionIterations = 99999
)

// RateFunc returns the net pair creation rate [cm⁻³ s⁻¹] at positron
// fraction z.
type RateFunc func(z float64) (float64, error)

// Outcome is the result of advancing one cell.
type Outcome struct {
	State State   // final state
	Z     float64 // new positron fraction
	Rate  float64 // net rate at the starting fraction
	Steps int     // root finder iterations used by an implicit update
}

// Advance advances the positron fraction z0 of a cell with proton
// density np over dt seconds. When dt ≤ alpha·|n₊/ṅ| the rate is
// applied explicitly; otherwise the backward Euler equation
// z − z0 = dt·ṅ(z)/np is solved by bracketing and bisection to relative
// tolerance tol. floor seeds the bracket when z0 is zero.
func Advance(z0, np, dt, alpha, tol, floor float64, rate RateFunc) (Outcome, error) {
	r0, err := rate(z0)
	if err != nil {
		return Outcome{State: Failed}, err
	}
	out := Outcome{State: RatesComputed, Z: z0, Rate: r0}
	if r0 == 0 {
		return out, nil
	}
	npos := z0 * np
	if q := math.Abs(npos / r0); dt <= alpha*q {
		out.State = ExplicitApplied
		out.Z = (npos + r0*dt) / np
		return out, nil
	}
	return SolveImplicit(out, np, dt, tol, floor, rate)
}

// SolveImplicit solves the backward Euler equation for a cell whose
// rates have been computed. A non-finite starting rate fails at once
// with a fatal bracket error.
func SolveImplicit(out Outcome, np, dt, tol, floor float64, rate RateFunc) (Outcome, error) {
	z0 := out.Z
	if math.IsNaN(out.Rate) || math.IsInf(out.Rate, 0) {
		out.State = Failed
		return out, &CellError{I: -1, J: -1, K: -1, Stage: StageBracket,
			Err: fmt.Errorf("%w: net rate %g at z=%g", rootfind.ErrNonFinite, out.Rate, z0)}
	}
	var rateErr error
	g := func(z float64) float64 {
		r, err := rate(z)
		if err != nil {
			if rateErr == nil {
				rateErr = err
			}
			return math.NaN()
		}
		return (z - z0) - dt*r/np
	}

	out.State = ImplicitBracketing
	factor := 10.
	if out.Rate < 0 {
		factor = 0.1
	}
	seed := z0
	if seed == 0 {
		seed = floor
	}
	fl := -dt * out.Rate / np
	br := rootfind.Expand(g, fl, seed*factor, factor, MaxBracketAttempts)
	out.Steps = br.Iterations
	if rateErr != nil {
		out.State = Failed
		return out, rateErr
	}
	if err := br.Err(); err != nil {
		out.State = Failed
		return out, &CellError{I: -1, J: -1, K: -1, Stage: StageBracket, Err: err}
	}

	out.State = ImplicitBisecting
	res := rootfind.Bisect(g, z0, br.X, tol, MaxBisectionIterations)
	out.Steps += res.Iterations
	if rateErr != nil {
		out.State = Failed
		return out, rateErr
	}
	if err := res.Err(); err != nil {
		out.State = Failed
		return out, &CellError{I: -1, J: -1, K: -1, Stage: StageBisection, Err: err}
	}
	out.State = Converged
	out.Z = res.X
	return out, nil
}
