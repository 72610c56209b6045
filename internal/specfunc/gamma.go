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

package specfunc

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// GammaP returns the regularized lower incomplete gamma function
// P(a, x). The limits P(0⁺, x) = 1 and P(a, 0) = 0 are returned
// directly because mathext panics outside a > 0, x ≥ 0.
func GammaP(a, x float64) float64 {
	switch {
	case math.IsNaN(a) || math.IsNaN(x):
		return math.NaN()
	case x <= 0:
		return 0
	case a <= 0:
		return 1
	}
	return mathext.GammaIncReg(a, x)
}

// UpperGamma returns the non-normalized upper incomplete gamma
// function Γ(a, x) = Γ(a)·Q(a, x) for a > 0.
func UpperGamma(a, x float64) float64 {
	if x <= 0 {
		return math.Gamma(a)
	}
	return math.Gamma(a) * mathext.GammaIncRegComp(a, x)
}
