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

import "math"

// AsymptoticCutoff is the argument magnitude above which the
// error function is evaluated from its asymptotic tail.
const AsymptoticCutoff = 5.0

// ErfcSeries returns the first five terms of the asymptotic series
// 1/x − 1/(2x³) + 3/(4x⁵) − 15/(8x⁷) + 105/(16x⁹), so that
// erfc(x) ≈ e^{-x²}/√π · ErfcSeries(x) for large positive x.
func ErfcSeries(x float64) float64 {
	x2 := x * x
	x3 := x2 * x
	x5 := x3 * x2
	x7 := x5 * x2
	x9 := x7 * x2
	return 1/x - 0.5/x3 + 0.75/x5 - 1.875/x7 + 6.5625/x9
}

// ErfcAsymptotic returns erfc(x) for x ≥ AsymptoticCutoff from the
// asymptotic series.
func ErfcAsymptotic(x float64) float64 {
	return math.Exp(-x*x) / math.SqrtPi * ErfcSeries(x)
}

// ErfDiff returns erf(b) − erf(a). When both arguments lie beyond
// AsymptoticCutoff on the same side of zero the difference is formed
// from the complementary tails, which keeps its precision when both
// erf values round to ±1.
func ErfDiff(a, b float64) float64 {
	fa, fb := math.Abs(a), math.Abs(b)
	if fa <= AsymptoticCutoff || fb <= AsymptoticCutoff {
		return math.Erf(b) - math.Erf(a)
	}
	sa, sb := math.Copysign(1, a), math.Copysign(1, b)
	if sa == sb {
		// erf(t) = s·(1 − erfc(|t|))
		return sa * (ErfcAsymptotic(fa) - ErfcAsymptotic(fb))
	}
	return sb*(1-ErfcAsymptotic(fb)) - sa*(1-ErfcAsymptotic(fa))
}
