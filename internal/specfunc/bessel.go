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

// Package specfunc holds the special functions needed by the rate
// formulas that are not available from gonum's mathext package.
package specfunc

import "math"

// Polynomial approximations from Abramowitz & Stegun 9.8.1-9.8.8.
// Relative accuracy is better than about 1e-7 for x > 0.

func besselI0(x float64) float64 {
	y := (x / 3.75) * (x / 3.75)
	return 1 + y*(3.5156229+y*(3.0899424+y*(1.2067492+
		y*(0.2659732+y*(0.360768e-1+y*0.45813e-2)))))
}

func besselI1(x float64) float64 {
	y := (x / 3.75) * (x / 3.75)
	return x * (0.5 + y*(0.87890594+y*(0.51498869+y*(0.15084934+
		y*(0.2658733e-1+y*(0.301532e-2+y*0.32411e-3))))))
}

// K0e returns e^x·K0(x), the exponentially scaled modified Bessel
// function of the second kind of order zero. x must be positive.
func K0e(x float64) float64 {
	if x <= 2 {
		y := x * x / 4
		k := -math.Log(x/2)*besselI0(x) + (-0.57721566 + y*(0.42278420+
			y*(0.23069756+y*(0.3488590e-1+y*(0.262698e-2+
				y*(0.10750e-3+y*0.74e-5))))))
		return math.Exp(x) * k
	}
	y := 2 / x
	return (1.25331414 + y*(-0.7832358e-1+y*(0.2189568e-1+
		y*(-0.1062446e-1+y*(0.587872e-2+y*(-0.251540e-2+y*0.53208e-3)))))) /
		math.Sqrt(x)
}

// K1e returns e^x·K1(x). x must be positive.
func K1e(x float64) float64 {
	if x <= 2 {
		y := x * x / 4
		k := math.Log(x/2)*besselI1(x) + (1/x)*(1+y*(0.15443144+
			y*(-0.67278579+y*(-0.18156897+y*(-0.1919402e-1+
				y*(-0.110404e-2+y*(-0.4686e-4)))))))
		return math.Exp(x) * k
	}
	y := 2 / x
	return (1.25331414 + y*(0.23498619+y*(-0.3655620e-1+
		y*(0.1504268e-1+y*(-0.780353e-2+y*(0.325614e-2+y*(-0.68245e-3))))))) /
		math.Sqrt(x)
}

// Kne returns e^x·Kn(x) for integer order n ≥ 0, using upward
// recurrence from K0 and K1. Upward recurrence is stable for K.
func Kne(n int, x float64) float64 {
	if n < 0 {
		n = -n // K_{-n} = K_n
	}
	if n == 0 {
		return K0e(x)
	}
	km, k := K0e(x), K1e(x)
	for j := 1; j < n; j++ {
		km, k = k, km+float64(2*j)/x*k
	}
	return k
}

// Kn returns the modified Bessel function of the second kind
// of integer order n. It underflows to zero for x above about 700.
func Kn(n int, x float64) float64 {
	return math.Exp(-x) * Kne(n, x)
}

// SafeKn is Kn with the leading large-argument asymptote
// √(π/2x)·e^{-x} substituted for x > 100.
func SafeKn(n int, x float64) float64 {
	if x > 100 {
		return math.Exp(-x) * math.Sqrt(math.Pi/(2*x))
	}
	return Kn(n, x)
}
