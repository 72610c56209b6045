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

package rates

import (
	"math"

	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/internal/specfunc"
)

// besselCorrection returns e^{1/θ}·K₂(1/θ), the relativistic
// normalization of the thermal distribution, switching to its
// large-argument limit √(πθ/2) for 1/θ ≥ 500.
func besselCorrection(theta float64) float64 {
	x := 1 / theta
	if x < 500 {
		return specfunc.Kne(2, x)
	}
	return math.Sqrt(math.Pi / 2 / x)
}

// channel holds the temperature dependence and Gaunt factor argument of
// one bremsstrahlung channel.
type channel struct {
	weight func(z float64) float64
	temp   func(theta float64) float64
	gaunt  func(theta float64) float64
}

var bremChannels = []channel{
	{ // electron–proton
		weight: func(z float64) float64 { return 1 + 2*z },
		temp:   func(th float64) float64 { return 1 + 2*th + 2*th*th },
		gaunt:  func(th float64) float64 { return 1 + 3.42*th },
	},
	{ // electron–electron
		weight: func(z float64) float64 { return z*z + (1+z)*(1+z) },
		temp:   func(th float64) float64 { return 3*math.Sqrt2/5*th + 2*th*th },
		gaunt:  func(th float64) float64 { return 11.2 + 10.4*th*th },
	},
	{ // electron–positron
		weight: func(z float64) float64 { return 2 * z * (1 + z) },
		temp:   func(th float64) float64 { return math.Sqrt2 + 2*th + 2*th*th },
		gaunt:  func(th float64) float64 { return 1 + 10.4*th*th },
	},
}

// bremSum returns Σ weight·temp·ln(4η·gaunt·s) over the channels, where
// s is the channel-independent argument of the logarithm.
func bremSum(z, theta, s float64) float64 {
	var sum float64
	for _, c := range bremChannels {
		sum += c.weight(z) * c.temp(theta) * math.Log(4*pairdisk.Eta*c.gaunt(theta)*s)
	}
	return sum
}

// BremTotal returns the total bremsstrahlung photon production rate
// [cm⁻³ s⁻¹] above the self-absorption turnover x_m.
func BremTotal(np, z, theta, xm float64) float64 {
	factor := (16. / 3.) * pairdisk.AlphaF * cr2 * np * np / besselCorrection(theta) *
		math.Log(theta/xm)
	return factor * bremSum(z, theta, math.Sqrt(theta/xm))
}

// BlackBody returns the black body photon number density per unit
// dimensionless frequency x = hν/(m_e c²), using the Rayleigh–Jeans
// limit for x/θ < 1e-5.
func BlackBody(x, theta float64) float64 {
	lc3 := pairdisk.LambdaC * pairdisk.LambdaC * pairdisk.LambdaC
	t := x / theta
	if t < 1e-5 {
		return x * theta / lc3 / (math.Pi * math.Pi)
	}
	return x * x / lc3 / (math.Pi * math.Pi) / math.Expm1(t)
}

// BremAbsorption returns the bremsstrahlung absorption coefficient
// [cm⁻¹] at frequency x.
func BremAbsorption(x, z, np, theta float64) float64 {
	n0 := (16. / 3.) * pairdisk.AlphaF * cr2 * np * np / besselCorrection(theta) *
		math.Exp(-x/theta) / x
	return n0 * bremSum(z, theta, theta/x) / (pairdisk.CL * BlackBody(x, theta))
}

// ComptonY1 returns the Compton y-parameter for photons starting at x.
func ComptonY1(x, tau, theta float64) float64 {
	return tau * tau * math.Log(1+4*theta+16*theta*theta) / math.Log(theta/x)
}

// FlatN1 returns the photon density [cm⁻³] of the flat, Comptonized
// part of the spectrum starting at x with Compton parameter y.
func FlatN1(x, theta, y float64) float64 {
	a := pairdisk.AlphaF
	re3 := pairdisk.RE * pairdisk.RE * pairdisk.RE
	return (2 / math.Pi) * a * a * a * x * x * theta * (1/math.Log(theta/x) + y/(1+y)) / re3
}

// GTRegime classifies θ for the Wien photon escape factor.
func GTRegime(theta float64) Regime {
	if theta < 1 {
		return Cold
	}
	return Hot
}

// EscapeFactor returns g(θ), the temperature-dependent factor that
// lengthens the photon escape time in optically thick plasma.
func EscapeFactor(theta float64) float64 {
	if GTRegime(theta) == Cold {
		return 1 / (1 + 5*theta + 0.4*theta*theta)
	}
	return 0.1875 * (math.Log(2*pairdisk.Eta*theta) + 0.75) / (1 + 0.1/theta) / (theta * theta)
}

// WienDensity returns the density [cm⁻³] of photons in the Wien peak,
// fed by the fractions fb of bremsstrahlung (rate nbr) and fs of
// synchrotron (rate ns) photons that are Comptonized into it and held
// for an escape time set by the scale height h [cm].
func WienDensity(tau, theta, fb, nbr, fs, ns, h float64) float64 {
	return h / pairdisk.CL * (1 + EscapeFactor(theta)*tau) * (fb*nbr + fs*ns)
}
