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

// Package spectrum locates the turnover frequencies of the thermal
// photon spectrum, below which it is self-absorbed, and computes the
// fractions of synchrotron and bremsstrahlung photons that Compton
// scattering carries up to the Wien peak.
package spectrum

import (
	"fmt"
	"math"

	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/internal/rootfind"
	"github.com/spatialmodel/pairdisk/internal/specfunc"
	"github.com/spatialmodel/pairdisk/science/rates"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Iteration limits of the turnover solvers.
const (
	MaxNewtonIterations    = 1000
	MaxBisectionIterations = 99999
)

// Bracket of the bremsstrahlung turnover search, in log10(x/θ).
var (
	transitionLow  = -50.
	transitionHigh = math.Log10(700)
)

// ln3 is the log of the energy, in units of θ, at which a photon is
// counted as part of the Wien peak.
var ln3 = math.Log(3)

// Coefficients of the fit to the angle-averaged thermal synchrotron
// emissivity (Mahadevan et al. 1996).
const (
	i0 = 4.0505
	i1 = 0.40 * i0
	i2 = 0.5316 * i0
	i3 = 1.8899
)

func emissivity(x float64) float64 {
	return (i0*math.Pow(x, -1./6.) + i1*math.Pow(x, -5./12.) + i2*math.Pow(x, -2./3.)) *
		math.Exp(-i3*math.Cbrt(x))
}

func emissivityDeriv(x float64) float64 {
	return (-i0/6*math.Pow(x, -7./6.) - i1*5/12*math.Pow(x, -17./12.) - i2*2/3*math.Pow(x, -5./3.) -
		i0*i3/3*math.Pow(x, -5./6.) - i1*i3/3*math.Pow(x, -13./12.) - i2*i3/3*math.Pow(x, -4./3.)) *
		math.Exp(-i3*math.Cbrt(x))
}

// SelfAbsorptionRoot solves i(x) = a·x for x by Newton–Raphson from
// x = 1, where i is the synchrotron emissivity fit.
func SelfAbsorptionRoot(a, tol float64) rootfind.Result {
	return rootfind.Newton(
		func(x float64) float64 { return emissivity(x) - a*x },
		func(x float64) float64 { return emissivityDeriv(x) - a },
		1, tol, MaxNewtonIterations, true)
}

// CyclotronFrequency returns eB/(2π m_e c) [Hz] for field b [G].
func CyclotronFrequency(b float64) float64 {
	return pairdisk.QE * b / 2 / math.Pi / pairdisk.ME / pairdisk.CL
}

// SelfAbsorption returns the synchrotron self-absorption frequency ν_s
// [Hz], above which a layer of thickness h [cm] is optically thin to
// synchrotron emission. nu0 is the cyclotron frequency.
func SelfAbsorption(theta, np, z, nu0, h, tol float64) (float64, error) {
	a := 2 * math.Sqrt(3) * pairdisk.ME * pairdisk.CL * theta * (2 * theta * theta) *
		(3 * nu0 * theta * theta / 2) / 4 / (pairdisk.QE * pairdisk.QE) / np / (2*z + 1) / h
	r := SelfAbsorptionRoot(a, tol)
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("spectrum: synchrotron self-absorption: %w", err)
	}
	return 1.5 * r.X * nu0 * theta * theta, nil
}

// transitionLHS is the absorption coefficient at which the medium
// becomes effectively thick at the turnover frequency.
func transitionLHS(z, tau, np, theta float64) float64 {
	return (2*z + 1) * np * pairdisk.SigmaT * (1 + tau*tau*math.Min(1, 8*theta)) / (tau * (1 + tau))
}

// Transition returns x_m = hν_m/(m_e c²), below which the bremsstrahlung
// spectrum is a black body. It bisects in log10(x/θ) over
// [-50, log10(700)].
func Transition(z, tau, np, theta, tol float64) (float64, error) {
	lhs := transitionLHS(z, tau, np, theta)
	f := func(lx float64) float64 {
		return rates.BremAbsorption(math.Pow(10, lx)*theta, z, np, theta) - lhs
	}
	r := rootfind.Bisect(f, transitionLow, transitionHigh, tol, MaxBisectionIterations)
	if err := r.Err(); err != nil {
		return 0, fmt.Errorf("spectrum: bremsstrahlung turnover: %w", err)
	}
	return math.Pow(10, r.X) * theta, nil
}

// logA returns ln A, where A = 1 + 4θ + 16θ² is the mean photon energy
// gain per scattering.
func logA(theta float64) float64 {
	return math.Log(1 + 4*theta + 16*theta*theta)
}

// WienFraction returns the fraction of photons emitted at x that are
// scattered up to the Wien peak. Photons already above 3θ are all
// counted.
func WienFraction(x, tau, theta float64) float64 {
	jm := math.Log(3*theta/x) / logA(theta)
	if jm <= 0 {
		return 1
	}
	if tau > 1 {
		return math.Exp(-jm / (tau * tau))
	}
	return specfunc.GammaP(jm, tau+tau*tau)
}

// Synchrotron returns the fraction fs of synchrotron photons scattered
// to the Wien peak and the synchrotron photon production rate ns
// [cm⁻³ s⁻¹] for field b [G] in a layer of thickness h [cm]. Both are
// zero when there is no field.
func Synchrotron(theta, tau, np, z, h, b, tol float64) (fs, ns float64, err error) {
	if b <= 0 {
		return 0, 0, nil
	}
	nu0 := CyclotronFrequency(b)
	nus, err := SelfAbsorption(theta, np, z, nu0, h, tol)
	if err != nil {
		return 0, 0, err
	}
	xs := pairdisk.HPlanck * nus / pairdisk.ElectronRestEnergy
	fs = WienFraction(xs, tau, theta)

	a1 := 2 / (3 * nu0 * theta * theta)
	a2 := 0.4 / math.Pow(a1, 0.25)
	a3 := 0.5316 / math.Sqrt(a1)
	a4 := 1.8899 * math.Cbrt(a1)
	cnu := math.Cbrt(nus)
	s := a4 * cnu

	g := specfunc.UpperGamma(5.5, s)/math.Pow(a4, 5.5) +
		specfunc.UpperGamma(4.75, s)*a2/math.Pow(a4, 4.75) +
		a3*(a4*a4*a4*nus+3*a4*a4*cnu*cnu+6*a4*cnu+6)*math.Exp(-s)/math.Pow(a4, 4)

	q := 2 * math.Pi * (theta * pairdisk.ME) * nus * nus * nus / 3 / h
	q += 6.76e-28 * np * (2*z + 1) * g / (2 * theta * theta) / math.Pow(a1, 1./6.)
	return fs, q / pairdisk.HPlanck / nus, nil
}

// bremGrid is the number of intervals in the optically thin
// bremsstrahlung fraction integral.
const bremGrid = 100

// BremFraction returns the fraction of bremsstrahlung photons scattered
// to the Wien peak for Compton parameter y. Above optical depth 1 a
// closed form is used; below it the escape probability is integrated
// over ln(θ/x) from the turnover x_m up to θ.
func BremFraction(y, tau, theta, xm float64) float64 {
	la := logA(theta)
	if tau > 1 {
		var f float64
		if y <= 1e3 {
			f = 2 * (y*y - y*(1+y)*math.Exp(-1/y))
		} else {
			f = 1 - 2/(3*y)
		}
		return f * math.Exp(-ln3/(tau*tau)/la)
	}
	upper := math.Log(theta / xm)
	if upper <= 0 {
		return 0
	}
	stau := tau + tau*tau
	u := floats.Span(make([]float64, bremGrid+1), 0, upper)
	f := make([]float64, len(u))
	for i, ui := range u {
		f[i] = ui * specfunc.GammaP((ui+ln3)/la, stau)
	}
	return integrate.Simpsons(u, f)
}
