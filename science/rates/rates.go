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

// Package rates holds the analytic pair creation, pair annihilation and
// photon emission rates for a thermal electron–positron–proton plasma.
// All inputs and outputs are in cgs units; temperatures are
// dimensionless, θ = kT/(m_e c²). The photon–particle fits follow
// Svensson (1984) and White & Lightman (1989).
package rates

import (
	"math"

	"github.com/spatialmodel/pairdisk"
)

// Regime identifies which asymptotic fit of a rate applies at a given
// temperature.
type Regime int

// Temperature regimes. Not every rate has a Warm branch.
const (
	Cold Regime = iota
	Warm
	Hot
)

func (r Regime) String() string {
	switch r {
	case Cold:
		return "cold"
	case Warm:
		return "warm"
	default:
		return "hot"
	}
}

// cr2 is c·r_e², the rate coefficient shared by every two-body channel.
const cr2 = pairdisk.CL * pairdisk.RE * pairdisk.RE

// EERegime classifies θ for the particle–particle channel.
func EERegime(theta float64) Regime {
	if theta <= 1e2 {
		return Cold
	}
	return Hot
}

func eeCold(theta float64) float64 {
	return 2.0e-4 * math.Pow(theta, 1.5) * math.Exp(-2/theta) * (1 + 0.015*theta)
}

func eeHot(theta float64) float64 {
	a := pairdisk.AlphaF
	l := math.Log(theta)
	return (112. / 27. / math.Pi) * a * a * l * l * l / (1 + 0.058/theta)
}

// EE returns the pair production rate from lepton–lepton collisions
// [cm⁻³ s⁻¹] for proton density np [cm⁻³] and positron fraction z.
func EE(np, z, theta float64) float64 {
	var r float64
	if EERegime(theta) == Cold {
		r = eeCold(theta)
	} else {
		r = eeHot(theta)
	}
	n := np * (1 + z)
	return r * cr2 * n * n
}

// Annihilation returns the pair annihilation rate [cm⁻³ s⁻¹].
func Annihilation(np, z, theta float64) float64 {
	return (3. / 8.) * pairdisk.SigmaT * pairdisk.CL * np * np * z * (z + 1) /
		(1 + 2*theta*theta/math.Log(1.12*theta+1.3))
}

// WWRegime classifies θ for the Wien–Wien channel.
func WWRegime(theta float64) Regime {
	if theta <= 1 {
		return Cold
	}
	return Hot
}

func wwCold(theta float64) float64 {
	return 0.125 * math.Pi * math.Pi * math.Exp(-2/theta) *
		(1 + 2.88*math.Pow(theta, 0.934)) / (theta * theta * theta)
}

func wwHot(theta float64) float64 {
	return 0.5 * math.Pi * math.Log(2*pairdisk.Eta*theta+0.38) / (theta * theta)
}

// WW returns the pair production rate from collisions between Wien
// photons of density ng [cm⁻³].
func WW(ng, theta float64) float64 {
	var r float64
	if WWRegime(theta) == Cold {
		r = wwCold(theta)
	} else {
		r = wwHot(theta)
	}
	return r * cr2 * ng * ng
}

// WPRegime classifies θ for the Wien–proton channel.
func WPRegime(theta float64) Regime {
	if theta <= 2 {
		return Cold
	}
	return Hot
}

func wpCold(theta float64) float64 {
	return math.Pi * theta * math.Exp(-2/theta) / (1 + 0.9*theta)
}

func wpHot(theta float64) float64 {
	return (28./9.)*math.Log(2*pairdisk.Eta*theta+1.7) - 92./27.
}

// WP returns the pair production rate from Wien photons scattering off
// protons.
func WP(ng, np, theta float64) float64 {
	var r float64
	if WPRegime(theta) == Cold {
		r = wpCold(theta)
	} else {
		r = wpHot(theta)
	}
	return r * pairdisk.AlphaF * cr2 * ng * np
}

// WERegime classifies θ for the Wien–lepton channel.
func WERegime(theta float64) Regime {
	switch {
	case theta <= 0.18:
		return Cold
	case theta >= 2:
		return Hot
	default:
		return Warm
	}
}

func weCold(theta float64) float64 {
	return (4 * math.Pi / 27) * math.Exp(-2/theta) * (1 + 27.1*math.Pow(theta, 0.949))
}

func weWarm(theta float64) float64 {
	return (4 * math.Pi / 27) * math.Exp(-2/theta) * 16.1 * math.Pow(theta, 0.541)
}

func weHot(theta float64) float64 {
	return (56./9.*math.Log(2*pairdisk.Eta*theta) - 8./27.) / (1 + 0.5/theta)
}

// WE returns the pair production rate from Wien photons scattering off
// electrons and positrons.
func WE(ng, np, z, theta float64) float64 {
	var r float64
	switch WERegime(theta) {
	case Cold:
		r = weCold(theta)
	case Warm:
		r = weWarm(theta)
	default:
		r = weHot(theta)
	}
	return r * pairdisk.AlphaF * cr2 * ng * (2*z + 1) * np
}

// WF returns the pair production rate from Wien photons colliding with
// the flat part of the spectrum, of density n1 [cm⁻³].
func WF(n1, ng, theta float64) float64 {
	return cr2 * n1 * ng * math.Pi * math.Pi / 4 * math.Exp(-1/theta)
}

// Creation returns the total pair creation rate: the sum of EE, WW, WP,
// WE and WF.
func Creation(ng, n1, np, z, theta float64) float64 {
	return EE(np, z, theta) + WW(ng, theta) + WP(ng, np, theta) +
		WE(ng, np, z, theta) + WF(n1, ng, theta)
}
