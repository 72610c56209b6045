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

// EquilibriumFraction returns the positron fraction z of a plasma in
// local thermodynamic equilibrium at proton density np [cm⁻³].
func EquilibriumFraction(np, theta float64) float64 {
	kt := theta * pairdisk.ElectronRestEnergy
	lam := pairdisk.HPlanck / math.Sqrt(2*math.Pi*pairdisk.ME*kt)
	lam3 := lam * lam * lam
	u := 4 / (np * np) / (lam3 * lam3) * math.Exp(-2/theta)
	return 0.5 * (-1 + math.Sqrt(1+4*u))
}

// coulombCrit is the temperature below which the Bessel functions in
// the Coulomb rate are replaced by their asymptotic forms.
const coulombCrit = 1e-2

// Coulomb returns the rate [erg cm⁻³ s⁻¹] at which protons at
// temperature thetaP = kT_p/(m_p c²) heat leptons at thetaE = kT_e/(m_e c²)
// by Coulomb collisions. It is negative when the leptons are hotter and
// zero when either temperature is not positive.
func Coulomb(thetaP, thetaE, np, npos float64) float64 {
	tp := thetaP * pairdisk.ProtonRestEnergy / pairdisk.KBol
	te := thetaE * pairdisk.ElectronRestEnergy / pairdisk.KBol
	if math.IsNaN(te) || math.IsNaN(tp) || te <= 0 || tp <= 0 {
		return 0
	}
	nelec := npos + np
	thetaM := 1 / (1/thetaE + 1/thetaP)
	prefac := 1.5 * pairdisk.MEMP * (nelec + npos) * np * pairdisk.CoulombLog *
		pairdisk.CL * pairdisk.KBol * pairdisk.SigmaT * (tp - te)

	var term1, term2 float64
	switch {
	case thetaE < coulombCrit && thetaP < coulombCrit:
		term1 = math.Sqrt(thetaM / (math.Pi * thetaE * thetaP / 2))
		term2 = term1
	case thetaE < coulombCrit:
		term1 = math.Exp(-1/thetaP) / specfunc.SafeKn(2, 1/thetaP) * math.Sqrt(thetaM/thetaE)
		term2 = term1
	case thetaP < coulombCrit:
		term1 = math.Exp(-1/thetaE) / specfunc.SafeKn(2, 1/thetaE) * math.Sqrt(thetaM/thetaP)
		term2 = term1
	default:
		k2 := specfunc.SafeKn(2, 1/thetaE) * specfunc.SafeKn(2, 1/thetaP)
		term1 = specfunc.SafeKn(1, 1/thetaM) / k2
		term2 = specfunc.SafeKn(0, 1/thetaM) / k2
	}
	term1 *= (2*(thetaE+thetaP)*(thetaE+thetaP) + 1) / (thetaE + thetaP)
	term2 *= 2
	return prefac * (term1 + term2)
}
