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

// Package pairs advances the electron–positron pair density of each
// grid cell by balancing pair creation against annihilation, switching
// from an explicit to an implicit update when the net rate is too steep
// for the time step.
package pairs

import (
	"github.com/spatialmodel/pairdisk/science/rates"
	"github.com/spatialmodel/pairdisk/science/spectrum"
)

// Conditions holds the plasma state of one cell in cgs units.
type Conditions struct {
	NProt  float64 // proton number density [cm⁻³]
	NPos   float64 // positron number density [cm⁻³]
	ThetaE float64 // electron temperature kT/(m_e c²)
	ThetaP float64 // proton temperature kT/(m_p c²)
	B      float64 // magnetic field [G]
	AngVel float64 // u^φ/u^t [code units]

	Tau float64 // Thomson optical depth
	H   float64 // scale height [cm]

	// CoulombRatio is the Coulomb coupling time divided by the orbital
	// time.
	CoulombRatio float64
}

// Z returns the positron fraction n₊/n_p.
func (c Conditions) Z() float64 {
	if c.NProt == 0 {
		return 0
	}
	return c.NPos / c.NProt
}

// Breakdown holds the intermediate quantities of a net rate evaluation.
// Rates are in cm⁻³ s⁻¹.
type Breakdown struct {
	Z float64

	XM     float64 // bremsstrahlung turnover hν/(m_e c²)
	Y1     float64 // Compton y-parameter
	NBrem  float64 // bremsstrahlung photon production
	FBrem  float64 // fraction of bremsstrahlung photons reaching the Wien peak
	NFlat  float64 // flat spectrum photon density [cm⁻³]
	NSync  float64 // synchrotron photon production
	FSync  float64 // fraction of synchrotron photons reaching the Wien peak
	NGamma float64 // Wien peak photon density [cm⁻³]

	EE, WW, WP, WE, WF float64 // creation channels

	Creation     float64
	Annihilation float64
	Net          float64
}

// NetRate returns the net pair creation rate at positron fraction z for
// a cell with conditions cond. tol is the relative tolerance of the
// spectral root finders. A root finder failure is returned as a
// *CellError without cell indices.
func NetRate(z float64, cond Conditions, tol float64) (Breakdown, error) {
	np, theta, tau, h := cond.NProt, cond.ThetaE, cond.Tau, cond.H
	b := Breakdown{Z: z}
	var err error
	b.XM, err = spectrum.Transition(z, tau, np, theta, tol)
	if err != nil {
		return b, &CellError{I: -1, J: -1, K: -1, Stage: StageTransition, Err: err}
	}
	b.NBrem = rates.BremTotal(np, z, theta, b.XM)
	b.Y1 = rates.ComptonY1(b.XM, tau, theta)
	b.FBrem = spectrum.BremFraction(b.Y1, tau, theta, b.XM)
	b.NFlat = rates.FlatN1(b.XM, theta, b.Y1)
	b.FSync, b.NSync, err = spectrum.Synchrotron(theta, tau, np, z, h, cond.B, tol)
	if err != nil {
		return b, &CellError{I: -1, J: -1, K: -1, Stage: StageSelfAbsorption, Err: err}
	}
	b.NGamma = rates.WienDensity(tau, theta, b.FBrem, b.NBrem, b.FSync, b.NSync, h)

	b.EE = rates.EE(np, z, theta)
	b.WW = rates.WW(b.NGamma, theta)
	b.WP = rates.WP(b.NGamma, np, theta)
	b.WE = rates.WE(b.NGamma, np, z, theta)
	b.WF = rates.WF(b.NFlat, b.NGamma, theta)
	b.Creation = b.EE + b.WW + b.WP + b.WE + b.WF
	b.Annihilation = rates.Annihilation(np, z, theta)
	b.Net = b.Creation - b.Annihilation
	return b, nil
}
