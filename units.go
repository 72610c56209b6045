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

package pairdisk

import "math"

// Physical constants in cgs units.
const (
	MSun    = 1.989e33        // g
	GNewt   = 6.6742e-8       // cm³ g⁻¹ s⁻²
	CL      = 2.99792458e10   // cm/s
	KBol    = 1.3806505e-16   // erg/K
	MP      = 1.67262171e-24  // g, proton mass
	ME      = 9.1093826e-28   // g, electron mass
	QE      = 4.80320680e-10  // esu, electron charge
	SigmaT  = 0.665245873e-24 // cm², Thomson cross section
	HPlanck = 6.6260693e-27   // erg s
	RE      = 2.8179403e-13   // cm, classical electron radius
	AlphaF  = 7.29735e-3      // fine structure constant

	// Eta is e^{-γ_E}, with γ_E the Euler–Mascheroni constant.
	Eta = 0.5615

	// LambdaC is the reduced Compton wavelength ħ/(m_e c) [cm].
	LambdaC = 3.8616e-11

	// CoulombLog is the Coulomb logarithm used for electron–ion coupling.
	CoulombLog = 20.

	MEMP = ME / MP
)

// Rest energies [erg].
const (
	ElectronRestEnergy = ME * CL * CL
	ProtonRestEnergy   = MP * CL * CL
)

// UnitSystem converts between code units, in which G = M = c = 1,
// and cgs units. It is fixed by the black hole mass and the mass unit
// and must not be changed once a simulation has started.
type UnitSystem struct {
	BlackHoleMass float64 // solar masses
	MassUnit      float64 // g

	Mbh float64 // black hole mass [g]
	L   float64 // length unit [cm]
	T   float64 // time unit [s]
	Rho float64 // density unit [g/cm³]
	U   float64 // energy density unit [erg/cm³]
	B   float64 // magnetic field unit [G]
}

// NewUnitSystem returns the unit system for a black hole of mbh solar
// masses and a mass unit of massUnit grams.
func NewUnitSystem(mbh, massUnit float64) UnitSystem {
	u := UnitSystem{BlackHoleMass: mbh, MassUnit: massUnit}
	u.Mbh = mbh * MSun
	u.L = GNewt * u.Mbh / (CL * CL)
	u.T = u.L / CL
	u.Rho = massUnit / (u.L * u.L * u.L)
	u.U = u.Rho * CL * CL
	u.B = CL * math.Sqrt(4*math.Pi*u.Rho)
	return u
}

// ProtonDensity converts a code-unit mass density to a proton number
// density [cm⁻³].
func (u UnitSystem) ProtonDensity(rho float64) float64 { return rho * u.Rho / MP }

// PositronDensity converts a code-unit positron mass density to a number
// density [cm⁻³].
func (u UnitSystem) PositronDensity(rpl float64) float64 { return rpl * u.Rho / ME }

// PositronMass converts a positron number density [cm⁻³] back to a
// code-unit mass density.
func (u UnitSystem) PositronMass(npos float64) float64 { return npos * ME / u.Rho }
