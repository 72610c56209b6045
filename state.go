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

// FourVelocity returns u^μ. The velocity primitives are the spatial
// components u^i; with unit lapse and zero shift the time component
// follows from normalization, u^t = √(1 + g_ij u^i u^j).
func (c *Cell) FourVelocity() [4]float64 {
	g := c.Gcov()
	u := [4]float64{0, c.Prim(U1), c.Prim(U2), c.Prim(U3)}
	var usq float64
	for i := 1; i < 4; i++ {
		usq += g[i] * u[i] * u[i]
	}
	u[0] = math.Sqrt(1 + usq)
	return u
}

// Bsq returns b², the square of the comoving magnetic field four-vector
// in code units.
func (c *Cell) Bsq() float64 {
	g := c.Gcov()
	u := c.FourVelocity()
	B := [4]float64{0, c.Prim(B1), c.Prim(B2), c.Prim(B3)}
	var bt float64
	for i := 1; i < 4; i++ {
		bt += g[i] * B[i] * u[i]
	}
	bsq := g[0] * bt * bt
	for i := 1; i < 4; i++ {
		bi := (B[i] + bt*u[i]) / u[0]
		bsq += g[i] * bi * bi
	}
	return bsq
}

// BField returns the comoving magnetic field strength [G].
func (c *Cell) BField() float64 {
	return math.Sqrt(math.Max(c.Bsq(), 0)) * c.d.Units.B
}

// AngularVelocity returns u^φ/u^t [code units].
func (c *Cell) AngularVelocity() float64 {
	u := c.FourVelocity()
	return u[3] / u[0]
}

// ProtonTheta returns the dimensionless proton temperature
// θ_p = kT_p/(m_p c²) implied by the internal energy, assuming the
// protons carry all of it.
func (c *Cell) ProtonTheta() float64 {
	np := c.ProtonDensity()
	if np <= 0 {
		return 0
	}
	up := c.Prim(UU) * c.d.Units.U
	return up * (c.d.Gamma - 1) / np / ProtonRestEnergy
}
