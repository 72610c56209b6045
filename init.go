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

import (
	"fmt"
	"math"
)

// Allocate sets the grid, geometry, units and adiabatic index of the
// disk and allocates its Start and Final states.
func Allocate(g Grid, geom Geometry, units UnitSystem, gamma float64) DomainManipulator {
	return func(d *Disk) error {
		if err := g.Validate(); err != nil {
			return err
		}
		if gamma <= 1 {
			return fmt.Errorf("pairdisk: adiabatic index %g should be >1", gamma)
		}
		d.Grid = g
		d.Geom = geom
		d.Units = units
		d.Gamma = gamma
		d.Start = NewFluidState(g)
		d.Final = NewFluidState(g)
		return nil
	}
}

// SetTimestep sets the time step [code units].
func SetTimestep(dt float64) DomainManipulator {
	return func(d *Disk) error {
		if dt <= 0 {
			return fmt.Errorf("pairdisk: time step %g should be >0", dt)
		}
		d.Dt = dt
		return nil
	}
}

// InitPositrons sets the positron density in every cell, ghosts
// included, to the floor fraction zmin of the proton density:
// RPL = zmin·(m_e/m_p)·RHO.
func InitPositrons(zmin float64) DomainManipulator {
	return func(d *Disk) error {
		n3, n2, n1 := d.Padded()
		for k := 0; k < n3; k++ {
			for j := 0; j < n2; j++ {
				for i := 0; i < n1; i++ {
					d.Final.Set(zmin*MEMP*d.Final.Get(RHO, i, j, k), RPL, i, j, k)
				}
			}
		}
		d.Start.CopyFrom(d.Final)
		return nil
	}
}

// TorusConfig specifies a synthetic thin disk with a Gaussian vertical
// profile. It stands in for the state an external fluid integrator
// would supply.
type TorusConfig struct {
	Rho0   float64 // density at Rin on the midplane [code units]
	Slope  float64 // radial power-law index of the density
	HR     float64 // Gaussian half-thickness h/r [radians]
	ThetaP float64 // proton temperature kT_p/(m_p c²)
	Beta   float64 // ratio of gas to magnetic pressure; ≤0 for no field
	Rin    float64 // reference radius [code units]
}

// Torus fills every cell, ghosts included, with a Keplerian disk:
// RHO = Rho0·(r/Rin)^-Slope·exp(-(θ-π/2)²/(2·HR²)), an internal energy
// set by ThetaP, and a toroidal field set by Beta.
func Torus(cfg TorusConfig) DomainManipulator {
	return func(d *Disk) error {
		if cfg.Rho0 <= 0 || cfg.HR <= 0 || cfg.Rin <= 0 || cfg.ThetaP <= 0 {
			return fmt.Errorf("pairdisk: parsing torus configuration: Rho0, HR, Rin and ThetaP should all be >0 but are %g, %g, %g, %g",
				cfg.Rho0, cfg.HR, cfg.Rin, cfg.ThetaP)
		}
		n3, n2, n1 := d.Padded()
		for k := 0; k < n3; k++ {
			for j := 0; j < n2; j++ {
				for i := 0; i < n1; i++ {
					r, th := d.Geom.Coord(i, j, k)
					g := d.Geom.Gcov(i, j)
					dth := th - math.Pi/2
					rho := cfg.Rho0 * math.Pow(r/cfg.Rin, -cfg.Slope) *
						math.Exp(-dth*dth/(2*cfg.HR*cfg.HR))
					uu := rho * cfg.ThetaP / (d.Gamma - 1)
					d.Final.Set(rho, RHO, i, j, k)
					d.Final.Set(uu, UU, i, j, k)
					d.Final.Set(math.Pow(r, -1.5), U3, i, j, k)
					if cfg.Beta > 0 && g[3] > 0 {
						pmag := (d.Gamma - 1) * uu / cfg.Beta
						d.Final.Set(math.Sqrt(2*pmag/g[3]), B3, i, j, k)
					}
				}
			}
		}
		d.Start.CopyFrom(d.Final)
		return nil
	}
}
