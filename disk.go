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

// Package pairdisk tracks electron–positron pair balance in the cells of
// an accretion disk simulation. This package holds the grid, fluid state
// and run loop; the physics lives in the science subpackages.
package pairdisk

import "fmt"

// Version gives the version number.
const Version = "0.3.0"

// Disk holds the current state of the simulation.
type Disk struct {
	Grid
	Geom  Geometry
	Units UnitSystem

	// Start is the state at the beginning of the current step and is
	// read-only during a grid pass. Final receives the updates.
	Start, Final *FluidState

	Dt    float64 // time step [code units]
	Time  float64 // simulation time [code units]
	NStep int     // number of completed steps

	// Gamma is the adiabatic index of the fluid.
	Gamma float64

	// ConfigHash identifies the settings the simulation runs with. It is
	// stored in checkpoints. RestartHash is the ConfigHash read back from
	// the checkpoint the simulation was restarted from, if any.
	ConfigHash, RestartHash string

	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the simulation will not end until
	// one of the RunFuncs sets "Done" to true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be called in the given order
	// at the end of the simulation.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool
}

// DomainManipulator is a class of functions that operate on the entire
// model domain.
type DomainManipulator func(d *Disk) error

// CellManipulator is a class of functions that operate on a single grid
// cell using the given time step [code units]. A returned error aborts
// the grid pass.
type CellManipulator func(c *Cell, dt float64) error

// Init initializes the simulation by running d.InitFuncs.
func (d *Disk) Init() error {
	for i, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return fmt.Errorf("pairdisk: problem initializing simulation (init function %d): %w", i, err)
		}
	}
	return nil
}

// Run carries out the simulation by running d.RunFuncs until d.Done
// is true, and then running d.CleanupFuncs.
func (d *Disk) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
	}
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Cells returns the interior cells of the domain, ordered with i
// varying fastest.
func (d *Disk) Cells() []*Cell {
	cells := make([]*Cell, 0, d.NumCells())
	for k := d.NG; k < d.NG+d.N3; k++ {
		for j := d.NG; j < d.NG+d.N2; j++ {
			for i := d.NG; i < d.NG+d.N1; i++ {
				cells = append(cells, &Cell{I: i, J: j, K: k, d: d})
			}
		}
	}
	return cells
}

// Cell returns the cell at padded index (i, j, k).
func (d *Disk) Cell(i, j, k int) *Cell {
	return &Cell{I: i, J: j, K: k, d: d}
}

// Cell is a view of one grid cell. Reads come from the disk's Start
// state and writes go to its Final state.
type Cell struct {
	I, J, K int // padded indices
	d       *Disk
}

func (c *Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.I, c.J, c.K)
}

// Disk returns the disk the cell belongs to.
func (c *Cell) Disk() *Disk { return c.d }

// Polar returns the cell at polar index j in the same radial and
// azimuthal position as c.
func (c *Cell) Polar(j int) *Cell {
	return &Cell{I: c.I, J: j, K: c.K, d: c.d}
}

// Prim returns primitive v from the start state.
func (c *Cell) Prim(v int) float64 { return c.d.Start.Get(v, c.I, c.J, c.K) }

// SetFinal sets primitive v in the final state.
func (c *Cell) SetFinal(v int, val float64) { c.d.Final.Set(val, v, c.I, c.J, c.K) }

// Coord returns the radius [code units] and polar angle of the cell center.
func (c *Cell) Coord() (r, theta float64) { return c.d.Geom.Coord(c.I, c.J, c.K) }

// Gdet returns √-g at the cell center.
func (c *Cell) Gdet() float64 { return c.d.Geom.Gdet(c.I, c.J) }

// Gcov returns the diagonal covariant metric at the cell center.
func (c *Cell) Gcov() [4]float64 { return c.d.Geom.Gcov(c.I, c.J) }

// ProtonDensity returns the proton number density [cm⁻³].
func (c *Cell) ProtonDensity() float64 { return c.d.Units.ProtonDensity(c.Prim(RHO)) }

// PositronDensity returns the positron number density [cm⁻³].
func (c *Cell) PositronDensity() float64 { return c.d.Units.PositronDensity(c.Prim(RPL)) }

// LeptonDensity returns the density of scatterers, 2n₊ + n_p [cm⁻³],
// which counts the positrons and the electrons that neutralize both
// the protons and the positrons.
func (c *Cell) LeptonDensity() float64 {
	return 2*c.PositronDensity() + c.ProtonDensity()
}
