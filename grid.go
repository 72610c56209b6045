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

	"github.com/ctessum/sparse"
)

// Primitive variable indices in the first dimension of a FluidState.
const (
	RHO = iota // rest-mass density
	UU         // internal energy density
	U1         // velocity primitives
	U2
	U3
	B1 // magnetic field primitives
	B2
	B3
	RPL // positron rest-mass density

	NVar // number of primitive variables
)

// VarNames are the names of the primitive variables, in index order.
var VarNames = []string{"RHO", "UU", "U1", "U2", "U3", "B1", "B2", "B3", "RPL"}

// Grid describes the shape of the computational domain. The interior
// has N1×N2×N3 cells, and every direction is padded by NG ghost cells
// on each side. Indices used throughout the package are padded
// indices: interior cells along direction 1 run from NG to NG+N1-1.
type Grid struct {
	N1, N2, N3 int
	NG         int
}

// Validate checks that the grid shape is usable.
func (g Grid) Validate() error {
	for _, v := range []struct {
		name string
		n    int
	}{{"N1", g.N1}, {"N2", g.N2}, {"N3", g.N3}} {
		if v.n <= 0 {
			return fmt.Errorf("pairdisk: parsing grid configuration: %s=%d but should be >0", v.name, v.n)
		}
	}
	if g.NG < 0 {
		return fmt.Errorf("pairdisk: parsing grid configuration: NG=%d but should be >=0", g.NG)
	}
	return nil
}

// Padded returns the padded lengths in the order (k, j, i) used by
// the state arrays.
func (g Grid) Padded() (n3, n2, n1 int) {
	return g.N3 + 2*g.NG, g.N2 + 2*g.NG, g.N1 + 2*g.NG
}

// Interior reports whether padded index (i, j, k) is an interior cell.
func (g Grid) Interior(i, j, k int) bool {
	return i >= g.NG && i < g.NG+g.N1 &&
		j >= g.NG && j < g.NG+g.N2 &&
		k >= g.NG && k < g.NG+g.N3
}

// Midplane returns the padded polar index of the cell treated as the
// disk midplane.
func (g Grid) Midplane() int { return (2*g.NG + g.N2) / 2 }

// NumCells returns the number of interior cells.
func (g Grid) NumCells() int { return g.N1 * g.N2 * g.N3 }

// FluidState holds the primitive variables over the padded grid,
// indexed as P[var][k][j][i].
type FluidState struct {
	P *sparse.DenseArray
}

// NewFluidState allocates a zeroed state for grid g.
func NewFluidState(g Grid) *FluidState {
	n3, n2, n1 := g.Padded()
	return &FluidState{P: sparse.ZerosDense(NVar, n3, n2, n1)}
}

// Get returns primitive v at padded index (i, j, k).
func (s *FluidState) Get(v, i, j, k int) float64 { return s.P.Get(v, k, j, i) }

// Set sets primitive v at padded index (i, j, k).
func (s *FluidState) Set(val float64, v, i, j, k int) { s.P.Set(val, v, k, j, i) }

// CopyFrom overwrites s with the contents of o, which must have the
// same shape.
func (s *FluidState) CopyFrom(o *FluidState) {
	copy(s.P.Elements, o.P.Elements)
}
