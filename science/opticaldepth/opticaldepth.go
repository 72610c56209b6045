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

// Package opticaldepth estimates the Thomson optical depth and vertical
// scale height of each grid cell from the lepton density along its
// polar column.
package opticaldepth

import (
	"fmt"
	"math"

	"github.com/spatialmodel/pairdisk"
	"github.com/spatialmodel/pairdisk/internal/specfunc"
)

// tauFloor is the smallest optical depth returned by the Gaussian
// estimator.
const tauFloor = 1e-20

// Estimator returns the optical depth τ and scale height h [cm] of a
// cell. Implementations read only the start state.
type Estimator interface {
	Estimate(c *pairdisk.Cell) (tau, h float64)
	Name() string
}

// Names of the available estimators.
const (
	ColumnMomentName = "column-moment"
	ColumnPathName   = "column-path"
	GaussianName     = "gaussian"
)

// New returns the estimator with the given name. hr is the Gaussian
// half-thickness of the disk in radians, used only by the Gaussian
// estimator.
func New(name string, hr float64) (Estimator, error) {
	switch name {
	case ColumnMomentName:
		return ColumnMoment{}, nil
	case ColumnPathName:
		return ColumnPath{}, nil
	case GaussianName:
		if hr <= 0 {
			return nil, fmt.Errorf("opticaldepth: Gaussian half-thickness %g should be >0", hr)
		}
		return Gaussian{HR: hr}, nil
	default:
		return nil, fmt.Errorf("opticaldepth: invalid estimator '%s'; valid options are '%s', '%s' and '%s'",
			name, ColumnMomentName, ColumnPathName, GaussianName)
	}
}

// column returns the padded polar indices walked for cell c: from the
// first interior cell to c in the upper hemisphere and from c to the
// last interior cell in the lower.
func column(c *pairdisk.Cell) (start, end int) {
	d := c.Disk()
	if _, th := c.Coord(); th < math.Pi/2 {
		return d.NG, c.J
	}
	return c.J, d.NG + d.N2 - 1
}

// ColumnMoment takes the scale height to be the density-weighted mean
// distance from the midplane along the column toward the nearer pole,
// and τ to be the local scatterer density times that height.
type ColumnMoment struct{}

// Name implements Estimator.
func (ColumnMoment) Name() string { return ColumnMomentName }

// Estimate implements Estimator.
func (ColumnMoment) Estimate(c *pairdisk.Cell) (tau, h float64) {
	d := c.Disk()
	dx2 := d.Geom.Dx(2)
	var up, lo float64
	start, end := column(c)
	for m := start; m <= end; m++ {
		cm := c.Polar(m)
		_, th := cm.Coord()
		nt := cm.LeptonDensity()
		gdet := cm.Gdet()
		up += nt * math.Abs(th-math.Pi/2) * gdet * math.Sqrt(cm.Gcov()[2]) * dx2
		lo += nt * gdet * dx2
	}
	if lo == 0 {
		return 0, 0
	}
	h = up / lo * d.Units.L
	return c.LeptonDensity() * h * pairdisk.SigmaT, h
}

// ColumnPath integrates the scatterer density along the proper polar
// path to the nearer pole, and takes the scale height to be the length
// that gives the same τ at the local density.
type ColumnPath struct{}

// Name implements Estimator.
func (ColumnPath) Name() string { return ColumnPathName }

// Estimate implements Estimator.
func (ColumnPath) Estimate(c *pairdisk.Cell) (tau, h float64) {
	d := c.Disk()
	dx2 := d.Geom.Dx(2)
	start, end := column(c)
	for m := start; m <= end; m++ {
		cm := c.Polar(m)
		tau += cm.LeptonDensity() * math.Sqrt(cm.Gcov()[2]) * dx2 * d.Units.L * pairdisk.SigmaT
	}
	nt := c.LeptonDensity()
	if nt == 0 {
		return tau, 0
	}
	return tau, tau / pairdisk.SigmaT / nt
}

// Gaussian assumes the scatterer density falls off from its midplane
// value as a Gaussian in θ with standard deviation HR, and integrates
// it analytically from the cell to the nearer pole.
type Gaussian struct {
	HR float64 // half-thickness [radians]
}

// Name implements Estimator.
func (Gaussian) Name() string { return GaussianName }

// Estimate implements Estimator.
func (g Gaussian) Estimate(c *pairdisk.Cell) (tau, h float64) {
	d := c.Disk()
	nmid := c.Polar(d.Midplane()).LeptonDensity()
	r, th := c.Coord()
	s := g.HR * math.Sqrt2
	var t1, t2 float64
	if th < math.Pi/2 {
		t1 = -math.Pi / 2 / s
		t2 = (th - math.Pi/2) / s
	} else {
		t1 = (th - math.Pi/2) / s
		t2 = math.Pi / 2 / s
	}
	tau = math.Abs(nmid * g.HR * r * d.Units.L * math.Sqrt(math.Pi/2) *
		specfunc.ErfDiff(t1, t2) * pairdisk.SigmaT)
	tau = math.Max(tau, tauFloor)
	nt := c.LeptonDensity()
	if nt == 0 {
		return tau, 0
	}
	return tau, tau / pairdisk.SigmaT / nt
}
