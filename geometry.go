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

// Geometry supplies cell-centered coordinates and metric factors.
// Metrics are assumed diagonal and axisymmetric, so they depend only on
// the radial and polar indices. All lengths are in code units.
type Geometry interface {
	// Coord returns the radius and polar angle of the center of the
	// cell at padded index (i, j, k).
	Coord(i, j, k int) (r, theta float64)

	// Gcov returns the diagonal of the covariant metric g_μν.
	Gcov(i, j int) [4]float64

	// Gdet returns √-g.
	Gdet(i, j int) float64

	// Dx returns the coordinate spacing in direction dir (1, 2 or 3).
	Dx(dir int) float64
}

// SphericalGeometry is flat space in logarithmic spherical coordinates,
// X1 = ln r, X2 = θ, X3 = φ. Its line element is
// ds² = -dt² + r²dX1² + r²dX2² + r²sin²θ dX3².
type SphericalGeometry struct {
	Grid
	Rin, Rout float64

	x1Start, dx [4]float64
}

// NewSphericalGeometry returns a geometry with radii spaced
// logarithmically between rin and rout and θ spanning [0, π].
func NewSphericalGeometry(g Grid, rin, rout float64) (*SphericalGeometry, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if rin <= 0 || rout <= rin {
		return nil, fmt.Errorf("pairdisk: parsing grid configuration: Rin=%g and Rout=%g but should satisfy 0<Rin<Rout", rin, rout)
	}
	s := &SphericalGeometry{Grid: g, Rin: rin, Rout: rout}
	s.x1Start[1] = math.Log(rin)
	s.dx[1] = (math.Log(rout) - math.Log(rin)) / float64(g.N1)
	s.dx[2] = math.Pi / float64(g.N2)
	s.dx[3] = 2 * math.Pi / float64(g.N3)
	return s, nil
}

func (s *SphericalGeometry) x(dir, idx int) float64 {
	return s.x1Start[dir] + (float64(idx-s.NG)+0.5)*s.dx[dir]
}

// Coord implements Geometry.
func (s *SphericalGeometry) Coord(i, j, k int) (r, theta float64) {
	return math.Exp(s.x(1, i)), s.x(2, j)
}

// Gcov implements Geometry.
func (s *SphericalGeometry) Gcov(i, j int) [4]float64 {
	r, th := s.Coord(i, j, 0)
	sth := math.Sin(th)
	return [4]float64{-1, r * r, r * r, r * r * sth * sth}
}

// Gdet implements Geometry.
func (s *SphericalGeometry) Gdet(i, j int) float64 {
	r, th := s.Coord(i, j, 0)
	return r * r * r * math.Abs(math.Sin(th))
}

// Dx implements Geometry.
func (s *SphericalGeometry) Dx(dir int) float64 { return s.dx[dir] }
