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
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Calculations returns a function that concurrently runs a series of
// calculations on all of the interior grid cells. Cells read only the
// Start state and write only their own entry in the Final state, so no
// locking is needed. The first error returned by a calculation stops
// the remaining workers and is returned.
func Calculations(calculators ...CellManipulator) DomainManipulator {
	nprocs := runtime.GOMAXPROCS(0) // number of processors

	return func(d *Disk) error {
		cells := d.Cells()
		g, ctx := errgroup.WithContext(context.Background())
		for pp := 0; pp < nprocs; pp++ {
			pp := pp
			g.Go(func() error {
				for ii := pp; ii < len(cells); ii += nprocs {
					if ctx.Err() != nil {
						return nil // another worker failed
					}
					for _, f := range calculators {
						if err := f(cells[ii], d.Dt); err != nil {
							return err
						}
					}
				}
				return nil
			})
		}
		return g.Wait()
	}
}

// SnapshotState copies the Final state into the Start state so that
// the next grid pass reads a consistent snapshot of the previous step.
func SnapshotState() DomainManipulator {
	return func(d *Disk) error {
		d.Start.CopyFrom(d.Final)
		return nil
	}
}

// AdvanceTime increments the simulation time and step counter.
func AdvanceTime() DomainManipulator {
	return func(d *Disk) error {
		d.Time += d.Dt
		d.NStep++
		return nil
	}
}

// StepLimit sets the Done flag once nSteps steps have been taken or
// the simulation time reaches tf. Limits ≤ 0 are ignored; if both are
// ignored the simulation runs a single step.
func StepLimit(nSteps int, tf float64) DomainManipulator {
	return func(d *Disk) error {
		switch {
		case nSteps > 0 && d.NStep >= nSteps:
			d.Done = true
		case tf > 0 && d.Time >= tf:
			d.Done = true
		case nSteps <= 0 && tf <= 0:
			d.Done = true
		}
		return nil
	}
}

// PositronFractions returns z = n₊/n_p for every interior cell of the
// Final state.
func (d *Disk) PositronFractions() []float64 {
	z := make([]float64, 0, d.NumCells())
	for k := d.NG; k < d.NG+d.N3; k++ {
		for j := d.NG; j < d.NG+d.N2; j++ {
			for i := d.NG; i < d.NG+d.N1; i++ {
				rho := d.Final.Get(RHO, i, j, k)
				if rho <= 0 {
					z = append(z, 0)
					continue
				}
				z = append(z, d.Final.Get(RPL, i, j, k)/MEMP/rho)
			}
		}
	}
	return z
}

// Log writes simulation status messages to l.
func Log(l logrus.FieldLogger) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()

	return func(d *Disk) error {
		z := d.PositronFractions()
		mean, std := stat.MeanStdDev(z, nil)
		l.WithFields(logrus.Fields{
			"step":      d.NStep,
			"t":         d.Time,
			"dt":        d.Dt,
			"walltime":  time.Since(startTime).Round(time.Millisecond),
			"Δwalltime": time.Since(timeStepTime).Round(time.Millisecond),
			"z_mean":    mean,
			"z_std":     std,
			"z_max":     floats.Max(z),
		}).Info("completed step")
		timeStepTime = time.Now()
		return nil
	}
}
